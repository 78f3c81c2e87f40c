package stubserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

func programResponse(p Program) models.Program {
	return models.Program{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		ClassID:     p.ClassID,
	}
}

func summaryResponse(s Summary) models.Summary {
	return models.Summary{
		ID:        s.ID,
		ProgramID: s.ProgramID,
		AudioLink: s.AudioLink,
		Language:  s.Language,
		Summary:   s.Summary,
		Algorithm: s.Algorithm,
	}
}

func (s *Server) listPrograms(c *fiber.Ctx) error {
	programs, err := s.store.Programs()
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "list programs")
	}

	out := make([]models.Program, 0, len(programs))
	for _, program := range programs {
		out = append(out, programResponse(program))
	}
	return c.JSON(out)
}

func (s *Server) programDetail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid program id")
	}

	program, err := s.store.ProgramByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sendError(c, fiber.StatusNotFound, "Program not found")
		}
		return sendError(c, fiber.StatusInternalServerError, "load program")
	}

	summaries, err := s.store.SummariesByProgram(id)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "load summaries")
	}

	detail := models.ProgramDetail{Program: programResponse(program)}
	for _, summary := range summaries {
		detail.Summaries = append(detail.Summaries, summaryResponse(summary))
	}
	return c.JSON(detail)
}

func (s *Server) programsByClass(c *fiber.Ctx) error {
	classID, err := c.ParamsInt("classId")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	programs, err := s.store.ProgramsByClass(classID)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "list programs")
	}

	out := make([]models.Program, 0, len(programs))
	for _, program := range programs {
		out = append(out, programResponse(program))
	}
	return c.JSON(out)
}

func (s *Server) createProgram(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Code        string `json:"code"`
		ClassID     int    `json:"class_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if req.Title == "" || req.Code == "" {
		return sendError(c, fiber.StatusBadRequest, "title and code required")
	}

	program := Program{Title: req.Title, Description: req.Description, Code: req.Code, ClassID: req.ClassID}
	if err := s.store.CreateProgram(&program); err != nil {
		return sendError(c, fiber.StatusInternalServerError, "create program")
	}
	return c.Status(fiber.StatusCreated).JSON(programResponse(program))
}

func (s *Server) deleteProgram(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid program id")
	}
	if err := s.store.DeleteProgram(id); err != nil {
		return sendError(c, fiber.StatusInternalServerError, "delete program")
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func (s *Server) serveAudio(c *fiber.Ctx) error {
	link := c.Params("*")
	audio, err := s.store.AudioByLink(link)
	if err != nil {
		return sendError(c, fiber.StatusNotFound, "Audio not found")
	}
	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(audio.Data)
}
