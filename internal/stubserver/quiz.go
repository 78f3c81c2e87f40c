package stubserver

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

func (s *Server) quizResponse(q Quiz) models.Quiz {
	out := models.Quiz{
		ID:        q.ID,
		StudentID: q.StudentID,
		ProgramID: q.ProgramID,
		ClassID:   q.ClassID,
		Questions: decodeQuestions(q.Questions),
		Answers:   decodeAnswers(q.Answers),
		Marks:     q.Marks,
	}
	if user, err := s.store.UserByID(q.StudentID); err == nil {
		out.Username = user.Username
	}
	return out
}

type markRequest struct {
	QuizID  int               `json:"quiz_id"`
	Answers map[string]string `json:"answers"`
}

// markQuiz grades against the stored answer key: case-insensitive,
// whitespace-trimmed comparison, one mark per matching key entry.
func (s *Server) markQuiz(c *fiber.Ctx) error {
	var req markRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if req.Answers == nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid answer format")
	}

	quiz, err := s.store.QuizByID(req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sendError(c, fiber.StatusNotFound, "Quiz not found")
		}
		return sendError(c, fiber.StatusInternalServerError, "load quiz")
	}

	answerKey := decodeAnswers(quiz.AnswerKey)
	marks, total := 0, 0
	for key, correct := range answerKey {
		total++
		given, ok := req.Answers[key]
		if ok && strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct)) {
			marks++
		}
	}

	if err := s.store.GradeQuiz(quiz.ID, req.Answers, marks); err != nil {
		return sendError(c, fiber.StatusInternalServerError, "store marks")
	}

	return c.JSON(models.MarkResult{QuizID: quiz.ID, Marks: marks, Total: total})
}

func (s *Server) quizByProgramUser(c *fiber.Ctx) error {
	programID, err := c.ParamsInt("programId")
	userID, err2 := c.ParamsInt("userId")
	if err != nil || err2 != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid ids")
	}

	quiz, err := s.store.QuizByProgramUser(programID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sendError(c, fiber.StatusNotFound, "Quiz not found")
		}
		return sendError(c, fiber.StatusInternalServerError, "load quiz")
	}
	return c.JSON(s.quizResponse(quiz))
}

func (s *Server) quizzesByProgram(c *fiber.Ctx) error {
	programID, err := c.ParamsInt("programId")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid program id")
	}

	quizzes, err := s.store.QuizzesByProgram(programID)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "list quizzes")
	}

	out := make([]models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		out = append(out, s.quizResponse(quiz))
	}
	return c.JSON(out)
}

func (s *Server) quizzesByClass(c *fiber.Ctx) error {
	classID, err := c.ParamsInt("classId")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	quizzes, err := s.store.QuizzesByClass(classID)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "list quizzes")
	}

	out := make([]models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		out = append(out, s.quizResponse(quiz))
	}
	return c.JSON(out)
}

func (s *Server) quizByUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	quiz, err := s.store.QuizByStudent(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sendError(c, fiber.StatusNotFound, "Quiz not found")
		}
		return sendError(c, fiber.StatusInternalServerError, "load quiz")
	}
	return c.JSON(s.quizResponse(quiz))
}
