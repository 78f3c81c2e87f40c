package stubserver

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

func messageResponse(m Message) models.Message {
	out := models.Message{
		ID:        m.ID,
		ProgramID: m.ProgramID,
		UserID:    m.UserID,
		AudioLink: m.AudioLink,
		Content:   m.Content,
		From:      m.From,
		SentAt:    m.SentAt.UTC().Format(time.RFC3339),
	}
	return out
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	programID, err := strconv.Atoi(c.Query("program_id"))
	userID, err2 := strconv.Atoi(c.Query("user_id"))
	if err != nil || err2 != nil {
		return sendError(c, fiber.StatusBadRequest, "user_id and program_id required")
	}

	messages, err := s.store.MessagesFor(programID, userID)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "list messages")
	}

	out := make([]models.Message, 0, len(messages))
	for _, message := range messages {
		out = append(out, messageResponse(message))
	}
	return c.JSON(out)
}

// chatMessage accepts a text or audio turn as multipart form data and
// appends a canned bot reply with a generated voice artifact, mirroring the
// two-row insert the real service performs.
func (s *Server) chatMessage(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.FormValue("user_id"))
	programID, err2 := strconv.Atoi(c.FormValue("program_id"))
	if err != nil || err2 != nil {
		return sendError(c, fiber.StatusBadRequest, "user_id and program_id required")
	}

	var userText string
	if text := c.FormValue("text"); text != "" {
		userText = text
		if err := s.store.CreateMessage(&Message{
			ProgramID: programID,
			UserID:    &userID,
			Content:   text,
			From:      "student",
			SentAt:    time.Now().UTC(),
		}); err != nil {
			return sendError(c, fiber.StatusInternalServerError, "store message")
		}
	} else if file, err := c.FormFile("audio"); err == nil {
		upload, err := file.Open()
		if err != nil {
			return sendError(c, fiber.StatusBadRequest, "read audio")
		}
		defer upload.Close()

		data, err := io.ReadAll(upload)
		if err != nil {
			return sendError(c, fiber.StatusBadRequest, "read audio")
		}

		// Student voice turns keep the raw upload path as their content, the
		// marker the client renders as "Audio Message".
		link := "temp/" + uuid.NewString() + ".wav"
		if err := s.store.SaveAudio(&Audio{Link: link, Data: data}); err != nil {
			return sendError(c, fiber.StatusInternalServerError, "store audio")
		}
		userText = link
		if err := s.store.CreateMessage(&Message{
			ProgramID: programID,
			UserID:    &userID,
			Content:   link,
			From:      "student",
			SentAt:    time.Now().UTC(),
		}); err != nil {
			return sendError(c, fiber.StatusInternalServerError, "store message")
		}
	} else {
		return sendError(c, fiber.StatusBadRequest, "No valid input provided")
	}

	reply, replyLink := s.cannedReply(programID, userText)
	if err := s.store.SaveAudio(&Audio{Link: replyLink, Data: []byte("stub audio reply")}); err != nil {
		return sendError(c, fiber.StatusInternalServerError, "store reply audio")
	}
	if err := s.store.CreateMessage(&Message{
		ProgramID: programID,
		UserID:    &userID,
		AudioLink: replyLink,
		Content:   reply,
		From:      "bot",
		SentAt:    time.Now().UTC(),
	}); err != nil {
		return sendError(c, fiber.StatusInternalServerError, "store reply")
	}

	return c.JSON(fiber.Map{
		"user_text":        userText,
		"bot_reply":        reply,
		"audio_reply_path": replyLink,
	})
}

// cannedReply fabricates a deterministic tutor answer so the stub works
// offline. Replies always carry a media-path audio link, like the real bot.
func (s *Server) cannedReply(programID int, userText string) (reply, link string) {
	topic := "your question"
	if program, err := s.store.ProgramByID(programID); err == nil {
		topic = fmt.Sprintf("%q", program.Title)
	}
	if strings.HasPrefix(userText, "temp/") {
		reply = fmt.Sprintf("I listened to your recording about %s. Walk through the loop once by hand and check the boundary condition.", topic)
	} else {
		reply = fmt.Sprintf("About %s: %s — start from the base case and trace one iteration.", topic, strings.TrimSpace(userText))
	}
	return reply, "media/reply-" + uuid.NewString() + ".mp3"
}
