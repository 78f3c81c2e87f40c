package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// TextMessage is a text turn sent to the tutor bot.
type TextMessage struct {
	ProgramID int
	UserID    int
	Text      string
	Language  string
}

// AudioMessage is a recorded clip sent to the tutor bot.
type AudioMessage struct {
	ProgramID int
	UserID    int
	FileName  string
	Content   []byte
	MIMEType  string
	Language  string
}

// Messages fetches the full chat timeline for a (program, user) pair in
// chronological order.
func (c *Client) Messages(ctx context.Context, programID, userID int) ([]models.Message, error) {
	var messages []models.Message
	path := fmt.Sprintf("/chat/messages?program_id=%d&user_id=%d", programID, userID)
	if err := c.getJSON(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendText posts a text message. The bot reply lands in the timeline and is
// picked up by the next poll.
func (c *Client) SendText(ctx context.Context, msg TextMessage) error {
	fields := map[string]string{
		"text":       msg.Text,
		"user_id":    strconv.Itoa(msg.UserID),
		"program_id": strconv.Itoa(msg.ProgramID),
	}
	if msg.Language != "" {
		fields["language"] = msg.Language
	}
	return c.postMultipart(ctx, "/chat/message", fields, nil, nil)
}

// SendAudio uploads a recorded clip as a multipart form.
func (c *Client) SendAudio(ctx context.Context, msg AudioMessage) error {
	fields := map[string]string{
		"user_id":    strconv.Itoa(msg.UserID),
		"program_id": strconv.Itoa(msg.ProgramID),
	}
	if msg.Language != "" {
		fields["language"] = msg.Language
	}
	file := &formFile{
		Field:    "audio",
		Name:     msg.FileName,
		Content:  msg.Content,
		MIMEType: msg.MIMEType,
	}
	return c.postMultipart(ctx, "/chat/message", fields, file, nil)
}
