package api

import (
	"context"
	"fmt"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// CreateProgramRequest publishes a new exercise to a classroom.
type CreateProgramRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
	ClassID     int    `json:"class_id"`
}

// Programs lists every program visible to the session.
func (c *Client) Programs(ctx context.Context) ([]models.Program, error) {
	var programs []models.Program
	if err := c.getJSON(ctx, "/programs", &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// ProgramDetail fetches one program together with its summaries.
func (c *Client) ProgramDetail(ctx context.Context, id int) (models.ProgramDetail, error) {
	var detail models.ProgramDetail
	if err := c.getJSON(ctx, fmt.Sprintf("/programs/%d", id), &detail); err != nil {
		return models.ProgramDetail{}, err
	}
	return detail, nil
}

// ProgramsByClass lists the programs assigned to one classroom.
func (c *Client) ProgramsByClass(ctx context.Context, classID int) ([]models.Program, error) {
	var programs []models.Program
	if err := c.getJSON(ctx, fmt.Sprintf("/programs/classroom/%d", classID), &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// CreateProgram publishes a new program.
func (c *Client) CreateProgram(ctx context.Context, req CreateProgramRequest) error {
	return c.postJSON(ctx, "/programs", req, nil)
}

// DeleteProgram removes a program. A zero id is a no-op, matching the
// guard the web client always carried.
func (c *Client) DeleteProgram(ctx context.Context, id int) error {
	if id == 0 {
		return nil
	}
	return c.deleteJSON(ctx, fmt.Sprintf("/programs/%d", id), nil)
}

// DownloadAudio fetches a media artifact referenced by a message or summary
// audio link.
func (c *Client) DownloadAudio(ctx context.Context, link string) ([]byte, error) {
	return c.downloadBytes(ctx, "/audio/"+link)
}
