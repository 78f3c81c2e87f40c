package api

import (
	"context"
	"fmt"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// SubmitRequest carries a code submission for evaluation and quiz
// generation.
type SubmitRequest struct {
	ProgramID    int    `json:"program_id" validate:"required"`
	UserID       int    `json:"user_id" validate:"required"`
	Code         string `json:"code" validate:"required"`
	LanguageID   int    `json:"language_id" validate:"required"`
	QuizLanguage string `json:"quiz_language,omitempty"`
}

// Submit evaluates code against the program's test cases and generates a
// quiz from the outcome.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (models.SubmissionResult, error) {
	var result models.SubmissionResult
	if err := c.postJSON(ctx, "/submissions", req, &result); err != nil {
		return models.SubmissionResult{}, err
	}
	return result, nil
}

// MarkQuiz grades the given answers. Keys are question indices rendered as
// strings.
func (c *Client) MarkQuiz(ctx context.Context, quizID int, answers map[string]string) (models.MarkResult, error) {
	payload := struct {
		QuizID  int               `json:"quiz_id"`
		Answers map[string]string `json:"answers"`
	}{QuizID: quizID, Answers: answers}

	var result models.MarkResult
	if err := c.postJSON(ctx, "/quiz/mark", payload, &result); err != nil {
		return models.MarkResult{}, err
	}
	return result, nil
}

// QuizByProgramUser fetches the quiz generated for one student on one
// program. A 404 RemoteError means no quiz exists for the pair.
func (c *Client) QuizByProgramUser(ctx context.Context, programID, userID int) (models.Quiz, error) {
	var quiz models.Quiz
	if err := c.getJSON(ctx, fmt.Sprintf("/quiz/program/%d/user/%d", programID, userID), &quiz); err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

// QuizzesByClass lists quizzes for an entire classroom.
func (c *Client) QuizzesByClass(ctx context.Context, classID int) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := c.getJSON(ctx, fmt.Sprintf("/quiz/class/%d", classID), &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// QuizzesByProgram lists every student quiz for one program. The endpoint is
// professor-only.
func (c *Client) QuizzesByProgram(ctx context.Context, programID int) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := c.getJSON(ctx, fmt.Sprintf("/quiz/program/%d", programID), &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// QuizForUser fetches a student's quiz joined with its program title.
func (c *Client) QuizForUser(ctx context.Context, userID int) (models.Quiz, error) {
	var quiz models.Quiz
	if err := c.getJSON(ctx, fmt.Sprintf("/quiz/user/%d", userID), &quiz); err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

// SubmissionsForProgramUser lists a student's stored submissions for one
// program.
func (c *Client) SubmissionsForProgramUser(ctx context.Context, programID, userID int) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := c.getJSON(ctx, fmt.Sprintf("/submissions/program/%d/user/%d", programID, userID), &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}
