// Package submission drives the code submission → evaluation → quiz
// unlock cycle for a program view.
package submission

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// Submitter is the slice of the remote client the controller needs.
type Submitter interface {
	Submit(ctx context.Context, req api.SubmitRequest) (models.SubmissionResult, error)
}

type pairKey struct {
	programID int
	userID    int
}

// Controller debounces submissions per (program, user) pair and keeps the
// latest result and error for the view. A failed submission leaves the prior
// result in place.
type Controller struct {
	client   Submitter
	validate *validator.Validate
	logger   zerolog.Logger
	tracer   trace.Tracer

	mu       sync.Mutex
	inflight map[pairKey]struct{}
	result   *models.SubmissionResult
	lastErr  string
}

// NewController creates a submission controller.
func NewController(client Submitter, validate *validator.Validate, logger zerolog.Logger) *Controller {
	return &Controller{
		client:   client,
		validate: validate,
		logger:   logger.With().Str("component", "submission_controller").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/gema-tutor-cli/internal/submission"),
		inflight: make(map[pairKey]struct{}),
	}
}

// Submit sends code for evaluation. While a submission for the same
// (program, user) pair is pending, further calls are a local no-op that
// makes no remote round-trip and returns (nil, nil).
func (c *Controller) Submit(ctx context.Context, req api.SubmitRequest) (*models.SubmissionResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, &api.ValidationError{Message: "program, user, code and language must be set"}
	}

	key := pairKey{programID: req.ProgramID, userID: req.UserID}

	c.mu.Lock()
	if _, pending := c.inflight[key]; pending {
		c.mu.Unlock()
		c.logger.Debug().Int("program_id", req.ProgramID).Int("user_id", req.UserID).Msg("submission already in flight, ignoring")
		return nil, nil
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}()

	spanCtx, span := c.tracer.Start(ctx, "submission.submit", trace.WithAttributes(
		attribute.Int("program_id", req.ProgramID),
		attribute.Int("user_id", req.UserID),
	))
	defer span.End()

	result, err := c.client.Submit(spanCtx, req)
	if err != nil {
		span.RecordError(err)
		c.mu.Lock()
		c.lastErr = err.Error()
		c.mu.Unlock()
		c.logger.Warn().Err(err).Int("program_id", req.ProgramID).Msg("submission failed")
		return nil, err
	}

	c.mu.Lock()
	c.result = &result
	c.lastErr = ""
	c.mu.Unlock()

	c.logger.Info().
		Int("program_id", req.ProgramID).
		Bool("code_correct", result.Quiz.CodeCorrect).
		Int("quiz_id", result.QuizID).
		Msg("submission evaluated")

	return &result, nil
}

// Result returns the most recent successful submission result, if any.
func (c *Controller) Result() *models.SubmissionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// LastError returns the displayable error from the most recent failed
// submission, or "" after a success.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// QuizAvailable reports whether a quiz can be taken: the latest evaluation
// must exist and be code-correct.
func (c *Controller) QuizAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result != nil && c.result.Quiz.CodeCorrect
}

// QuizID returns the generated quiz identifier, or 0 when no quiz is
// available.
func (c *Controller) QuizID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil || !c.result.Quiz.CodeCorrect {
		return 0
	}
	return c.result.QuizID
}
