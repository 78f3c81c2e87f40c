// Package quiz implements the interactive quiz session: a cursor over the
// generated questions, answer collection, and the grading transition.
package quiz

import (
	"context"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// State is the quiz session lifecycle position.
type State int

const (
	StateLoading State = iota
	StateAnswering
	StateSubmitting
	StateGraded
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnswering:
		return "answering"
	case StateSubmitting:
		return "submitting"
	case StateGraded:
		return "graded"
	case StateNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// API is the slice of the remote client a session needs.
type API interface {
	QuizByProgramUser(ctx context.Context, programID, userID int) (models.Quiz, error)
	MarkQuiz(ctx context.Context, quizID int, answers map[string]string) (models.MarkResult, error)
}

// Session is a single student's pass over one quiz. It is not safe for
// concurrent use; the consuming view serializes access by disabling inputs
// while a transition is pending.
type Session struct {
	api    API
	logger zerolog.Logger

	programID int
	userID    int

	state   State
	quiz    models.Quiz
	cursor  int
	answers map[string]string

	// submitted stays true after the first grading attempt even if grading
	// fails, which keeps answers read-only from then on. Only the grading
	// call itself may be retried.
	submitted bool
	marks     int
	total     int
	lastErr   string
}

// NewSession creates a session in the Loading state.
func NewSession(quizAPI API, programID, userID int, logger zerolog.Logger) *Session {
	return &Session{
		api:       quizAPI,
		logger:    logger.With().Str("component", "quiz_session").Logger(),
		programID: programID,
		userID:    userID,
		state:     StateLoading,
		answers:   make(map[string]string),
	}
}

// Load fetches the quiz for the (program, user) pair. A missing quiz or an
// empty question sequence ends in NotFound; an already graded quiz goes
// straight to Graded.
func (s *Session) Load(ctx context.Context) error {
	quiz, err := s.api.QuizByProgramUser(ctx, s.programID, s.userID)
	if err != nil {
		if api.IsNotFound(err) {
			s.state = StateNotFound
			return nil
		}
		s.lastErr = err.Error()
		return err
	}

	if len(quiz.Questions) == 0 {
		s.state = StateNotFound
		return nil
	}

	s.quiz = quiz
	if quiz.Graded() {
		s.marks = *quiz.Marks
		s.total = len(quiz.Questions)
		s.submitted = true
		s.state = StateGraded
		return nil
	}

	s.state = StateAnswering
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Quiz returns the loaded quiz.
func (s *Session) Quiz() models.Quiz {
	return s.quiz
}

// Cursor returns the index of the question currently in view.
func (s *Session) Cursor() int {
	return s.cursor
}

// Current returns the question under the cursor.
func (s *Session) Current() (models.Question, bool) {
	if s.cursor < 0 || s.cursor >= len(s.quiz.Questions) {
		return models.Question{}, false
	}
	return s.quiz.Questions[s.cursor], true
}

// Next advances the cursor, clamped at the last question.
func (s *Session) Next() {
	if s.cursor < len(s.quiz.Questions)-1 {
		s.cursor++
	}
}

// Prev moves the cursor back, clamped at the first question.
func (s *Session) Prev() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// Select records an answer for the current question, overwriting any prior
// selection for that index. Selection is rejected once a grading attempt has
// been made.
func (s *Session) Select(option string) error {
	if s.state != StateAnswering || s.submitted {
		return &api.ValidationError{Message: "answers are locked"}
	}

	current, ok := s.Current()
	if !ok {
		return &api.ValidationError{Message: "no question in view"}
	}
	if !slices.Contains(current.Options, option) {
		return &api.ValidationError{Message: "option is not offered by this question"}
	}

	s.answers[strconv.Itoa(s.cursor)] = option
	return nil
}

// Answer returns the recorded answer for a question index.
func (s *Session) Answer(index int) (string, bool) {
	value, ok := s.answers[strconv.Itoa(index)]
	return value, ok
}

// Answers returns a copy of the collected answers.
func (s *Session) Answers() map[string]string {
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

func (s *Session) allAnswered() bool {
	n := len(s.quiz.Questions)
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if _, ok := s.answers[strconv.Itoa(i)]; !ok {
			return false
		}
	}
	return true
}

// CanSubmit reports whether the grading action is enabled: the cursor must
// sit on the last question and every question must have an answer.
func (s *Session) CanSubmit() bool {
	if s.state != StateAnswering || s.submitted {
		return false
	}
	return s.cursor == len(s.quiz.Questions)-1 && s.allAnswered()
}

// Submit sends the answers for grading. On failure the session returns to
// Answering with the answers locked; the grading call itself may be retried.
// On success the session is Graded, which is terminal, and the persisted quiz
// is refetched so Marks reflects the stored value.
func (s *Session) Submit(ctx context.Context) (models.MarkResult, error) {
	if s.state != StateAnswering || !s.allAnswered() {
		return models.MarkResult{}, &api.ValidationError{Message: "quiz is not ready to submit"}
	}
	// The first attempt is only offered from the last question; retries after
	// a failed grading call skip that gate because answers are already locked.
	if !s.submitted && !s.CanSubmit() {
		return models.MarkResult{}, &api.ValidationError{Message: "quiz is not ready to submit"}
	}

	s.state = StateSubmitting
	s.submitted = true

	result, err := s.api.MarkQuiz(ctx, s.quiz.ID, s.Answers())
	if err != nil {
		s.state = StateAnswering
		s.lastErr = err.Error()
		s.logger.Warn().Err(err).Int("quiz_id", s.quiz.ID).Msg("grading failed")
		return models.MarkResult{}, err
	}

	s.marks = result.Marks
	s.total = result.Total
	s.lastErr = ""
	s.state = StateGraded

	if refreshed, err := s.api.QuizByProgramUser(ctx, s.programID, s.userID); err == nil {
		s.quiz = refreshed
	}

	s.logger.Info().Int("quiz_id", s.quiz.ID).Int("marks", result.Marks).Int("total", result.Total).Msg("quiz graded")
	return result, nil
}

// Score returns the grading outcome once the session is Graded.
func (s *Session) Score() (marks, total int) {
	return s.marks, s.total
}

// Submitted reports whether a grading attempt has been made.
func (s *Session) Submitted() bool {
	return s.submitted
}

// LastError returns the displayable error from the most recent failed
// transition.
func (s *Session) LastError() string {
	return s.lastErr
}
