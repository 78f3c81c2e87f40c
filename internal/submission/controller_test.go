package submission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

type stubSubmitter struct {
	calls     atomic.Int32
	block     chan struct{}
	result    models.SubmissionResult
	err       error
	started   chan struct{}
	startOnce sync.Once
}

func (s *stubSubmitter) Submit(ctx context.Context, req api.SubmitRequest) (models.SubmissionResult, error) {
	call := s.calls.Add(1)
	if s.started != nil {
		s.startOnce.Do(func() { close(s.started) })
	}
	// Only the first caller parks, so a later call for a different pair can
	// complete while the first is still in flight.
	if s.block != nil && call == 1 {
		<-s.block
	}
	return s.result, s.err
}

func validRequest() api.SubmitRequest {
	return api.SubmitRequest{ProgramID: 1, UserID: 2, Code: "print(1)", LanguageID: 71}
}

func TestSubmitRejectsIncompleteRequest(t *testing.T) {
	stub := &stubSubmitter{}
	controller := NewController(stub, validator.New(), zerolog.Nop())

	_, err := controller.Submit(context.Background(), api.SubmitRequest{ProgramID: 1})
	var vErr *api.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, int32(0), stub.calls.Load(), "invalid requests never reach the remote")
}

func TestSubmitDebouncesSamePair(t *testing.T) {
	stub := &stubSubmitter{
		block:   make(chan struct{}),
		started: make(chan struct{}),
		result:  models.SubmissionResult{QuizID: 7, Quiz: models.Evaluation{CodeCorrect: true}},
	}
	controller := NewController(stub, validator.New(), zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := controller.Submit(context.Background(), validRequest())
		assert.NoError(t, err)
		assert.NotNil(t, result)
	}()

	<-stub.started

	// While the first submission is in flight the duplicate is a local no-op.
	result, err := controller.Submit(context.Background(), validRequest())
	assert.NoError(t, err)
	assert.Nil(t, result)

	close(stub.block)
	wg.Wait()

	assert.Equal(t, int32(1), stub.calls.Load(), "only one remote round-trip for the pair")
	assert.True(t, controller.QuizAvailable())
	assert.Equal(t, 7, controller.QuizID())
}

func TestSubmitAllowsDifferentPairsConcurrently(t *testing.T) {
	stub := &stubSubmitter{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	controller := NewController(stub, validator.New(), zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = controller.Submit(context.Background(), validRequest())
	}()
	<-stub.started

	other := validRequest()
	other.ProgramID = 9
	result, err := controller.Submit(context.Background(), other)
	require.NoError(t, err)
	assert.NotNil(t, result, "a different pair is not debounced")

	close(stub.block)
	wg.Wait()
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestFailedSubmissionKeepsPriorResult(t *testing.T) {
	stub := &stubSubmitter{result: models.SubmissionResult{QuizID: 7, Quiz: models.Evaluation{CodeCorrect: true}}}
	controller := NewController(stub, validator.New(), zerolog.Nop())

	first, err := controller.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, first)

	stub.err = errors.New("evaluator offline")
	_, err = controller.Submit(context.Background(), validRequest())
	require.Error(t, err)

	assert.Equal(t, "evaluator offline", controller.LastError())
	require.NotNil(t, controller.Result(), "the prior result survives a failure")
	assert.Equal(t, 7, controller.Result().QuizID)
}

func TestQuizUnavailableWhenCodeIncorrect(t *testing.T) {
	stub := &stubSubmitter{result: models.SubmissionResult{QuizID: 7, Quiz: models.Evaluation{CodeCorrect: false}}}
	controller := NewController(stub, validator.New(), zerolog.Nop())

	_, err := controller.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, controller.QuizAvailable())
	assert.Equal(t, 0, controller.QuizID())
}
