package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
	"github.com/noah-isme/gema-tutor-cli/internal/quiz"
)

type scriptedQuizAPI struct {
	quiz    models.Quiz
	loadErr error
	markErr error
}

func (s *scriptedQuizAPI) QuizByProgramUser(ctx context.Context, programID, userID int) (models.Quiz, error) {
	if s.loadErr != nil {
		return models.Quiz{}, s.loadErr
	}
	return s.quiz, nil
}

func (s *scriptedQuizAPI) MarkQuiz(ctx context.Context, quizID int, answers map[string]string) (models.MarkResult, error) {
	if s.markErr != nil {
		return models.MarkResult{}, s.markErr
	}
	marks := 0
	if answers["0"] == "Iteration" {
		marks++
	}
	if answers["1"] == "An empty input" {
		marks++
	}
	return models.MarkResult{QuizID: quizID, Marks: marks, Total: 2}, nil
}

func testQuiz() models.Quiz {
	return models.Quiz{
		ID: 7,
		Questions: []models.Question{
			{Question: "What does the program demonstrate?", Options: []string{"Iteration", "Recursion"}},
			{Question: "Which input hits the boundary?", Options: []string{"An empty input", "A random input"}},
		},
	}
}

func TestRunQuizFullPass(t *testing.T) {
	stub := &scriptedQuizAPI{quiz: testQuiz()}
	session := quiz.NewSession(stub, 1, 2, zerolog.Nop())

	in := strings.NewReader("a\nn\na\ns\n")
	var out bytes.Buffer
	require.NoError(t, RunQuiz(context.Background(), session, in, &out))

	assert.Contains(t, out.String(), "You scored 2 out of 2.")
	assert.Contains(t, out.String(), "Your response has been recorded.")
	assert.Equal(t, quiz.StateGraded, session.State())
}

func TestRunQuizMissingQuiz(t *testing.T) {
	stub := &scriptedQuizAPI{loadErr: &api.RemoteError{Status: http.StatusNotFound, Message: "Quiz not found"}}
	session := quiz.NewSession(stub, 1, 2, zerolog.Nop())

	var out bytes.Buffer
	require.NoError(t, RunQuiz(context.Background(), session, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "Quiz not found.")
}

func TestRunQuizAlreadyGraded(t *testing.T) {
	marks := 1
	graded := testQuiz()
	graded.Marks = &marks

	stub := &scriptedQuizAPI{quiz: graded}
	session := quiz.NewSession(stub, 1, 2, zerolog.Nop())

	var out bytes.Buffer
	require.NoError(t, RunQuiz(context.Background(), session, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "already graded: 1 out of 2")
}

func TestRunQuizPrematureSubmitIsRefused(t *testing.T) {
	stub := &scriptedQuizAPI{quiz: testQuiz()}
	session := quiz.NewSession(stub, 1, 2, zerolog.Nop())

	in := strings.NewReader("a\ns\nq\n")
	var out bytes.Buffer
	require.NoError(t, RunQuiz(context.Background(), session, in, &out))

	assert.Contains(t, out.String(), "Submit unlocks on the last question")
	assert.Equal(t, quiz.StateAnswering, session.State())
}

func TestRunQuizFailedGradingOffersRetry(t *testing.T) {
	stub := &scriptedQuizAPI{quiz: testQuiz(), markErr: errors.New("grader offline")}
	session := quiz.NewSession(stub, 1, 2, zerolog.Nop())

	in := strings.NewReader("a\nn\na\ns\nb\nq\n")
	var out bytes.Buffer
	require.NoError(t, RunQuiz(context.Background(), session, in, &out))

	assert.Contains(t, out.String(), "Grading failed")
	assert.Contains(t, out.String(), "answers are locked")
	assert.Contains(t, out.String(), "Cannot select", "selection after a grading attempt is refused")
}

func TestRenderReport(t *testing.T) {
	one, four, nine := 1, 4, 9
	quizzes := []models.Quiz{
		{StudentID: 3, Marks: &nine},
		{StudentID: 1, Marks: &one},
		{StudentID: 2, Marks: &four},
		{StudentID: 4},
	}

	var out bytes.Buffer
	RenderReport(&out, quizzes)
	text := out.String()

	assert.Contains(t, text, "0-2")
	assert.Contains(t, text, "3-5")
	assert.NotContains(t, text, "6-8", "empty buckets are omitted")
	assert.Contains(t, text, "9-10")

	// The table rows come after the header, sorted ascending by marks.
	lines := strings.Split(strings.TrimSpace(text), "\n")
	header := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "Student ID") {
			header = i
			break
		}
	}
	require.GreaterOrEqual(t, header, 0)
	rows := lines[header+1:]
	require.Len(t, rows, 3)
	assert.True(t, strings.HasPrefix(rows[0], "1"))
	assert.True(t, strings.HasPrefix(rows[1], "2"))
	assert.True(t, strings.HasPrefix(rows[2], "3"))
}

func TestRenderReportNoGradedQuizzes(t *testing.T) {
	var out bytes.Buffer
	RenderReport(&out, []models.Quiz{{StudentID: 1}})
	assert.Contains(t, out.String(), "No quizzes taken")
}

func TestRenderSubmissionCorrect(t *testing.T) {
	var out bytes.Buffer
	RenderSubmission(&out, models.SubmissionResult{
		QuizID: 7,
		Quiz:   models.Evaluation{CodeCorrect: true},
		Results: []models.TestResult{
			{Stdin: "1 2", Stdout: "3"},
		},
	})

	assert.Contains(t, out.String(), "Code Correct")
	assert.Contains(t, out.String(), "tutor quiz 7")
}

func TestRenderSubmissionIncorrect(t *testing.T) {
	var out bytes.Buffer
	RenderSubmission(&out, models.SubmissionResult{
		Quiz: models.Evaluation{
			CodeCorrect: false,
			CodeErrors: []models.CodeError{
				{ErrorType: "SyntaxError", Description: "missing semicolon", IncorrectCode: "return a + b"},
			},
		},
	})

	assert.Contains(t, out.String(), "Code Incorrect")
	assert.Contains(t, out.String(), "SyntaxError: missing semicolon")
	assert.NotContains(t, out.String(), "A quiz is ready")
}

func TestRenderQuizReview(t *testing.T) {
	marks := 1
	quiz := testQuiz()
	quiz.Username = "ada"
	quiz.Marks = &marks
	quiz.Answers = map[string]string{"0": "Iteration"}

	var out bytes.Buffer
	RenderQuizReview(&out, quiz)
	text := out.String()

	assert.Contains(t, text, "Quiz 7 — ada")
	assert.Contains(t, text, "Answered: Iteration")
	assert.Contains(t, text, "Not answered")
	assert.Contains(t, text, "Score: 1 out of 2")
}

func TestRenderProgramDetailLanguageFallback(t *testing.T) {
	detail := models.ProgramDetail{
		Program: models.Program{Title: "Sum", Description: "Add two ints."},
		Summaries: []models.Summary{
			{Language: "hi", Summary: "योग निकालता है"},
		},
	}

	var out bytes.Buffer
	RenderProgramDetail(&out, detail, "en")
	assert.Contains(t, out.String(), "Summary (hi)", "falls back to the summary that exists")
}
