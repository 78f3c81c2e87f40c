package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
	"github.com/noah-isme/gema-tutor-cli/internal/report"
)

// RenderProgramDetail prints a program and the summary for the requested
// language, falling back to whatever summary exists.
func RenderProgramDetail(out io.Writer, detail models.ProgramDetail, language string) {
	fmt.Fprintf(out, "%s\n%s\n", detail.Program.Title, detail.Program.Description)

	var summary *models.Summary
	for i := range detail.Summaries {
		if detail.Summaries[i].Language == language {
			summary = &detail.Summaries[i]
			break
		}
	}
	if summary == nil && len(detail.Summaries) > 0 {
		summary = &detail.Summaries[0]
	}
	if summary == nil {
		return
	}

	fmt.Fprintf(out, "\nSummary (%s)\n%s\n", summary.Language, summary.Summary)
	if summary.Algorithm != "" {
		fmt.Fprintf(out, "\nAlgorithm\n%s\n", summary.Algorithm)
	}
	if summary.AudioLink != "" {
		fmt.Fprintf(out, "\nNarration available: %s\n", summary.AudioLink)
	}
}

// RenderSubmission prints an evaluation outcome: verdict, errors and
// per-test-case results.
func RenderSubmission(out io.Writer, result models.SubmissionResult) {
	verdict := "Incorrect"
	if result.Quiz.CodeCorrect {
		verdict = "Correct"
	}
	fmt.Fprintf(out, "Code %s\n", verdict)

	if len(result.Quiz.CodeErrors) > 0 {
		fmt.Fprintln(out, "\nErrors")
		for _, codeErr := range result.Quiz.CodeErrors {
			fmt.Fprintf(out, "- %s: %s\n", codeErr.ErrorType, codeErr.Description)
			if codeErr.IncorrectCode != "" {
				fmt.Fprintf(out, "    %s\n", codeErr.IncorrectCode)
			}
		}
	}

	for i, test := range result.Results {
		fmt.Fprintf(out, "\nTest Case %d\n", i+1)
		fmt.Fprintf(out, "  Input: %s\n  Output: %s\n", test.Stdin, test.Stdout)
		if test.Stderr != "" {
			fmt.Fprintf(out, "  Error: %s\n", test.Stderr)
		}
		if test.CompileOutput != "" {
			fmt.Fprintf(out, "  Compile Output: %s\n", test.CompileOutput)
		}
	}

	if result.Quiz.CodeCorrect {
		fmt.Fprintf(out, "\nA quiz is ready: tutor quiz %d\n", result.QuizID)
	}
}

// RenderQuizReview prints one student's quiz with their recorded answers and
// the grading outcome, for the professor's review view.
func RenderQuizReview(out io.Writer, quiz models.Quiz) {
	if quiz.Username != "" {
		fmt.Fprintf(out, "Quiz %d — %s\n", quiz.ID, quiz.Username)
	} else {
		fmt.Fprintf(out, "Quiz %d — student %d\n", quiz.ID, quiz.StudentID)
	}

	for i, question := range quiz.Questions {
		fmt.Fprintf(out, "\nQ%d: %s\n", i+1, question.Question)
		answer, answered := quiz.Answers[strconv.Itoa(i)]
		if answered {
			fmt.Fprintf(out, "  Answered: %s\n", answer)
		} else {
			fmt.Fprintln(out, "  Not answered")
		}
	}

	if quiz.Graded() {
		fmt.Fprintf(out, "\nScore: %d out of %d\n", *quiz.Marks, len(quiz.Questions))
	} else {
		fmt.Fprintln(out, "\nNot graded yet.")
	}
}

// RenderReport prints the score distribution and the graded quizzes sorted
// ascending by marks.
func RenderReport(out io.Writer, quizzes []models.Quiz) {
	graded := report.Graded(quizzes)
	if len(graded) == 0 {
		fmt.Fprintln(out, "No quizzes taken for this program.")
		return
	}

	fmt.Fprintln(out, "Score distribution")
	for _, bucket := range report.Aggregate(quizzes) {
		fmt.Fprintf(out, "  %-5s %s (%d)\n", bucket.Label, strings.Repeat("#", bucket.Count), bucket.Count)
	}

	fmt.Fprintln(out, "\nStudent ID  Marks")
	for _, quiz := range report.SortByMarks(graded) {
		fmt.Fprintf(out, "%-11d %d\n", quiz.StudentID, *quiz.Marks)
	}
}
