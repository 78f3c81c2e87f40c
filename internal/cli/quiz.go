// Package cli contains the interactive terminal front ends for the quiz,
// chat and program views.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/gema-tutor-cli/internal/quiz"
)

// RunQuiz drives a quiz session over a line-based terminal loop. Commands:
// a letter selects an option for the question in view, n/p navigate, s
// submits (only offered once every question is answered and the cursor sits
// on the last one), q leaves.
func RunQuiz(ctx context.Context, session *quiz.Session, in io.Reader, out io.Writer) error {
	if err := session.Load(ctx); err != nil {
		return err
	}

	switch session.State() {
	case quiz.StateNotFound:
		fmt.Fprintln(out, "Quiz not found.")
		return nil
	case quiz.StateGraded:
		marks, total := session.Score()
		fmt.Fprintf(out, "This quiz is already graded: %d out of %d.\n", marks, total)
		return nil
	}

	scanner := bufio.NewScanner(in)
	printQuestion(out, session)

	for session.State() == quiz.StateAnswering {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch input {
		case "":
			continue
		case "n", "next":
			session.Next()
			printQuestion(out, session)
		case "p", "prev":
			session.Prev()
			printQuestion(out, session)
		case "q", "quit":
			return nil
		case "s", "submit":
			if !session.CanSubmit() && !session.Submitted() {
				fmt.Fprintln(out, "Submit unlocks on the last question once every question is answered.")
				continue
			}
			result, err := session.Submit(ctx)
			if err != nil {
				fmt.Fprintf(out, "Grading failed: %v\n", err)
				fmt.Fprintln(out, "Your answers are locked; try submitting again.")
				continue
			}
			fmt.Fprintf(out, "\nYou scored %d out of %d.\n", result.Marks, result.Total)
			fmt.Fprintln(out, "Your response has been recorded.")
		default:
			selectOption(out, session, input)
		}
	}

	return nil
}

func selectOption(out io.Writer, session *quiz.Session, input string) {
	question, ok := session.Current()
	if !ok {
		return
	}
	if len(input) != 1 || input[0] < 'a' || int(input[0]-'a') >= len(question.Options) {
		fmt.Fprintf(out, "Enter a letter a-%c, n, p, s or q.\n", 'a'+len(question.Options)-1)
		return
	}

	option := question.Options[input[0]-'a']
	if err := session.Select(option); err != nil {
		fmt.Fprintf(out, "Cannot select: %v\n", err)
		return
	}
	printQuestion(out, session)
}

func printQuestion(out io.Writer, session *quiz.Session) {
	question, ok := session.Current()
	if !ok {
		return
	}

	total := len(session.Quiz().Questions)
	fmt.Fprintf(out, "\nQ%d/%d: %s\n", session.Cursor()+1, total, question.Question)

	selected, _ := session.Answer(session.Cursor())
	for i, option := range question.Options {
		marker := " "
		if option == selected {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %c. %s\n", marker, 'a'+i, option)
	}

	if session.CanSubmit() {
		fmt.Fprintln(out, "All questions answered. Type s to submit.")
	}
}
