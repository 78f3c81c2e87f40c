package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/cli"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
	"github.com/noah-isme/gema-tutor-cli/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		classID int
		export  string
	)

	cmd := &cobra.Command{
		Use:   "report [program-id]",
		Short: "Show the class score report for a program or classroom",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			if user.Role != models.RoleProfessor {
				return fmt.Errorf("reports require a professor account")
			}

			var quizzes []models.Quiz
			switch {
			case len(args) == 1:
				programID, convErr := strconv.Atoi(args[0])
				if convErr != nil {
					return fmt.Errorf("program id must be a number")
				}
				quizzes, err = a.client.QuizzesByProgram(cmd.Context(), programID)
			case classID > 0:
				quizzes, err = a.client.QuizzesByClass(cmd.Context(), classID)
			default:
				return fmt.Errorf("pass a program id or --class")
			}
			if err != nil {
				return err
			}

			cli.RenderReport(cmd.OutOrStdout(), quizzes)

			if export == "" {
				return nil
			}
			f, err := os.Create(export)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := report.WriteXLSX(f, quizzes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport exported to %s\n", export)
			return nil
		},
	}

	cmd.Flags().IntVar(&classID, "class", 0, "report on a whole classroom")
	cmd.Flags().StringVar(&export, "export", "", "write an xlsx report to this path")
	return cmd
}

func newReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review <student-id>",
		Short: "Review a student's quiz and their recorded answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			studentID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("student id must be a number")
			}

			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			if user.Role != models.RoleProfessor {
				return fmt.Errorf("reviewing quizzes requires a professor account")
			}

			quiz, err := a.client.QuizForUser(cmd.Context(), studentID)
			if err != nil {
				if api.IsNotFound(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "No quiz found for this student.")
					return nil
				}
				return err
			}

			cli.RenderQuizReview(cmd.OutOrStdout(), quiz)
			return nil
		},
	}
}
