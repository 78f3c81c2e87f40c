package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/cli"
	"github.com/noah-isme/gema-tutor-cli/internal/submission"
)

func newSubmitCmd(a *app) *cobra.Command {
	var (
		languageID   int
		quizLanguage string
	)

	cmd := &cobra.Command{
		Use:   "submit <program-id> <file>",
		Short: "Submit code for evaluation and quiz generation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("program id must be a number")
			}

			code, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}

			if quizLanguage == "" {
				quizLanguage = a.cfg.Language
			}

			controller := submission.NewController(a.client, validator.New(), a.logger)
			result, err := controller.Submit(cmd.Context(), api.SubmitRequest{
				ProgramID:    programID,
				UserID:       user.ID,
				Code:         string(code),
				LanguageID:   languageID,
				QuizLanguage: quizLanguage,
			})
			if err != nil {
				return err
			}
			if result == nil {
				return nil
			}

			cli.RenderSubmission(cmd.OutOrStdout(), *result)
			return nil
		},
	}

	cmd.Flags().IntVar(&languageID, "language-id", 50, "evaluator language id of the submitted code")
	cmd.Flags().StringVar(&quizLanguage, "quiz-language", "", "language for the generated quiz")
	return cmd
}

func newSubmissionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submissions <program-id>",
		Short: "List your stored submissions for a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("program id must be a number")
			}

			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}

			submissions, err := a.client.SubmissionsForProgramUser(cmd.Context(), programID, user.ID)
			if err != nil {
				return err
			}

			if len(submissions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No submissions yet.")
				return nil
			}
			for _, sub := range submissions {
				verdict := "ok"
				if sub.HasError {
					verdict = "errors"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-6s  %s\n", sub.ID, verdict, sub.Feedback)
			}
			return nil
		},
	}
}
