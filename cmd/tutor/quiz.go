package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-tutor-cli/internal/cli"
	"github.com/noah-isme/gema-tutor-cli/internal/quiz"
)

func newQuizCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quiz <program-id>",
		Short: "Take the quiz generated for a program",
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

			session := quiz.NewSession(a.client, programID, user.ID, a.logger)
			return cli.RunQuiz(cmd.Context(), session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
