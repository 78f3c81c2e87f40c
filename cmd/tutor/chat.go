package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-tutor-cli/internal/chat"
	"github.com/noah-isme/gema-tutor-cli/internal/cli"
	"github.com/noah-isme/gema-tutor-cli/pkg/mic"
)

func newChatCmd(a *app) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "chat <program-id>",
		Short: "Chat with the tutor about a program",
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

			if language == "" {
				language = a.cfg.Language
			}
			session := chat.NewSession(a.client, programID, user.ID, a.logger,
				chat.WithInterval(a.cfg.PollInterval),
				chat.WithLanguage(language),
			)

			source := mic.DefaultSource()
			if a.cfg.RecorderPath != "" {
				source.Path = a.cfg.RecorderPath
			}
			recorder := mic.NewRecorder(source, a.cfg.RecordWindow, a.logger)

			mediaDir, err := a.mediaDir()
			if err != nil {
				return err
			}

			return cli.RunChat(cmd.Context(), cli.ChatOptions{
				Session:    session,
				Recorder:   recorder,
				Downloader: a.client,
				MediaDir:   mediaDir,
			}, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "reply language for the tutor")
	return cmd
}
