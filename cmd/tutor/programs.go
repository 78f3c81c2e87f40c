package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/cli"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

func newProgramsCmd(a *app) *cobra.Command {
	var classID int

	cmd := &cobra.Command{
		Use:   "programs",
		Short: "List coding programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}

			var (
				programs []models.Program
				err      error
			)
			if classID > 0 {
				programs, err = a.client.ProgramsByClass(cmd.Context(), classID)
			} else {
				programs, err = a.client.Programs(cmd.Context())
			}
			if err != nil {
				return err
			}

			if len(programs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No programs available.")
				return nil
			}
			for _, p := range programs {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", p.ID, p.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&classID, "class", 0, "restrict to one classroom")
	cmd.AddCommand(newProgramCreateCmd(a), newProgramDeleteCmd(a))
	return cmd
}

func newProgramCreateCmd(a *app) *cobra.Command {
	var (
		title       string
		description string
		codeFile    string
		classID     int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new program to a classroom",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			if user.Role != models.RoleProfessor {
				return fmt.Errorf("publishing programs requires a professor account")
			}
			if title == "" || codeFile == "" {
				return fmt.Errorf("--title and --code are required")
			}

			code, err := os.ReadFile(codeFile)
			if err != nil {
				return err
			}

			err = a.client.CreateProgram(cmd.Context(), api.CreateProgramRequest{
				Title:       title,
				Description: description,
				Code:        string(code),
				ClassID:     classID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Program published.")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "program title")
	cmd.Flags().StringVar(&description, "description", "", "program description")
	cmd.Flags().StringVar(&codeFile, "code", "", "file holding the reference solution")
	cmd.Flags().IntVar(&classID, "class", 0, "classroom to publish to")
	return cmd
}

func newProgramDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("program id must be a number")
			}

			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			if user.Role != models.RoleProfessor {
				return fmt.Errorf("removing programs requires a professor account")
			}

			if err := a.client.DeleteProgram(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Program removed.")
			return nil
		},
	}
}

func newProgramCmd(a *app) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "program <id>",
		Short: "Show a program and its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("program id must be a number")
			}
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}

			detail, err := a.client.ProgramDetail(cmd.Context(), id)
			if err != nil {
				return err
			}

			if language == "" {
				language = a.cfg.Language
			}
			cli.RenderProgramDetail(cmd.OutOrStdout(), detail, language)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "preferred summary language")
	return cmd
}
