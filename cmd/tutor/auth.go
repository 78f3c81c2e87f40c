package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

func newRegisterCmd(a *app) *cobra.Command {
	var (
		username string
		password string
		role     string
		classID  int
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}
			if role != models.RoleStudent && role != models.RoleProfessor {
				return fmt.Errorf("role must be %q or %q", models.RoleStudent, models.RoleProfessor)
			}

			err := a.client.Register(cmd.Context(), api.RegisterRequest{
				Username: username,
				Password: password,
				Role:     role,
				ClassID:  classID,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Log in with: tutor login")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&role, "role", models.RoleStudent, "account role (student or professor)")
	cmd.Flags().IntVar(&classID, "class", 0, "classroom id (students)")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Username: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			user, err := a.sess.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			if err := a.client.SaveSession(a.sessionFile); err != nil {
				a.logger.Warn().Err(err).Msg("could not persist session")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.sess.Logout(cmd.Context())

			// The local session file goes away regardless of whether the
			// remote call succeeded.
			if removeErr := os.Remove(a.sessionFile); removeErr != nil && !os.IsNotExist(removeErr) {
				a.logger.Warn().Err(removeErr).Msg("could not remove session file")
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)", user.Username, user.Role)
			if user.ClassID != 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", class %d", user.ClassID)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
