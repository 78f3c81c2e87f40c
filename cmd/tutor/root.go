package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/config"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
	"github.com/noah-isme/gema-tutor-cli/internal/session"
)

// app bundles the collaborators every subcommand needs. It is built once in
// the root PersistentPreRunE so commands only deal with their own flags.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	client *api.Client
	sess   *session.Context

	stateDir    string
	sessionFile string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var verbose bool

	root := &cobra.Command{
		Use:           "tutor",
		Short:         "Terminal client for the GEMA coding tutor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProgramsCmd(a),
		newProgramCmd(a),
		newSubmitCmd(a),
		newSubmissionsCmd(a),
		newQuizCmd(a),
		newChatCmd(a),
		newReportCmd(a),
		newReviewCmd(a),
	)
	return root
}

func (a *app) init(verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	client, err := api.New(cfg.BaseURL, cfg.HTTPTimeout, a.logger)
	if err != nil {
		return err
	}
	a.client = client

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	a.stateDir = filepath.Join(home, ".gema-tutor")
	a.sessionFile = filepath.Join(a.stateDir, "session.json")

	if err := a.client.LoadSession(a.sessionFile); err != nil {
		a.logger.Warn().Err(err).Msg("could not restore saved session")
	}

	a.sess = session.New(client, a.logger)
	return nil
}

// requireUser resolves the current user from the saved cookie session and
// turns the unauthenticated case into an actionable message.
func (a *app) requireUser(ctx context.Context) (models.User, error) {
	user, err := a.sess.Ensure(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return models.User{}, fmt.Errorf("not logged in; run: tutor login")
		}
		return models.User{}, err
	}
	return user, nil
}

// mediaDir is where downloaded voice replies land.
func (a *app) mediaDir() (string, error) {
	dir := filepath.Join(a.stateDir, "media")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
