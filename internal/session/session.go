// Package session holds the authenticated-user value shared by every
// component. It is an explicit, injected context rather than a process-wide
// singleton: login and logout are plain state transitions on the instance
// the caller owns.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// ErrNotAuthenticated means no server-side session is active.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthAPI is the slice of the remote client the session context needs.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.User, error)
}

// Context carries the current user. It is written only here; all other
// components read it through User.
type Context struct {
	api    AuthAPI
	logger zerolog.Logger

	mu   sync.RWMutex
	user *models.User
}

// New creates an unauthenticated session context.
func New(authAPI AuthAPI, logger zerolog.Logger) *Context {
	return &Context{
		api:    authAPI,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Login authenticates and resolves the user via /me.
func (s *Context) Login(ctx context.Context, username, password string) (models.User, error) {
	if err := s.api.Login(ctx, username, password); err != nil {
		return models.User{}, err
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.Info().Int("user_id", user.ID).Str("role", user.Role).Msg("logged in")
	return user, nil
}

// Ensure resolves the current user from the active cookie session. A 401
// clears any cached user and returns ErrNotAuthenticated; transport errors
// pass through unchanged.
func (s *Context) Ensure(ctx context.Context) (models.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.clear()
			return models.User{}, ErrNotAuthenticated
		}
		return models.User{}, err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, nil
}

// Logout clears the local user first and then ends the remote session, so a
// failed remote call still leaves the client logged out locally.
func (s *Context) Logout(ctx context.Context) error {
	s.clear()
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("remote logout failed")
		return err
	}
	return nil
}

// User returns the cached user, if any.
func (s *Context) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Context) clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}
