package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

type stubAuthAPI struct {
	loginErr  error
	logoutErr error
	meUser    models.User
	meErr     error

	loginCalls  int
	logoutCalls int
	meCalls     int
}

func (s *stubAuthAPI) Login(ctx context.Context, username, password string) error {
	s.loginCalls++
	return s.loginErr
}

func (s *stubAuthAPI) Logout(ctx context.Context) error {
	s.logoutCalls++
	return s.logoutErr
}

func (s *stubAuthAPI) Me(ctx context.Context) (models.User, error) {
	s.meCalls++
	if s.meErr != nil {
		return models.User{}, s.meErr
	}
	return s.meUser, nil
}

func TestLoginResolvesAndCachesUser(t *testing.T) {
	stub := &stubAuthAPI{meUser: models.User{ID: 2, Username: "student", Role: models.RoleStudent}}
	sess := New(stub, zerolog.Nop())

	user, err := sess.Login(context.Background(), "student", "password")
	require.NoError(t, err)
	assert.Equal(t, 2, user.ID)

	cached, ok := sess.User()
	require.True(t, ok)
	assert.Equal(t, "student", cached.Username)
	assert.Equal(t, 1, stub.loginCalls)
	assert.Equal(t, 1, stub.meCalls)
}

func TestLoginFailureLeavesNoUser(t *testing.T) {
	stub := &stubAuthAPI{loginErr: &api.RemoteError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	sess := New(stub, zerolog.Nop())

	_, err := sess.Login(context.Background(), "student", "wrong")
	require.Error(t, err)

	_, ok := sess.User()
	assert.False(t, ok)
	assert.Equal(t, 0, stub.meCalls, "no /me call after a failed login")
}

func TestEnsureMapsUnauthorizedToNotAuthenticated(t *testing.T) {
	stub := &stubAuthAPI{meUser: models.User{ID: 2, Username: "student", Role: models.RoleStudent}}
	sess := New(stub, zerolog.Nop())

	_, err := sess.Login(context.Background(), "student", "password")
	require.NoError(t, err)

	stub.meErr = &api.RemoteError{Status: http.StatusUnauthorized, Message: "Not logged in"}
	_, err = sess.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, ok := sess.User()
	assert.False(t, ok, "a 401 clears the cached user")
}

func TestEnsurePassesTransportErrorsThrough(t *testing.T) {
	netErr := &api.NetworkError{Op: "GET /me", Err: errors.New("connection refused")}
	stub := &stubAuthAPI{meErr: netErr}
	sess := New(stub, zerolog.Nop())

	_, err := sess.Ensure(context.Background())
	assert.NotErrorIs(t, err, ErrNotAuthenticated)
	var got *api.NetworkError
	assert.ErrorAs(t, err, &got)
}

func TestLogoutClearsLocallyEvenIfRemoteFails(t *testing.T) {
	stub := &stubAuthAPI{meUser: models.User{ID: 2, Username: "student"}}
	sess := New(stub, zerolog.Nop())

	_, err := sess.Login(context.Background(), "student", "password")
	require.NoError(t, err)

	stub.logoutErr = errors.New("server unreachable")
	err = sess.Logout(context.Background())
	require.Error(t, err)

	_, ok := sess.User()
	assert.False(t, ok)
}
