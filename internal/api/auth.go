package api

import (
	"context"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// RegisterRequest creates a new account. ClassID is required for students.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	ClassID  int    `json:"class_id,omitempty"`
}

// Register creates an account and returns nothing useful beyond success;
// the caller logs in separately.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.postJSON(ctx, "/register", req, nil)
}

// Login starts a cookie session for the given credentials. The session
// cookie is retained by the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	return c.postJSON(ctx, "/login", payload, nil)
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/logout", nil, nil)
}

// Me returns the currently authenticated user, or a 401 RemoteError when no
// session is active.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/me", &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
