package apiclient

import (
	"context"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.post(ctx, "/auth/login", creds, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.post(ctx, "/auth/signup", req, &out)
	return out, err
}

// Me returns the current user as the backend sees it.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.get(ctx, "/auth/me", nil, &out)
	return out, err
}

func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.get(ctx, "/profile", nil, &out)
	return out, err
}

// UpdateProfile returns the server-confirmed user.
func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	var out models.User
	err := c.put(ctx, "/profile", upd, &out)
	return out, err
}
