package rest

import (
	"context"
	"net/http"

	"taskcli/internal/service"
)

// Login implements service.Auth.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.LoginResult, error) {
	var res service.LoginResult
	if err := c.send(ctx, http.MethodPost, "/auth/login", creds, &res); err != nil {
		return service.LoginResult{}, err
	}
	return res, nil
}

// Me implements service.Service.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	var u service.User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return service.User{}, err
	}
	return u, nil
}

// ValidateToken implements service.Auth. The endpoint answers 200 or 401
// with a plain-text body, so nothing is decoded.
func (c *Client) ValidateToken(ctx context.Context) error {
	return c.get(ctx, "/auth/validate-token", nil)
}
