package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"taskcli/internal/service"
)

// Register implements service.Auth. The created account is returned when
// the backend echoes it; otherwise only the username is known.
func (c *Client) Register(ctx context.Context, creds service.Credentials) (service.User, error) {
	resp, err := c.Do(ctx, http.MethodPost, "/users", creds, nil)
	if err != nil {
		return service.User{}, err
	}
	u := service.User{Username: creds.Username}
	var echoed service.User
	if json.Unmarshal(resp.Body, &echoed) == nil && echoed.Username != "" {
		u = echoed
	}
	return u, nil
}
