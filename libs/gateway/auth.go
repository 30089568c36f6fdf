package gateway

import (
	"context"
	"net/http"
	"strings"
)

// Login exchanges admin credentials for a backend token. It is the only
// unauthenticated call; role checks are left to the caller.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, validationError("email", "email is required")
	}
	if password == "" {
		return nil, validationError("password", "password is required")
	}

	payload, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	raw, err := c.send(ctx, call{
		method:      http.MethodPost,
		path:        "/Auth/login",
		body:        payload,
		contentType: "application/json",
		anonymous:   true,
	})
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := c.decode(raw, &result); err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.Token) == "" {
		return nil, &Error{Status: http.StatusBadGateway, Message: "login response did not include a token"}
	}
	return &result, nil
}

// ListUsers returns every registered user. Users are read-only here.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return getList[User](ctx, c, "/auth/users", nil, "users")
}
