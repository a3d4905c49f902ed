package api

import (
	"context"
	"net/http"

	"github.com/jaakkos/storefront/internal/app"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the body of a successful registration. The demo backend
// echoes the password back; nothing here reads it.
type RegisterResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// IdentityClient implements app.IdentityService.
type IdentityClient struct{ c *Client }

func NewIdentityClient(c *Client) *IdentityClient { return &IdentityClient{c: c} }

// Login implements app.IdentityService.
func (ic *IdentityClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp LoginResponse
	if err := ic.c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Register implements app.IdentityService.
func (ic *IdentityClient) Register(ctx context.Context, reg app.Registration) error {
	req := RegisterRequest{Username: reg.Username, Email: reg.Email, Password: reg.Password}
	return ic.c.do(ctx, http.MethodPost, "/users", req, nil)
}
