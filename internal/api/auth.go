package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. It does not persist the
// token; identity handling belongs to the state layer.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp loginResponse
	if err := c.postForm(ctx, "/auth/jwt/login", form, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Register creates an account. It does not establish a session: the auth
// service decouples registration from login.
func (c *Client) Register(ctx context.Context, email, password string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodPost, "/auth/register", registerRequest{Email: email, Password: password}, false, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile resolves the stored token into a user record.
func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
