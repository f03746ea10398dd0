package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"salonai/models"
)

func (c *DefaultClient) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login posts credentials using the configured encoding. Backend revisions
// disagree on this; see LOGIN_ENCODING.
func (c *DefaultClient) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if c.loginEncoding == "json" {
		body := map[string]string{"email": email, "senha": password}
		if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *DefaultClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
