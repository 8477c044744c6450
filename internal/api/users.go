package api

import (
	"context"
	"net/http"

	"taskpad/internal/model"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) Result[model.Session] {
	var out model.Session
	if err := c.do(ctx, http.MethodPost, "/users", in, &out, "Registration failed"); err != nil {
		return Fail[model.Session](err)
	}
	return Ok(out)
}

func (c *Client) Login(ctx context.Context, email, password string) Result[model.Session] {
	body := map[string]string{"email": email, "password": password}
	var out model.Session
	if err := c.do(ctx, http.MethodPost, "/users/login", body, &out, "Login failed"); err != nil {
		return Fail[model.Session](err)
	}
	return Ok(out)
}

func (c *Client) Profile(ctx context.Context) Result[model.Profile] {
	var out model.Profile
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &out, "Failed to get user profile"); err != nil {
		return Fail[model.Profile](err)
	}
	return Ok(out)
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) Result[Ack] {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	var out Ack
	if err := c.do(ctx, http.MethodPost, "/users/change-password", body, &out, "Failed to update password"); err != nil {
		return Fail[Ack](err)
	}
	if out.Message == "" {
		out.Message = "Password updated successfully"
	}
	return Ok(out)
}
