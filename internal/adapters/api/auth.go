package api

import (
	"context"
	"net/http"

	"github.com/klyro-io/klyro-cli/internal/domain"
	"github.com/klyro-io/klyro-cli/internal/ports"
)

type Auth struct {
	c *Client
}

var _ ports.AuthAPI = (*Auth)(nil)

func NewAuth(c *Client) *Auth { return &Auth{c: c} }

func (a *Auth) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	var pair domain.TokenPair
	body := map[string]string{"email": email, "password": password}
	if err := a.c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &pair, WithoutAuth()); err != nil {
		return domain.TokenPair{}, err
	}
	return pair, nil
}

func (a *Auth) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	var pair domain.TokenPair
	body := map[string]string{"refresh_token": refreshToken}
	if err := a.c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &pair, WithoutAuth()); err != nil {
		return domain.TokenPair{}, err
	}
	return pair, nil
}
