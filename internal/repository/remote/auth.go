package remote

import (
	"context"
	"net/http"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
)

// AuthService calls the backend's account endpoints.
type AuthService struct {
	c *Client
}

func NewAuthService(c *Client) *AuthService {
	return &AuthService{c: c}
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (normalize.BackendLogin, error) {
	var out normalize.BackendLogin
	if err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, normalize.LoginPayload(req), &out); err != nil {
		return normalize.BackendLogin{}, err
	}
	return out, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.RegisteredUser, error) {
	var out normalize.BackendAuthUser
	if err := s.c.do(ctx, http.MethodPost, "/auth/register", nil, normalize.RegisterPayload(req), &out); err != nil {
		return model.RegisteredUser{}, err
	}
	return normalize.RegisteredUser(out), nil
}

// Me returns the account behind the current bearer token.
func (s *AuthService) Me(ctx context.Context) (normalize.BackendAuthUser, error) {
	var out normalize.BackendAuthUser
	if err := s.c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return normalize.BackendAuthUser{}, err
	}
	return out, nil
}
