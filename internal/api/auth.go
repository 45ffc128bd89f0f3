package api

import (
	"context"
	"net/http"

	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/session"
)

type AuthService struct {
	client *Client
}

// Register creates an account and stores the returned session.
func (s *AuthService) Register(ctx context.Context, input model.RegisterInput) (model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := s.client.Do(ctx, http.MethodPost, "/auth/register/", input, &resp); err != nil {
		return model.AuthResponse{}, err
	}
	if err := s.client.tokens.Set(resp.Access, resp.Refresh); err != nil {
		return model.AuthResponse{}, err
	}
	return resp, nil
}

// Login opens a session and stores its tokens.
func (s *AuthService) Login(ctx context.Context, credentials model.Credentials) (model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := s.client.Do(ctx, http.MethodPost, "/auth/login/", credentials, &resp); err != nil {
		return model.AuthResponse{}, err
	}
	if err := s.client.tokens.Set(resp.Access, resp.Refresh); err != nil {
		return model.AuthResponse{}, err
	}
	return resp, nil
}

// Logout invalidates the refresh token server side. Local tokens are cleared
// whether or not the call succeeds.
func (s *AuthService) Logout(ctx context.Context) (model.Message, error) {
	refresh, err := s.client.tokens.Get(session.RefreshToken)
	if err != nil {
		return model.Message{}, err
	}

	var resp model.Message
	callErr := s.client.Do(ctx, http.MethodPost, "/auth/logout/", map[string]string{"refresh": refresh}, &resp)
	if err := s.client.tokens.Clear(); err != nil {
		return model.Message{}, err
	}
	if callErr != nil {
		return model.Message{}, callErr
	}
	return resp, nil
}

func (s *AuthService) User(ctx context.Context) (model.User, error) {
	var user model.User
	err := s.client.Do(ctx, http.MethodGet, "/auth/user/", nil, &user)
	return user, err
}

func (s *AuthService) Profile(ctx context.Context) (model.User, error) {
	var user model.User
	err := s.client.Do(ctx, http.MethodGet, "/auth/profile/", nil, &user)
	return user, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, input model.ProfileInput) (model.User, error) {
	var user model.User
	err := s.client.Do(ctx, http.MethodPut, "/auth/profile/", input, &user)
	return user, err
}

func (s *AuthService) ChangePassword(ctx context.Context, input model.PasswordChange) (model.Message, error) {
	var resp model.Message
	err := s.client.Do(ctx, http.MethodPost, "/auth/change-password/", input, &resp)
	return resp, err
}

// IsAuthenticated reports whether an access token is stored. It does not
// check the token with the server.
func (s *AuthService) IsAuthenticated() bool {
	token, err := s.client.tokens.Get(session.AccessToken)
	return err == nil && token != ""
}
