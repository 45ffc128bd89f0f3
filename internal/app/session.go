// Package app holds the signed-in state shared by the terminal UI, the local
// web view and the CLI commands.
package app

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Joseda-hg/supertask/internal/api"
	"github.com/Joseda-hg/supertask/internal/model"
)

// Session owns the current user. Callers build it once and pass it down.
type Session struct {
	client *api.Client
	log    logrus.FieldLogger

	mu   sync.Mutex
	user *model.User
}

func NewSession(client *api.Client, logger logrus.FieldLogger) *Session {
	return &Session{client: client, log: logger}
}

func (s *Session) Client() *api.Client {
	return s.client
}

// Init restores the user when tokens are stored. When the user cannot be
// fetched the stored tokens are dropped; a failing logout is only logged.
func (s *Session) Init(ctx context.Context) {
	if !s.client.Auth.IsAuthenticated() {
		return
	}

	user, err := s.client.Auth.User(ctx)
	if err == nil {
		s.setUser(&user)
		return
	}

	s.log.WithError(err).Warn("restore session")
	if _, err := s.client.Auth.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("logout during init")
	}
	s.setUser(nil)
}

func (s *Session) Login(ctx context.Context, username, password string) error {
	resp, err := s.client.Auth.Login(ctx, model.Credentials{Username: username, Password: password})
	if err != nil {
		s.log.WithError(err).Warn("login")
		return err
	}
	s.setUser(&resp.User)
	s.log.WithField("user", resp.User.Username).Info("logged in")
	return nil
}

func (s *Session) Register(ctx context.Context, input model.RegisterInput) error {
	resp, err := s.client.Auth.Register(ctx, input)
	if err != nil {
		s.log.WithError(err).Warn("register")
		return err
	}
	s.setUser(&resp.User)
	s.log.WithField("user", resp.User.Username).Info("registered")
	return nil
}

// Logout always ends the local session. The API error, if any, is logged and
// returned.
func (s *Session) Logout(ctx context.Context) error {
	defer s.setUser(nil)
	if _, err := s.client.Auth.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("logout")
		return err
	}
	s.log.Info("logged out")
	return nil
}

func (s *Session) UpdateProfile(ctx context.Context, input model.ProfileInput) error {
	user, err := s.client.Auth.UpdateProfile(ctx, input)
	if err != nil {
		s.log.WithError(err).Warn("update profile")
		return err
	}
	s.setUser(&user)
	return nil
}

// Expire drops the user without calling the API. Used after the client
// reports an expired session.
func (s *Session) Expire() {
	s.setUser(nil)
}

func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Session) setUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}
