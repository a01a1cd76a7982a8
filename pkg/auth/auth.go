// Package auth implements the login, registration and logout flows on top
// of the API client and the session store.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"backoffice/pkg/api"
	"backoffice/pkg/models"
	"backoffice/pkg/router"
	"backoffice/pkg/session"
	"backoffice/pkg/view"
)

// Where each flow lands.
const (
	HomePath     = "/dashboard"
	RegisterPath = "/register"
)

// Service runs the session lifecycle.
type Service struct {
	client   *api.Client
	sessions *session.Store
	nav      router.Navigator
	notes    view.Notifier
	logger   *zap.Logger
}

// NewService wires the flows. nav may be nil when no navigation should follow.
func NewService(client *api.Client, sessions *session.Store, nav router.Navigator, notes view.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, sessions: sessions, nav: nav, notes: notes, logger: logger.Named("auth")}
}

// Login posts credentials, stores the returned session and opens the dashboard.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (session.Session, error) {
	sess, err := s.login(ctx, creds)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", creds.Email), zap.Error(err))
		s.notify(false, api.Message(err))
		return session.Session{}, err
	}
	s.notify(true, "Login successful!")
	return sess, s.navigate(ctx, HomePath)
}

func (s *Service) login(ctx context.Context, creds models.Credentials) (session.Session, error) {
	if err := creds.Validate(); err != nil {
		return session.Session{}, err
	}
	resp, err := s.client.Do(ctx, api.Request{Method: http.MethodPost, Path: api.LoginPath, Body: creds})
	if err != nil {
		return session.Session{}, err
	}

	var out models.LoginResponse
	if err := decodeJSON(resp.Body, &out); err != nil {
		return session.Session{}, &api.DecodeError{Entity: "login", Err: err}
	}
	if out.Token == "" {
		return session.Session{}, &api.DecodeError{Entity: "login", Err: errors.New("response has no token")}
	}
	if out.User.RecordID() == "" {
		return session.Session{}, &api.DecodeError{Entity: "login", Err: errors.New("response has no user")}
	}

	if err := s.sessions.Set(ctx, out.Token, out.User); err != nil {
		return session.Session{}, fmt.Errorf("store session: %w", err)
	}
	return s.sessions.Get(), nil
}

// Register creates an account and sends the operator to the login page.
func (s *Service) Register(ctx context.Context, reg models.Registration) error {
	err := reg.Validate()
	if err == nil {
		_, err = s.client.Do(ctx, api.Request{Method: http.MethodPost, Path: api.RegisterPath, Body: reg})
	}
	if err != nil {
		s.logger.Warn("registration failed", zap.String("email", reg.Email), zap.Error(err))
		s.notify(false, api.Message(err))
		return err
	}
	s.notify(true, "Registration successful! Please log in.")
	return s.navigate(ctx, router.LoginPath)
}

// Logout clears token, user and cookie, then returns to the login page.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		s.notify(false, "Logout failed: "+err.Error())
		return err
	}
	s.notify(true, "Logged out")
	return s.navigate(ctx, router.LoginPath)
}

func (s *Service) navigate(ctx context.Context, target string) error {
	if s.nav == nil {
		return nil
	}
	return s.nav.Navigate(ctx, target)
}

func (s *Service) notify(ok bool, message string) {
	if s.notes == nil {
		return
	}
	if ok {
		s.notes.Success(message)
		return
	}
	s.notes.Error(message)
}

func decodeJSON(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(body, out)
}
