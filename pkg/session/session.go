// Package session keeps the authenticated operator's token and profile,
// persisted to origin-scoped storage and read once at startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"backoffice/pkg/models"
	"backoffice/pkg/storage"
)

// Storage keys. TokenKey is the one canonical key the guard checks.
const (
	TokenKey    = "token"
	UserKey     = "user"
	TokenCookie = "token"
)

// ErrNoSession is returned when an operation needs a signed-in operator.
var ErrNoSession = errors.New("no active session")

// Session is the authenticated-user context.
type Session struct {
	Token string
	User  *models.User
}

// Authenticated reports whether both halves of the session are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Store owns the current session and its persisted copy.
type Store struct {
	backend storage.Store
	logger  *zap.Logger

	mu      sync.RWMutex
	current Session
}

// NewStore wraps backend. Call Load before reading the session.
func NewStore(backend storage.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger.Named("session")}
}

// Load reads the persisted session. A token without a user, a user without
// a token, or a user that does not decode to an id, name and email is
// cleared so the two keys always move together.
func (s *Store) Load(ctx context.Context) (Session, error) {
	token, hasToken, err := s.backend.Get(ctx, TokenKey)
	if err != nil {
		return Session{}, fmt.Errorf("read %s: %w", TokenKey, err)
	}
	raw, hasUser, err := s.backend.Get(ctx, UserKey)
	if err != nil {
		return Session{}, fmt.Errorf("read %s: %w", UserKey, err)
	}

	var user *models.User
	if hasUser {
		var decoded models.User
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			s.logger.Warn("discarding unreadable stored user", zap.Error(err))
			hasUser = false
		} else if !identified(decoded) {
			s.logger.Warn("discarding stored user without identity", zap.Int64("user_id", decoded.ID))
			hasUser = false
		} else {
			user = &decoded
		}
	}

	if hasToken && token != "" && hasUser {
		sess := Session{Token: token, User: user}
		s.replace(sess)
		return sess, nil
	}

	if hasToken || hasUser || raw != "" {
		s.logger.Info("clearing partial session", zap.Bool("token", hasToken), zap.Bool("user", hasUser))
		if err := s.removeAll(ctx); err != nil {
			return Session{}, err
		}
	}
	s.replace(Session{})
	return Session{}, nil
}

// identified reports whether u carries the fields every page relies on.
func identified(u models.User) bool {
	return u.ID != 0 && u.FirstName != "" && u.LastName != "" && u.Email != ""
}

// Get returns the session as last loaded or set.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Require returns the session or ErrNoSession.
func (s *Store) Require() (Session, error) {
	sess := s.Get()
	if !sess.Authenticated() {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Set persists token, user and the token cookie together.
func (s *Store) Set(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return errors.New("session token is required")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	writes := []struct {
		name string
		fn   func() error
	}{
		{TokenKey, func() error { return s.backend.Set(ctx, TokenKey, token) }},
		{UserKey, func() error { return s.backend.Set(ctx, UserKey, string(raw)) }},
		{"cookie " + TokenCookie, func() error { return s.backend.SetCookie(ctx, TokenCookie, token) }},
	}
	for _, w := range writes {
		if err := w.fn(); err != nil {
			// Never leave half a session behind.
			if rollbackErr := s.removeAll(ctx); rollbackErr != nil {
				s.logger.Error("rolling back partial session failed", zap.Error(rollbackErr))
			}
			s.replace(Session{})
			return fmt.Errorf("write %s: %w", w.name, err)
		}
	}

	s.replace(Session{Token: token, User: &user})
	s.logger.Info("session started", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return nil
}

// Clear removes the token, the user and the token cookie. The in-memory
// session is dropped even when a removal fails.
func (s *Store) Clear(ctx context.Context) error {
	s.replace(Session{})
	if err := s.removeAll(ctx); err != nil {
		s.logger.Error("clearing stored session failed", zap.Error(err))
		return err
	}
	s.logger.Info("session cleared")
	return nil
}

// Token returns the bearer token or "".
func (s *Store) Token() string {
	return s.Get().Token
}

// UserID returns the session user's id or "".
func (s *Store) UserID() string {
	sess := s.Get()
	if sess.User == nil || sess.User.ID == 0 {
		return ""
	}
	return strconv.FormatInt(sess.User.ID, 10)
}

func (s *Store) replace(sess Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

func (s *Store) removeAll(ctx context.Context) error {
	return errors.Join(
		s.backend.Remove(ctx, TokenKey),
		s.backend.Remove(ctx, UserKey),
		s.backend.DeleteCookie(ctx, TokenCookie),
	)
}
