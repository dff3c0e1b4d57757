package dashboard

import (
	"context"
	"errors"
	"sync"

	"visitr/internal/platform/models"
)

var ErrNoSession = errors.New("not logged in")

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// Session holds the operator's token and organization between calls.
type Session struct {
	mu    sync.RWMutex
	auth  Authenticator
	token string
	org   *models.Organization
}

func NewSession(auth Authenticator) *Session {
	return &Session{auth: auth}
}

// Load logs in and replaces any previous session.
func (s *Session) Load(ctx context.Context, email, password string) error {
	result, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = result.Token
	s.org = result.Organization
	return nil
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.org = nil
}

func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoSession
	}
	return s.token, nil
}

func (s *Session) Organization() *models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.org
}
