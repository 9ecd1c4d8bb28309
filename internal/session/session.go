// Package session exposes the current session identity to the data layer.
// Authentication flows live elsewhere; this package only consumes the ID
// token they produce.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"platescout/internal/common"
)

// Provider yields the identity of the signed-in user. Implementations
// return common.ErrUnauthorized when no valid session exists.
type Provider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// TokenSession derives the identity from the ID token handed over by the
// auth flow. The token is parsed without signature verification: the backend
// verified it when issuing, and this process holds no verification keys.
type TokenSession struct {
	mu        sync.RWMutex
	userID    string
	expiresAt time.Time
}

func NewTokenSession() *TokenSession {
	return &TokenSession{}
}

// SetToken installs a new ID token, replacing any previous identity.
func (s *TokenSession) SetToken(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("failed to parse id token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("id token without subject: %w", common.ErrUnauthorized)
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = sub
	s.expiresAt = expiresAt
	return nil
}

// Clear drops the session, e.g. on sign-out.
func (s *TokenSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.expiresAt = time.Time{}
}

// CurrentUserID returns the subject of the installed token, or
// common.ErrUnauthorized when no token is installed or it has expired.
func (s *TokenSession) CurrentUserID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.userID == "" {
		return "", common.ErrUnauthorized
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", fmt.Errorf("session expired: %w", common.ErrUnauthorized)
	}
	return s.userID, nil
}

// Static returns a Provider fixed to one user id. Intended for tests.
func Static(userID string) Provider {
	return staticProvider(userID)
}

type staticProvider string

func (p staticProvider) CurrentUserID(ctx context.Context) (string, error) {
	if p == "" {
		return "", common.ErrUnauthorized
	}
	return string(p), nil
}
