package paia

import (
	"context"
	"time"
)

// Session holds the state of an authenticated PAIA connection. It is owned by
// a single Client and must not be shared between concurrently acting clients.
type Session struct {
	Token     string
	PatronID  string
	Scope     []string
	ExpiresAt time.Time
}

// Valid reports whether the session carries a usable token at the given time.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// HasScope reports whether the session was granted the given scope.
func (s *Session) HasScope(scope string) bool {
	if s == nil {
		return false
	}
	for _, granted := range s.Scope {
		if granted == scope {
			return true
		}
	}
	return false
}

// SessionStore persists sessions across client instances. Implementations
// are keyed by an opaque string, typically the login username. Get returns
// (nil, nil) when no session is stored for the key.
type SessionStore interface {
	Get(ctx context.Context, key string) (*Session, error)
	Put(ctx context.Context, key string, ses *Session) error
	Delete(ctx context.Context, key string) error
}
