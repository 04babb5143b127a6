// Package session keeps server-side admin sessions referenced by an HTTP-only cookie.
//
// The cookie carries a random token; stores only ever see the SHA-256 of
// that token, so a leaked sessions table cannot be replayed as cookies.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id is unknown or its record has expired.
var ErrNotFound = errors.New("session not found")

// Session is the state kept for a logged-in admin.
type Session struct {
	AdminID       string
	AdminUsername string
	ExpiresAt     time.Time
}

// Store is the key-value service sessions live in.
// Implementations must treat expired records as absent.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	// Set stores s under id and stamps its ExpiresAt to now+ttl.
	Set(ctx context.Context, id string, s *Session, ttl time.Duration) error
	// Touch pushes the expiry of a live session to now+ttl.
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired prunes expired records and reports how many went away.
	DeleteExpired(ctx context.Context) (int64, error)
}
