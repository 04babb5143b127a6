package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultCookieName = "storefront.sid"
	DefaultTTL        = 7 * 24 * time.Hour
)

type Options struct {
	CookieName string
	TTL        time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// Manager ties a Store to the session cookie.
type Manager struct {
	store  Store
	name   string
	ttl    time.Duration
	secure bool
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Manager{
		store:  store,
		name:   opts.CookieName,
		ttl:    opts.TTL,
		secure: opts.Secure,
	}
}

func (m *Manager) CookieName() string { return m.name }

// Create starts a session for the admin and sets the cookie on w.
// Any session the request already carried is dropped first.
func (m *Manager) Create(w http.ResponseWriter, r *http.Request, adminID, username string) (*Session, error) {
	ctx := r.Context()
	if token, ok := m.token(r); ok {
		if err := m.store.Delete(ctx, hashToken(token)); err != nil {
			return nil, fmt.Errorf("drop previous session: %w", err)
		}
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := &Session{AdminID: adminID, AdminUsername: username}
	if err := m.store.Set(ctx, hashToken(token), sess, m.ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	m.setCookie(w, token)
	return sess, nil
}

// Load returns the session referenced by the request cookie, or ErrNotFound.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	token, ok := m.token(r)
	if !ok {
		return nil, ErrNotFound
	}
	return m.store.Get(r.Context(), hashToken(token))
}

// Refresh extends the current session by the full TTL and re-issues the cookie.
func (m *Manager) Refresh(w http.ResponseWriter, r *http.Request) error {
	token, ok := m.token(r)
	if !ok {
		return ErrNotFound
	}
	if err := m.store.Touch(r.Context(), hashToken(token), m.ttl); err != nil {
		return err
	}
	m.setCookie(w, token)
	return nil
}

// Destroy deletes the current session and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	if token, ok := m.token(r); ok {
		if err := m.store.Delete(r.Context(), hashToken(token)); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return nil
}

// Prune removes expired sessions from the store.
func (m *Manager) Prune(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

func (m *Manager) token(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (m *Manager) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  time.Now().Add(m.ttl),
	})
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken creates a SHA-256 hash of the token
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
