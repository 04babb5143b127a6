package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/app/log"
	"github.com/mytheresa/storefront/app/session"
)

type contextKey struct{}

// RequireSession rejects requests without a live admin session with 401.
// Accepted requests get their session in the context and a refreshed cookie.
func RequireSession(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := m.Load(r)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					api.WriteError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				api.WriteInternal(w, "Failed to load session", err)
				return
			}
			if sess.AdminID == "" {
				api.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if err := m.Refresh(w, r); err != nil {
				log.Warn("failed to refresh session", "admin", sess.AdminUsername, "err", err)
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*session.Session)
	return s, ok && s != nil
}
