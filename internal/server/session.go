// =============================================================================
// Text Info Extractor - Session Middleware
// =============================================================================
//
// withSession resolves the extractor_session cookie to the caller's Store
// and puts it in the request context. A missing, malformed or expired
// cookie starts a new session.
//
// =============================================================================

package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ginjaninja78/text-info-extractor/internal/store"
)

// =============================================================================
// SESSION MIDDLEWARE
// =============================================================================

type ctxKey struct{}

// withSession resolves the session cookie to a store, starting a new
// session when the cookie is missing, malformed or expired.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var st *store.Store
		if c, err := r.Cookie(SessionCookie); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				st, _ = s.sessions.Get(id)
			}
		}
		if st == nil {
			var id uuid.UUID
			id, st = s.sessions.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id.String(),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			s.logger.Debug("session started", "session", id.String())
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, st)))
	})
}

func sessionStore(ctx context.Context) *store.Store {
	return ctx.Value(ctxKey{}).(*store.Store)
}
