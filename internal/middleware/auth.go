package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/models"
	"github.com/fika-quiz/backend/internal/session"
)

// Authenticator resolves a session token to the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Identity, error)
}

type Auth struct {
	sessions Authenticator
	log      *logger.Logger
}

func NewAuth(sessions Authenticator, log *logger.Logger) *Auth {
	return &Auth{sessions: sessions, log: log.With("middleware", "auth")}
}

// RequireAuth rejects requests without a live session with 401.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.resolve(r)
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			a.log.Error("session lookup failed", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
	})
}

// OptionalAuth attaches the identity when a live session is present and
// otherwise passes the request through untouched.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.resolve(r)
		if err == nil {
			r = r.WithContext(session.WithIdentity(r.Context(), id))
		} else if !errors.Is(err, session.ErrNoSession) {
			a.log.Warn("session lookup failed", "path", r.URL.Path, "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) resolve(r *http.Request) (session.Identity, error) {
	token := session.TokenFromRequest(r)
	if token == "" {
		return session.Identity{}, session.ErrNoSession
	}
	return a.sessions.Authenticate(r.Context(), token)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
