package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/session"
)

type stubAuthenticator struct {
	identities map[string]session.Identity
	err        error
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (session.Identity, error) {
	if s.err != nil {
		return session.Identity{}, s.err
	}
	id, ok := s.identities[token]
	if !ok {
		return session.Identity{}, session.ErrNoSession
	}
	return id, nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := session.IdentityFrom(r.Context()); ok {
		w.Header().Set("X-User", id.SessionID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func TestRequireAuth(t *testing.T) {
	a := NewAuth(stubAuthenticator{identities: map[string]session.Identity{
		"good": {UserID: 1, SessionID: "s1"},
	}}, logger.Nop())
	h := a.RequireAuth(http.HandlerFunc(echoUser))

	tests := []struct {
		name       string
		cookie     string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"unknown token", "bad", http.StatusUnauthorized},
		{"live session", "good", http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/user/progress", nil)
		if tt.cookie != "" {
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.wantStatus)
		}
		if tt.wantStatus == http.StatusNoContent && rec.Header().Get("X-User") != "s1" {
			t.Errorf("%s: identity not attached", tt.name)
		}
	}
}

func TestRequireAuth_StoreFailureIs500(t *testing.T) {
	a := NewAuth(stubAuthenticator{err: errors.New("redis: connection refused")}, logger.Nop())
	h := a.RequireAuth(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	a := NewAuth(stubAuthenticator{identities: map[string]session.Identity{
		"good": {UserID: 1, SessionID: "s1"},
	}}, logger.Nop())
	h := a.OptionalAuth(http.HandlerFunc(echoUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/user", nil))
	if rec.Code != http.StatusNoContent || rec.Header().Get("X-User") != "" {
		t.Errorf("anonymous: status %d user %q", rec.Code, rec.Header().Get("X-User"))
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-User") != "s1" {
		t.Error("identity not attached for live session")
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	h := RequestLogger(logger.Nop())(SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
