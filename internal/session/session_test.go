package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]int64
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]int64{}}
}

func (s *memStore) Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = userID
	return nil
}

func (s *memStore) Lookup(ctx context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.sessions[sessionID]
	if !ok {
		return 0, ErrNoSession
	}
	return uid, nil
}

func (s *memStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func TestManager_OpenAuthenticateClose(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	m := NewManager(store, "test-secret", time.Hour)

	token, expires, err := m.Open(ctx, 42)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expires %v is not in the future", expires)
	}

	id, err := m.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id.UserID != 42 || id.SessionID == "" {
		t.Errorf("identity = %+v, want user 42 with a session id", id)
	}

	if err := m.Close(ctx, id); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Authenticate(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Errorf("after Close: err = %v, want ErrNoSession", err)
	}
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	issuer := NewManager(store, "other-secret", time.Hour)
	verifier := NewManager(store, "test-secret", time.Hour)

	token, _, err := issuer.Open(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Authenticate(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestManager_RejectsExpired(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newMemStore(), "test-secret", time.Hour)

	token, _, err := m.Open(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.Authenticate(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestManager_RejectsSessionOwnedByAnotherUser(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	m := NewManager(store, "test-secret", time.Hour)

	token, _, err := m.Open(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	for sid := range store.sessions {
		store.sessions[sid] = 6
	}
	if _, err := m.Authenticate(ctx, token); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestManager_RejectsGarbage(t *testing.T) {
	m := NewManager(newMemStore(), "test-secret", time.Hour)
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Authenticate(context.Background(), tok); !errors.Is(err, ErrNoSession) {
			t.Errorf("token %q: err = %v, want ErrNoSession", tok, err)
		}
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := IdentityFrom(context.Background()); ok {
		t.Error("empty context should carry no identity")
	}
	ctx := WithIdentity(context.Background(), Identity{UserID: 9, SessionID: "s"})
	id, ok := IdentityFrom(ctx)
	if !ok || id.UserID != 9 {
		t.Errorf("IdentityFrom = %+v, %v", id, ok)
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TokenFromRequest(r); got != "" {
		t.Errorf("no carrier: got %q", got)
	}

	r.Header.Set("Authorization", "Bearer header-token")
	if got := TokenFromRequest(r); got != "header-token" {
		t.Errorf("bearer: got %q", got)
	}

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
	if got := TokenFromRequest(r); got != "cookie-token" {
		t.Errorf("cookie should win: got %q", got)
	}
}

func TestSetAndClearCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, "tok", time.Now().Add(time.Hour), true)
	ClearCookie(rec, true)

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}
	if !cookies[0].HttpOnly || !cookies[0].Secure || cookies[0].Value != "tok" {
		t.Errorf("set cookie = %+v", cookies[0])
	}
	if cookies[1].MaxAge >= 0 {
		t.Errorf("clear cookie MaxAge = %d, want negative", cookies[1].MaxAge)
	}
}
