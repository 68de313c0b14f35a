package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no active session")

// Identity is the authenticated caller of a request. Handlers read it from
// the request context and pass it into service calls explicitly.
type Identity struct {
	UserID    int64
	SessionID string
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != 0
}

// Store persists live sessions so that logout can revoke a token before it
// expires.
type Store interface {
	Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (int64, error)
	Delete(ctx context.Context, sessionID string) error
}

type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Open starts a session for userID and returns the signed token that carries it.
func (m *Manager) Open(ctx context.Context, userID int64) (string, time.Time, error) {
	sid := uuid.NewString()
	now := m.now()
	expires := now.Add(m.ttl)

	if err := m.store.Save(ctx, sid, userID, m.ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("save session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expires, nil
}

// Authenticate verifies the token signature and expiry, then requires the
// session to still exist for the same user.
func (m *Manager) Authenticate(ctx context.Context, tokenString string) (Identity, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID == 0 || claims.ID == "" {
		return Identity{}, ErrNoSession
	}

	stored, err := m.store.Lookup(ctx, claims.ID)
	if err != nil {
		return Identity{}, err
	}
	if stored != userID {
		return Identity{}, ErrNoSession
	}
	return Identity{UserID: userID, SessionID: claims.ID}, nil
}

// Close revokes the session behind id.
func (m *Manager) Close(ctx context.Context, id Identity) error {
	if id.SessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, id.SessionID)
}
