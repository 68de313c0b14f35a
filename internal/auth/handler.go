package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fika-quiz/backend/internal/accounts"
	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/models"
	"github.com/fika-quiz/backend/internal/session"
)

// AccountResolver maps a verified identity onto a stored account.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, identity models.ExternalIdentity, referralCode string) (*models.User, error)
	GetAccount(ctx context.Context, userID int64) (*models.User, error)
}

// SessionOpener issues and revokes browser sessions.
type SessionOpener interface {
	Open(ctx context.Context, userID int64) (string, time.Time, error)
	Close(ctx context.Context, id session.Identity) error
}

type Handler struct {
	provider     IdentityProvider
	states       StateStore
	accounts     AccountResolver
	sessions     SessionOpener
	frontendURL  string
	secureCookie bool
	log          *logger.Logger
}

type HandlerConfig struct {
	FrontendURL  string
	SecureCookie bool
}

func NewHandler(provider IdentityProvider, states StateStore, accounts AccountResolver, sessions SessionOpener, cfg HandlerConfig, log *logger.Logger) *Handler {
	return &Handler{
		provider:     provider,
		states:       states,
		accounts:     accounts,
		sessions:     sessions,
		frontendURL:  strings.TrimRight(cfg.FrontendURL, "/"),
		secureCookie: cfg.SecureCookie,
		log:          log.With("handler", "auth"),
	}
}

// ── OAuth Handshake ─────────────────────────────────────

// Login redirects to the provider's consent page. An optional ?ref= referral
// code rides along in the state.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))

	state, err := h.states.Issue(r.Context(), ref)
	if err != nil {
		h.log.Error("issue oauth state failed", "error", err)
		h.redirectFrontend(w, r, "/login")
		return
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.log.Info("oauth consent denied", "reason", e)
		h.redirectFrontend(w, r, "/login")
		return
	}

	ref, err := h.states.Consume(r.Context(), q.Get("state"))
	if err != nil {
		if !errors.Is(err, ErrUnknownState) {
			h.log.Error("consume oauth state failed", "error", err)
		}
		h.redirectFrontend(w, r, "/login")
		return
	}

	identity, err := h.provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.log.Warn("oauth exchange failed", "error", err)
		h.redirectFrontend(w, r, "/login")
		return
	}

	user, err := h.accounts.ResolveAccount(r.Context(), identity, ref)
	if err != nil {
		h.log.Error("resolve account failed", "error", err)
		h.redirectFrontend(w, r, "/login")
		return
	}

	token, expires, err := h.sessions.Open(r.Context(), user.ID)
	if err != nil {
		h.log.Error("open session failed", "user_id", user.ID, "error", err)
		h.redirectFrontend(w, r, "/login")
		return
	}

	session.SetCookie(w, token, expires, h.secureCookie)
	h.log.Info("login", "user_id", user.ID)
	h.redirectFrontend(w, r, "/chapters")
}

// ── Session ─────────────────────────────────────────────

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}

	user, err := h.accounts.GetAccount(r.Context(), id.UserID)
	if errors.Is(err, accounts.ErrNotFound) {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}
	if err != nil {
		h.log.Error("get current user failed", "user_id", id.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch user"})
		return
	}

	writeJSON(w, http.StatusOK, models.UserResponse{User: *user})
}

// Logout revokes the current session, if any, and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := session.IdentityFrom(r.Context()); ok {
		if err := h.sessions.Close(r.Context(), id); err != nil {
			h.log.Error("close session failed", "user_id", id.UserID, "error", err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Logout failed"})
			return
		}
	}

	session.ClearCookie(w, h.secureCookie)
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// ── Helpers ─────────────────────────────────────────────

func (h *Handler) redirectFrontend(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, h.frontendURL+path, http.StatusFound)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
