package points

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/models"
	"github.com/fika-quiz/backend/internal/session"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("handler", "points")}
}

func getUserID(r *http.Request) (int64, bool) {
	id, ok := session.IdentityFrom(r.Context())
	return id.UserID, ok
}

// ── Scores ──────────────────────────────────────────────

func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.SubmitScore(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err, "Failed to save score", "user_id", userID, "chapter", req.Chapter)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to fetch progress", "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ── Unlocks ─────────────────────────────────────────────

func (h *Handler) UnlockModule(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	chapter, err := strconv.Atoi(vars["chapter"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid chapter or module number"})
		return
	}
	module, err := strconv.Atoi(vars["module"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid chapter or module number"})
		return
	}

	resp, err := h.service.UnlockModule(r.Context(), userID, chapter, module)
	if err != nil {
		h.writeError(w, err, "Failed to unlock module", "user_id", userID, "chapter", chapter, "module", module)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ── Referrals ───────────────────────────────────────────

func (h *Handler) GetReferralStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.GetReferralStats(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to fetch referral stats", "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ── Helpers ─────────────────────────────────────────────

// writeError maps domain errors to client statuses. Anything else is logged
// and answered with fallback.
func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string, kv ...interface{}) {
	switch {
	case errors.Is(err, ErrInsufficientPoints):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Insufficient Fika points"})
	case errors.Is(err, ErrInvalidModule):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid chapter or module number"})
	case errors.Is(err, ErrInvalidScore):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid score"})
	case errors.Is(err, ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
	default:
		h.log.Error(fallback, append(kv, "error", err)...)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
