package questions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("handler", "questions")}
}

func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.service.ListChapters(r.Context())
	if err != nil {
		h.log.Error("list chapters failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch chapters"})
		return
	}

	writeJSON(w, http.StatusOK, models.ChaptersResponse{Chapters: chapters})
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	chapter, err := strconv.Atoi(mux.Vars(r)["chapter"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid chapter number"})
		return
	}

	qs, err := h.service.ListQuestions(r.Context(), chapter)
	if errors.Is(err, ErrInvalidModule) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid chapter number"})
		return
	}
	if err != nil {
		h.log.Error("list questions failed", "chapter", chapter, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch questions"})
		return
	}

	writeJSON(w, http.StatusOK, models.QuestionsResponse{Questions: qs})
}

func (h *Handler) ListModuleQuestions(w http.ResponseWriter, r *http.Request) {
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

	qs, err := h.service.ListModuleQuestions(r.Context(), chapter, module)
	if errors.Is(err, ErrInvalidModule) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid chapter or module number"})
		return
	}
	if err != nil {
		h.log.Error("list module questions failed", "chapter", chapter, "module", module, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch questions"})
		return
	}

	writeJSON(w, http.StatusOK, models.QuestionsResponse{Questions: qs})
}

// ── Helpers ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
