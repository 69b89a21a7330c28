package rest

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/GrandZah/Learning-Matan/internal/entity"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/config"
	"github.com/GrandZah/Learning-Matan/internal/repository"
	"github.com/GrandZah/Learning-Matan/internal/usecase"
)

// Handler exposes the scheduling engine over HTTP: the event endpoint that
// drives the session machine, plus the read-only stats and image surfaces.
type Handler struct {
	sessions  usecase.SessionUsecase
	scheduler usecase.SchedulerUsecase
	cards     repository.CardRepository
	imageRoot string
	logger    *logrus.Logger
}

// NewHandler builds the REST handler.
func NewHandler(
	cfg *config.Config,
	sessions usecase.SessionUsecase,
	scheduler usecase.SchedulerUsecase,
	cards repository.CardRepository,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		sessions:  sessions,
		scheduler: scheduler,
		cards:     cards,
		imageRoot: cfg.Catalog.Dir,
		logger:    logger,
	}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/events", h.handleEvent)
	mux.HandleFunc("GET /api/v1/users/{id}/stats", h.handleStats)
	mux.HandleFunc("GET /api/v1/cards/{id}/image", h.handleCardImage)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply, err := h.sessions.Handle(r.Context(), req.toEntity())
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID,
			"kind":    req.Kind,
		}).Warn("event rejected")
		status, msg := errorBody(err)
		h.writeError(w, status, msg)
		return
	}

	h.writeJSON(w, http.StatusOK, toReplyResponse(reply))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || userID <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	stats, err := h.scheduler.Stats(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, err, "stats query failed")
		return
	}

	h.writeJSON(w, http.StatusOK, &statsResponse{
		UserID:        stats.UserID,
		CountsByLevel: stats.CountsByLevel,
		TotalAssigned: stats.TotalAssigned,
	})
}

func (h *Handler) handleCardImage(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || cardID <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	card, err := h.cards.GetByID(r.Context(), cardID)
	if err != nil {
		h.writeDomainError(w, err, "card lookup failed")
		return
	}

	// Image refs are stored relative to the catalog root; reject anything
	// that would escape it.
	if !filepath.IsLocal(card.ImageRef) {
		h.writeError(w, http.StatusNotFound, entity.ErrCardNotFound.Error())
		return
	}
	http.ServeFile(w, r, filepath.Join(h.imageRoot, filepath.FromSlash(card.ImageRef)))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("write response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError responds with the error's mapped status, keeping the cause
// of an unmapped failure in the log instead of the response body.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error, logMsg string) {
	status, msg := errorBody(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error(logMsg)
	}
	h.writeError(w, status, msg)
}
