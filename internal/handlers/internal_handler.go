package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// defaultSessionIdle is the idle window after which a session counts as abandoned
const defaultSessionIdle = 30 * time.Minute

// SessionCleaner closes abandoned learning sessions
type SessionCleaner interface {
	// Method CloseStale closes sessions idle longer than the given duration.
	CloseStale(ctx context.Context, idle time.Duration) (int, error)
}

// RecommendationRebuilder recomputes and re-caches a user's recommendations
type RecommendationRebuilder interface {
	// Method Rebuild recomputes and re-caches the recommendations of a user.
	Rebuild(ctx context.Context, userID int) error
}

// InternalHandler handles service-to-service HTTP requests guarded by the API key
type InternalHandler struct {
	BaseHandler
	sessions  SessionCleaner
	recommend RecommendationRebuilder
}

// NewInternalHandler creates a new internal handler
func NewInternalHandler(sessions SessionCleaner, recommend RecommendationRebuilder, logger *zap.Logger) *InternalHandler {
	return &InternalHandler{
		BaseHandler: BaseHandler{Logger: logger},
		sessions:    sessions,
		recommend:   recommend,
	}
}

// RegisterRoutes registers all internal handler routes.
// The router must already carry the API key middleware.
func (h *InternalHandler) RegisterRoutes(r chi.Router) {
	r.Route("/internal", func(r chi.Router) {
		r.Delete("/sessions/stale", h.CloseStaleSessions)
		r.Post("/recommendations/{userID}/rebuild", h.RebuildRecommendations)
	})
}

// CloseStaleSessions handles DELETE /internal/sessions/stale
// @Summary Close abandoned learning sessions
// @Description Close every open session whose last heartbeat is older than the idle window (default 30 minutes).
// @Tags internal
// @Produce json
// @Security ApiKeyAuth
// @Param idleMinutes query int false "Idle window in minutes (default 30)"
// @Success 200 {object} map[string]int "Number of closed sessions"
// @Failure 401 {object} apperror.AppError "Missing or invalid API key"
// @Router /internal/sessions/stale [delete]
func (h *InternalHandler) CloseStaleSessions(w http.ResponseWriter, r *http.Request) {
	idle := defaultSessionIdle
	if v := r.URL.Query().Get("idleMinutes"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			h.RespondError(w, http.StatusBadRequest, "invalid idleMinutes")
			return
		}
		idle = time.Duration(minutes) * time.Minute
	}

	closed, err := h.sessions.CloseStale(r.Context(), idle)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]int{"closed": closed})
}

// RebuildRecommendations handles POST /internal/recommendations/{userID}/rebuild
// @Summary Rebuild a user's recommendation cache
// @Tags internal
// @Produce json
// @Security ApiKeyAuth
// @Param userID path int true "User ID"
// @Success 200 {object} map[string]string "Cache rebuilt"
// @Failure 400 {object} apperror.AppError "Invalid user id"
// @Failure 401 {object} apperror.AppError "Missing or invalid API key"
// @Router /internal/recommendations/{userID}/rebuild [post]
func (h *InternalHandler) RebuildRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.recommend.Rebuild(r.Context(), userID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Logger.Info("recommendation cache rebuilt", zap.Int("user_id", userID))
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "recommendations rebuilt"})
}
