package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/auth"
	"github.com/ventylab/backend/internal/models"
)

// ProgressService is the interface that wraps methods for progress dashboard business logic.
type ProgressService interface {
	// Method Overview assembles the user's dashboard aggregate.
	Overview(ctx context.Context, userID int) (*models.ProgressOverview, error)
	// Method ModuleDetail returns the single-module rollup with per-lesson rows.
	ModuleDetail(ctx context.Context, userID int, slug string) (*models.ModuleProgressDetail, error)
}

// ProgressHandler handles progress dashboard HTTP requests
type ProgressHandler struct {
	BaseHandler
	progressService ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		progressService: progressService,
	}
}

// RegisterRoutes registers all progress handler routes.
// The router must already carry the auth middleware.
func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Route("/progress", func(r chi.Router) {
		r.Get("/", h.Overview)
		r.Get("/modules/{slug}", h.ModuleDetail)
	})
}

// Overview handles GET /progress
// @Summary Get the progress dashboard
// @Description Per-module completion rollups, the overall percentage weighted by lesson count, activity totals and the day streak.
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ProgressOverview
// @Failure 401 {object} apperror.AppError "Unauthorized"
// @Router /progress [get]
func (h *ProgressHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	overview, err := h.progressService.Overview(r.Context(), userID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, overview)
}

// ModuleDetail handles GET /progress/modules/{slug}
// @Summary Get per-module progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Module slug"
// @Success 200 {object} models.ModuleProgressDetail
// @Failure 404 {object} apperror.AppError "Module not found"
// @Router /progress/modules/{slug} [get]
func (h *ProgressHandler) ModuleDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	detail, err := h.progressService.ModuleDetail(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, detail)
}
