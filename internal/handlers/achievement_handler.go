package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/auth"
	"github.com/ventylab/backend/internal/models"
)

// AchievementService is the interface that wraps methods for achievement business logic.
type AchievementService interface {
	// Method List returns the achievement catalog with the caller's unlock state.
	List(ctx context.Context, userID int) ([]models.AchievementListItem, error)
}

// AchievementHandler handles achievement HTTP requests
type AchievementHandler struct {
	BaseHandler
	achievementService AchievementService
}

// NewAchievementHandler creates a new achievement handler
func NewAchievementHandler(achievementService AchievementService, logger *zap.Logger) *AchievementHandler {
	return &AchievementHandler{
		BaseHandler:        BaseHandler{Logger: logger},
		achievementService: achievementService,
	}
}

// RegisterRoutes registers all achievement handler routes.
// The router must already carry the auth middleware.
func (h *AchievementHandler) RegisterRoutes(r chi.Router) {
	r.Get("/achievements", h.List)
}

// List handles GET /achievements
// @Summary List achievements
// @Description List the full achievement catalog with the caller's unlock state and unlock timestamps.
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AchievementListItem
// @Failure 401 {object} apperror.AppError "Unauthorized"
// @Router /achievements [get]
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.achievementService.List(r.Context(), userID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	if items == nil {
		items = []models.AchievementListItem{}
	}
	h.RespondJSON(w, http.StatusOK, items)
}
