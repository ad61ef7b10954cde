package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/auth"
	"github.com/ventylab/backend/internal/models"
)

// RecommendationService is the interface that wraps methods for recommendation business logic.
type RecommendationService interface {
	// Method Get returns the user's next-step recommendations, served from cache when warm.
	Get(ctx context.Context, userID int) ([]models.Recommendation, error)
}

// RecommendationHandler handles recommendation HTTP requests
type RecommendationHandler struct {
	BaseHandler
	recommendationService RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendationService RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		BaseHandler:           BaseHandler{Logger: logger},
		recommendationService: recommendationService,
	}
}

// RegisterRoutes registers all recommendation handler routes.
// The router must already carry the auth middleware.
func (h *RecommendationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/recommendations", h.Get)
}

// Get handles GET /recommendations
// @Summary Get next-step recommendations
// @Description Suggest the next uncompleted lesson of every started module, then up to three unstarted modules.
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Recommendation
// @Failure 401 {object} apperror.AppError "Unauthorized"
// @Router /recommendations [get]
func (h *RecommendationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recs, err := h.recommendationService.Get(r.Context(), userID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, recs)
}
