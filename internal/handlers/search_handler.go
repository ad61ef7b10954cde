package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/models"
)

// SearchService is the interface that wraps methods for catalog search.
type SearchService interface {
	// Method Search matches the query against module and lesson titles and summaries.
	Search(ctx context.Context, query string) (*models.SearchResult, error)
}

// SearchHandler handles catalog search HTTP requests
type SearchHandler struct {
	BaseHandler
	searchService SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		searchService: searchService,
	}
}

// RegisterRoutes registers all search handler routes.
// The router must already carry the auth middleware.
func (h *SearchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/search", h.Search)
}

// Search handles GET /search
// @Summary Search the catalog
// @Description Case-insensitive substring search over module and lesson titles and summaries, grouped by kind.
// @Tags search
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query (minimum 2 characters)"
// @Success 200 {object} models.SearchResult
// @Failure 400 {object} apperror.AppError "Query too short"
// @Router /search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.searchService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	if result.Modules == nil {
		result.Modules = []models.ModuleListItem{}
	}
	if result.Lessons == nil {
		result.Lessons = []models.LessonListItem{}
	}
	h.RespondJSON(w, http.StatusOK, result)
}
