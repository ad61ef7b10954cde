package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/auth"
	"github.com/ventylab/backend/internal/models"
)

// CatalogService is the interface that wraps methods for curriculum catalog business logic.
type CatalogService interface {
	// Method ListModules returns the full catalog with the caller's progress rollup.
	//
	// "difficulty" parameter is optional; an empty string disables the filter.
	ListModules(ctx context.Context, userID int, difficulty string) ([]models.ModuleListItem, error)
	// Method GetModule returns a single module with its ordered lessons.
	GetModule(ctx context.Context, userID int, slug string) (*models.ModuleDetail, error)
	// Method GetLesson returns a lesson with its content document resolved from disk.
	GetLesson(ctx context.Context, userID int, slug string) (*models.LessonDetail, error)
	// Method ToggleCompletion flips the completion state of a lesson and returns the new state.
	ToggleCompletion(ctx context.Context, userID int, slug string, timeSpentSeconds int) (bool, error)
}

// CatalogHandler handles module and lesson HTTP requests
type CatalogHandler struct {
	BaseHandler
	catalogService CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		catalogService: catalogService,
	}
}

// RegisterRoutes registers all catalog handler routes.
// The router must already carry the auth middleware.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/modules", func(r chi.Router) {
		r.Get("/", h.ListModules)
		r.Get("/{slug}", h.GetModule)
	})
	r.Route("/lessons", func(r chi.Router) {
		r.Get("/{slug}", h.GetLesson)
		r.Post("/{slug}/complete", h.ToggleCompletion)
	})
}

// ListModules handles GET /modules
// @Summary List curriculum modules
// @Description List all modules ordered by position, with the caller's per-module completion rollup.
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param difficulty query string false "Filter by difficulty (beginner, intermediate, advanced)"
// @Success 200 {array} models.ModuleListItem
// @Failure 400 {object} apperror.AppError "Unknown difficulty"
// @Router /modules [get]
func (h *CatalogHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.catalogService.ListModules(r.Context(), userID, r.URL.Query().Get("difficulty"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	if items == nil {
		items = []models.ModuleListItem{}
	}
	h.RespondJSON(w, http.StatusOK, items)
}

// GetModule handles GET /modules/{slug}
// @Summary Get a module
// @Description Get a module with its ordered lessons and the caller's completion state per lesson.
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Module slug"
// @Success 200 {object} models.ModuleDetail
// @Failure 404 {object} apperror.AppError "Module not found"
// @Router /modules/{slug} [get]
func (h *CatalogHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	detail, err := h.catalogService.GetModule(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, detail)
}

// GetLesson handles GET /lessons/{slug}
// @Summary Get a lesson
// @Description Get a lesson with its content document, the caller's completion flag and the attached quiz ID if any.
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Lesson slug"
// @Success 200 {object} models.LessonDetail
// @Failure 404 {object} apperror.AppError "Lesson not found"
// @Failure 500 {object} apperror.AppError "Lesson content unavailable"
// @Router /lessons/{slug} [get]
func (h *CatalogHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	detail, err := h.catalogService.GetLesson(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, detail)
}

// ToggleCompletion handles POST /lessons/{slug}/complete
// @Summary Toggle lesson completion
// @Description Mark a lesson completed, or un-complete it when it already is. The optional body records study time.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Lesson slug"
// @Param request body models.CompleteLessonRequest false "Completion details"
// @Success 200 {object} map[string]bool "New completion state"
// @Failure 400 {object} apperror.AppError "Invalid request body"
// @Failure 404 {object} apperror.AppError "Lesson not found"
// @Router /lessons/{slug}/complete [post]
func (h *CatalogHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// The body is optional; an empty body means no time was recorded.
	var req models.CompleteLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	completed, err := h.catalogService.ToggleCompletion(r.Context(), userID, chi.URLParam(r, "slug"), req.TimeSpentSeconds)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}
