package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/auth"
	"github.com/ventylab/backend/internal/models"
)

// ProfileService is the interface that wraps methods for profile business logic.
type ProfileService interface {
	// Method Get returns the profile of the authenticated user.
	Get(ctx context.Context, userID int) (*models.User, error)
	// Method Update changes username and/or email of the authenticated user.
	Update(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error)
	// Method ChangePassword verifies the current password and stores a new hash.
	ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers all profile handler routes.
// The router must already carry the auth middleware.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Put("/password", h.ChangePassword)
	})
}

// Get handles GET /profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} apperror.AppError "Unauthorized"
// @Router /profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.profileService.Get(r.Context(), userID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, user)
}

// Update handles PATCH /profile
// @Summary Update own profile
// @Description Change username and/or email. Omitted fields keep their value.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Profile update"
// @Success 200 {object} models.User
// @Failure 400 {object} apperror.AppError "Invalid request body"
// @Failure 409 {object} apperror.AppError "Username or email already in use"
// @Router /profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.profileService.Update(r.Context(), userID, &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, user)
}

// ChangePassword handles POST /profile/password
// @Summary Change own password
// @Description Verify the current password and replace it. All refresh tokens are revoked.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChangePasswordRequest true "Password change"
// @Success 200 {object} map[string]string "Password changed"
// @Failure 400 {object} apperror.AppError "New password does not meet requirements"
// @Failure 401 {object} apperror.AppError "Current password is incorrect"
// @Router /profile/password [put]
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.profileService.ChangePassword(r.Context(), userID, &req); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Logger.Info("password changed", zap.Int("user_id", userID))
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
