package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/auth"
	"github.com/ventylab/backend/internal/models"
)

// AdminUserService is the interface that wraps methods for admin user management.
type AdminUserService interface {
	// Method List returns users matching the filter with the total count for pagination.
	List(ctx context.Context, filter models.UserListFilter) (*models.UserListResult, error)
	// Method Get returns a single user by ID.
	Get(ctx context.Context, userID int) (*models.User, error)
	// Method UpdateRole changes the role of a user. Admins cannot change their own role.
	UpdateRole(ctx context.Context, actorID, userID int, role models.Role) (*models.User, error)
	// Method Deactivate soft-deletes a user and revokes all refresh tokens.
	Deactivate(ctx context.Context, actorID, userID int) error
	// Method Activate restores a soft-deleted user.
	Activate(ctx context.Context, userID int) error
	// Method ResetPassword issues a temporary password and emails it to the user.
	ResetPassword(ctx context.Context, userID int) error
}

// AdminUserHandler handles admin user management HTTP requests
type AdminUserHandler struct {
	BaseHandler
	adminService AdminUserService
}

// NewAdminUserHandler creates a new admin user handler
func NewAdminUserHandler(adminService AdminUserService, logger *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
	}
}

// RegisterRoutes registers all admin user handler routes.
// The router must already carry the admin role middleware.
func (h *AdminUserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/role", h.UpdateRole)
		r.Delete("/{id}", h.Deactivate)
		r.Post("/{id}/activate", h.Activate)
		r.Post("/{id}/reset-password", h.ResetPassword)
	})
}

// List handles GET /admin/users
// @Summary List users
// @Description List users with optional role, active and search filters.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query int false "Filter by role (1 student, 2 instructor, 3 admin)"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Match against username and email"
// @Param page query int false "Page number (default 1)"
// @Param count query int false "Page size (default 20, max 100)"
// @Success 200 {object} models.UserListResult
// @Failure 400 {object} apperror.AppError "Invalid filter"
// @Failure 403 {object} apperror.AppError "Admin role required"
// @Router /admin/users [get]
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.UserListFilter{Search: r.URL.Query().Get("search")}

	if v := r.URL.Query().Get("role"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid role filter")
			return
		}
		role := models.Role(n)
		filter.Role = &role
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid active filter")
			return
		}
		filter.IsActive = &active
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Count, _ = strconv.Atoi(r.URL.Query().Get("count"))

	result, err := h.adminService.List(r.Context(), filter)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, result)
}

// Get handles GET /admin/users/{id}
// @Summary Get a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} apperror.AppError "User not found"
// @Router /admin/users/{id} [get]
func (h *AdminUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.adminService.Get(r.Context(), userID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, user)
}

// UpdateRole handles PATCH /admin/users/{id}/role
// @Summary Change a user's role
// @Description Change the role of a user. The change revokes the user's refresh tokens. Admins cannot change their own role.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateRoleRequest true "New role"
// @Success 200 {object} models.User
// @Failure 400 {object} apperror.AppError "Unknown role"
// @Failure 403 {object} apperror.AppError "Cannot change own role"
// @Failure 404 {object} apperror.AppError "User not found"
// @Router /admin/users/{id}/role [put]
func (h *AdminUserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.adminService.UpdateRole(r.Context(), actorID, userID, req.Role)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Logger.Info("user role changed",
		zap.Int("actor_id", actorID),
		zap.Int("user_id", userID),
		zap.Int("role", int(req.Role)))
	h.RespondJSON(w, http.StatusOK, user)
}

// Deactivate handles DELETE /admin/users/{id}
// @Summary Deactivate a user
// @Description Soft-delete a user. The account keeps its data but can no longer log in. Admins cannot deactivate themselves.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string "User deactivated"
// @Failure 403 {object} apperror.AppError "Cannot deactivate own account"
// @Failure 404 {object} apperror.AppError "User not found"
// @Failure 409 {object} apperror.AppError "User is already deactivated"
// @Router /admin/users/{id} [delete]
func (h *AdminUserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.Deactivate(r.Context(), actorID, userID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Logger.Info("user deactivated", zap.Int("actor_id", actorID), zap.Int("user_id", userID))
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user deactivated"})
}

// Activate handles POST /admin/users/{id}/activate
// @Summary Reactivate a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string "User activated"
// @Failure 404 {object} apperror.AppError "User not found"
// @Failure 409 {object} apperror.AppError "User is already active"
// @Router /admin/users/{id}/activate [post]
func (h *AdminUserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.Activate(r.Context(), userID); err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user activated"})
}

// ResetPassword handles POST /admin/users/{id}/reset-password
// @Summary Reset a user's password
// @Description Generate a temporary password and email it to the user. All refresh tokens are revoked.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string "Password reset"
// @Failure 404 {object} apperror.AppError "User not found"
// @Router /admin/users/{id}/reset-password [post]
func (h *AdminUserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.ResetPassword(r.Context(), userID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Logger.Info("password reset issued", zap.Int("user_id", userID))
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "password reset email sent"})
}

// pathID parses the {id} route parameter, writing a 400 on failure
func (h *AdminUserHandler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
