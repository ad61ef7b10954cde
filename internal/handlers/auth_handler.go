package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/models"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register performs a user credentials validation and creation and returns
	// the created user together with access and refresh tokens.
	//
	// "req" parameter contains email, username and password.
	//
	// If user passed invalid credentials, or such user already exists, or some other
	// error occurs, the error will be returned together with "nil" values.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, *models.TokenPair, error)
	// Method Login performs a user credentials validation and returns a user with tokens.
	//
	// "req" parameter contains login (email or username) and password.
	//
	// If user passed invalid credentials, or such user does not exist, or some other
	// error occurs, the error will be returned together with "nil" values.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, *models.TokenPair, error)
	// Method Refresh performs a refresh token validation and rotation and returns a new token pair.
	//
	// If refresh token is invalid or expired, or some other error occurs, the error
	// will be returned together with "nil" value.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	// Method Logout revokes a refresh token.
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService   AuthService
	refreshExpiry time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, refreshExpiry time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		authService:   authService,
		refreshExpiry: refreshExpiry,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new user with email, username and password. Returns the user and sets token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} map[string]any "User registered successfully"
// @Failure 400 {object} apperror.AppError "Invalid email, username or password"
// @Failure 409 {object} apperror.AppError "Email or username already in use"
// @Failure 500 {object} apperror.AppError "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, pair, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.setTokenCookies(w, pair)
	h.RespondJSON(w, http.StatusCreated, map[string]any{
		"user":   user,
		"tokens": pair,
	})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with login (email or username) and password. Returns the user and sets token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} map[string]any "Login successful"
// @Failure 400 {object} apperror.AppError "Invalid request body"
// @Failure 401 {object} apperror.AppError "Invalid credentials"
// @Failure 403 {object} apperror.AppError "Account disabled"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, pair, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.setTokenCookies(w, pair)
	h.RespondJSON(w, http.StatusOK, map[string]any{
		"user":   user,
		"tokens": pair,
	})
}

// Refresh handles POST /auth/refresh
// @Summary Refresh access token
// @Description Rotate the refresh token and issue a new pair. The token can come from the request body or the refresh_token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} models.TokenPair "Tokens refreshed successfully"
// @Failure 400 {object} apperror.AppError "Refresh token required"
// @Failure 401 {object} apperror.AppError "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := h.refreshTokenFromRequest(r)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	pair, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.setTokenCookies(w, pair)
	h.RespondJSON(w, http.StatusOK, pair)
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Revoke the refresh token and clear token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]string "Logout successful"
// @Failure 400 {object} apperror.AppError "Refresh token required"
// @Failure 401 {object} apperror.AppError "Unknown refresh token"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := h.refreshTokenFromRequest(r)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	if err := h.authService.Logout(r.Context(), refreshToken); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.clearTokenCookies(w)
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// refreshTokenFromRequest reads the refresh token from the body or the cookie
func (h *AuthHandler) refreshTokenFromRequest(r *http.Request) (string, bool) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken, true
	}
	cookie, err := r.Cookie("refresh_token")
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   3600, // 1 hour
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.refreshExpiry.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearTokenCookies expires both token cookies
func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
