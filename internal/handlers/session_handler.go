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

// SessionService is the interface that wraps methods for learning session business logic.
type SessionService interface {
	// Method Start opens a learning session for the user.
	Start(ctx context.Context, userID int) (*models.LearningSession, error)
	// Method Heartbeat keeps a session alive and optionally counts a viewed lesson.
	Heartbeat(ctx context.Context, userID int, req *models.HeartbeatRequest) error
	// Method End closes a session.
	End(ctx context.Context, userID int, sessionID int) error
}

// SessionHandler handles learning session HTTP requests
type SessionHandler struct {
	BaseHandler
	sessionService SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		sessionService: sessionService,
	}
}

// RegisterRoutes registers all session handler routes.
// The router must already carry the auth middleware.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Post("/heartbeat", h.Heartbeat)
		r.Post("/end", h.End)
	})
}

// Start handles POST /sessions
// @Summary Start a learning session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.LearningSession
// @Failure 401 {object} apperror.AppError "Unauthorized"
// @Router /sessions [post]
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.sessionService.Start(r.Context(), userID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusCreated, session)
}

// Heartbeat handles POST /sessions/heartbeat
// @Summary Keep a session alive
// @Description Bump the session's last-seen time. Passing a lesson slug counts it as a viewed lesson.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.HeartbeatRequest true "Heartbeat"
// @Success 200 {object} map[string]string "Heartbeat accepted"
// @Failure 400 {object} apperror.AppError "Missing session id"
// @Failure 404 {object} apperror.AppError "Session not found or already ended"
// @Router /sessions/heartbeat [post]
func (h *SessionHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessionService.Heartbeat(r.Context(), userID, &req); err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// End handles POST /sessions/end
// @Summary End a learning session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EndSessionRequest true "Session to end"
// @Success 200 {object} map[string]string "Session ended"
// @Failure 400 {object} apperror.AppError "Missing session id"
// @Failure 404 {object} apperror.AppError "Session not found or already ended"
// @Router /sessions/end [post]
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.EndSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessionService.End(r.Context(), userID, req.SessionID); err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "session ended"})
}
