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

// QuizService is the interface that wraps methods for quiz business logic.
type QuizService interface {
	// Method Get returns a quiz with its questions, correct answers stripped.
	Get(ctx context.Context, quizID int) (*models.QuizDetail, error)
	// Method Submit grades an attempt and records it.
	Submit(ctx context.Context, userID, quizID int, req *models.SubmitAttemptRequest) (*models.AttemptResult, error)
	// Method Attempts returns the user's attempts at a quiz, newest first.
	Attempts(ctx context.Context, userID, quizID int) ([]models.QuizAttempt, error)
}

// QuizHandler handles quiz HTTP requests
type QuizHandler struct {
	BaseHandler
	quizService QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: BaseHandler{Logger: logger},
		quizService: quizService,
	}
}

// RegisterRoutes registers all quiz handler routes.
// The router must already carry the auth middleware.
func (h *QuizHandler) RegisterRoutes(r chi.Router) {
	r.Route("/quizzes/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/attempts", h.Submit)
		r.Get("/attempts", h.Attempts)
	})
}

// Get handles GET /quizzes/{id}
// @Summary Get a quiz
// @Description Get a quiz with its questions. Correct answers and explanations are never included.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.QuizDetail
// @Failure 404 {object} apperror.AppError "Quiz not found"
// @Router /quizzes/{id} [get]
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quizID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	detail, err := h.quizService.Get(r.Context(), quizID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, detail)
}

// Submit handles POST /quizzes/{id}/attempts
// @Summary Submit a quiz attempt
// @Description Grade the submitted answers. The score is an integer percent rounded half up; the attempt passes at the quiz pass score.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param request body models.SubmitAttemptRequest true "Selected option index per question, ordered by position"
// @Success 201 {object} models.AttemptResult
// @Failure 400 {object} apperror.AppError "Answer count does not match question count"
// @Failure 404 {object} apperror.AppError "Quiz not found"
// @Failure 409 {object} apperror.AppError "Quiz has no questions"
// @Router /quizzes/{id}/attempts [post]
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	quizID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req models.SubmitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.quizService.Submit(r.Context(), userID, quizID, &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.Logger.Info("quiz attempt graded",
		zap.Int("user_id", userID),
		zap.Int("quiz_id", quizID),
		zap.Int("score", result.Score),
		zap.Bool("passed", result.Passed))
	h.RespondJSON(w, http.StatusCreated, result)
}

// Attempts handles GET /quizzes/{id}/attempts
// @Summary List own attempts at a quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {array} models.QuizAttempt
// @Failure 404 {object} apperror.AppError "Quiz not found"
// @Router /quizzes/{id}/attempts [get]
func (h *QuizHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	quizID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	attempts, err := h.quizService.Attempts(r.Context(), userID, quizID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}
	if attempts == nil {
		attempts = []models.QuizAttempt{}
	}
	h.RespondJSON(w, http.StatusOK, attempts)
}

// pathID parses the {id} route parameter, writing a 400 on failure
func (h *QuizHandler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid quiz id")
		return 0, false
	}
	return id, true
}
