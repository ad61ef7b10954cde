package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
)

// SessionRepository is the interface that wraps methods for LearningSession table data access
type SessionRepository interface {
	// Method Create opens a new learning session for the user.
	Create(ctx context.Context, userID int) (*models.LearningSession, error)
	// Method Heartbeat bumps the last-seen time of an open session and
	// optionally counts a viewed lesson.
	//
	// If no open session matches, repositories.ErrSessionNotFound is returned.
	Heartbeat(ctx context.Context, sessionID, userID int, lessonViewed bool) error
	// Method End closes an open session.
	//
	// If no open session matches, repositories.ErrSessionNotFound is returned.
	End(ctx context.Context, sessionID, userID int) error
	// Method CloseStale closes every open session whose last heartbeat is older
	// than the cutoff and returns how many were closed.
	CloseStale(ctx context.Context, cutoff time.Time) (int, error)
	// Method DistinctDays retrieves the distinct UTC days the user had a session,
	// newest first, bounded by "since".
	DistinctDays(ctx context.Context, userID int, since time.Time) ([]time.Time, error)
}

type sessionService struct {
	sessionRepo SessionRepository
	enqueuer    TaskEnqueuer
	logger      *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo SessionRepository, enqueuer TaskEnqueuer, logger *zap.Logger) *sessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		enqueuer:    enqueuer,
		logger:      logger,
	}
}

// Start opens a learning session. Starting a session may extend a day streak,
// so streak achievements are re-evaluated in the background.
func (s *sessionService) Start(ctx context.Context, userID int) (*models.LearningSession, error) {
	session, err := s.sessionRepo.Create(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.enqueuer.EnqueueAchievementEvaluation(ctx, userID, string(models.EventSessionStreak)); err != nil {
		s.logger.Warn("failed to enqueue streak evaluation", zap.Int("user_id", userID), zap.Error(err))
	}

	return session, nil
}

// Heartbeat keeps a session alive; a non-empty lesson slug counts as a viewed lesson
func (s *sessionService) Heartbeat(ctx context.Context, userID int, req *models.HeartbeatRequest) error {
	if req.SessionID <= 0 {
		return apperror.BadRequest("sessionId is required")
	}
	err := s.sessionRepo.Heartbeat(ctx, req.SessionID, userID, req.LessonViewed != "")
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return apperror.NotFound("session not found or already ended")
	}
	return err
}

// End closes a session
func (s *sessionService) End(ctx context.Context, userID int, sessionID int) error {
	if sessionID <= 0 {
		return apperror.BadRequest("sessionId is required")
	}
	err := s.sessionRepo.End(ctx, sessionID, userID)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return apperror.NotFound("session not found or already ended")
	}
	return err
}

// CloseStale closes sessions idle longer than the given duration.
// It backs the periodic cleanup job.
func (s *sessionService) CloseStale(ctx context.Context, idle time.Duration) (int, error) {
	closed, err := s.sessionRepo.CloseStale(ctx, time.Now().UTC().Add(-idle))
	if err != nil {
		return 0, err
	}
	if closed > 0 {
		s.logger.Info("closed stale learning sessions", zap.Int("count", closed))
	}
	return closed, nil
}
