package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/taskqueue"
)

// AchievementRepository is the interface that wraps methods for Achievement table data access
type AchievementRepository interface {
	// Method GetAllWithUnlocked retrieves the full achievement catalog with the
	// user's unlock state per entry.
	GetAllWithUnlocked(ctx context.Context, userID int) ([]models.AchievementListItem, error)
	// Method GetByEventType retrieves the achievements triggered by one event type.
	GetByEventType(ctx context.Context, eventType models.EventType) ([]models.Achievement, error)
	// Method Unlock records an unlocked achievement. It reports "true" only when
	// the row was actually inserted, so a concurrent duplicate unlock is ignored.
	Unlock(ctx context.Context, userID, achievementID int, unlockedAt time.Time) (bool, error)
	// Method CountUnlockedByUser returns the user's unlocked achievement count.
	CountUnlockedByUser(ctx context.Context, userID int) (int, error)
}

type achievementService struct {
	achievementRepo AchievementRepository
	progressRepo    ProgressRepository
	attemptRepo     QuizAttemptRepository
	sessionRepo     SessionRepository
	userRepo        UserRepository
	enqueuer        TaskEnqueuer
	logger          *zap.Logger
}

// NewAchievementService creates a new achievement service
func NewAchievementService(
	achievementRepo AchievementRepository,
	progressRepo ProgressRepository,
	attemptRepo QuizAttemptRepository,
	sessionRepo SessionRepository,
	userRepo UserRepository,
	enqueuer TaskEnqueuer,
	logger *zap.Logger,
) *achievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		progressRepo:    progressRepo,
		attemptRepo:     attemptRepo,
		sessionRepo:     sessionRepo,
		userRepo:        userRepo,
		enqueuer:        enqueuer,
		logger:          logger,
	}
}

// List returns the achievement catalog with the caller's unlock state
func (s *achievementService) List(ctx context.Context, userID int) ([]models.AchievementListItem, error) {
	return s.achievementRepo.GetAllWithUnlocked(ctx, userID)
}

// Evaluate recomputes the user's metric for one event type and unlocks every
// achievement whose threshold is reached. Unlocking is idempotent: re-running
// the same evaluation never unlocks twice or sends a second email. Newly
// unlocked achievements are returned.
func (s *achievementService) Evaluate(ctx context.Context, userID int, eventType models.EventType) ([]models.Achievement, error) {
	metric, err := s.metric(ctx, userID, eventType)
	if err != nil {
		return nil, err
	}

	candidates, err := s.achievementRepo.GetByEventType(ctx, eventType)
	if err != nil {
		return nil, err
	}

	var unlocked []models.Achievement
	now := time.Now().UTC()
	for _, a := range candidates {
		if metric < a.Threshold {
			continue
		}
		inserted, err := s.achievementRepo.Unlock(ctx, userID, a.ID, now)
		if err != nil {
			return unlocked, err
		}
		if !inserted {
			continue
		}
		unlocked = append(unlocked, a)
		s.notifyUnlock(ctx, userID, a)
	}

	if len(unlocked) > 0 {
		s.logger.Info("achievements unlocked",
			zap.Int("user_id", userID),
			zap.String("event_type", string(eventType)),
			zap.Int("count", len(unlocked)))
	}
	return unlocked, nil
}

// metric computes the user's current value for an event type
func (s *achievementService) metric(ctx context.Context, userID int, eventType models.EventType) (int, error) {
	switch eventType {
	case models.EventLessonCompleted:
		return s.progressRepo.CountByUser(ctx, userID)
	case models.EventQuizPassed:
		return s.attemptRepo.CountPassedByUser(ctx, userID)
	case models.EventModuleCompleted:
		return s.progressRepo.CountCompletedModules(ctx, userID)
	case models.EventSessionStreak:
		days, err := s.sessionRepo.DistinctDays(ctx, userID, time.Now().UTC().AddDate(0, 0, -streakWindowDays))
		if err != nil {
			return 0, err
		}
		return computeStreak(days, time.Now().UTC()), nil
	default:
		return 0, fmt.Errorf("unknown event type %q", eventType)
	}
}

func (s *achievementService) notifyUnlock(ctx context.Context, userID int, a models.Achievement) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user for unlock email", zap.Int("user_id", userID), zap.Error(err))
		return
	}
	if err := s.enqueuer.EnqueueEmail(ctx, taskqueue.EmailAchievementUnlock, user.Email, map[string]string{
		"username":    user.Username,
		"achievement": a.Title,
		"description": a.Description,
	}); err != nil {
		s.logger.Warn("failed to enqueue unlock email",
			zap.Int("user_id", userID),
			zap.String("achievement", a.Code),
			zap.Error(err))
	}
}
