package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/lessonstore"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
)

// ModuleRepository is the interface that wraps methods for Module table data access
type ModuleRepository interface {
	// Method GetAllWithProgress retrieves all modules with the user's lesson completion rollup.
	//
	// "difficulty" parameter is optional; "nil" value disables the filter.
	//
	// If some error occurs during data retrieval, the error will be returned.
	GetAllWithProgress(ctx context.Context, userID int, difficulty *models.Difficulty) ([]models.ModuleListItem, error)
	// Method GetBySlug retrieves a module by slug.
	//
	// If no module matches, repositories.ErrModuleNotFound is returned together with "nil" value.
	GetBySlug(ctx context.Context, slug string) (*models.Module, error)
	// Method GetByID retrieves a module by ID.
	//
	// If no module matches, repositories.ErrModuleNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Module, error)
	// Method GetUnstarted retrieves up to "limit" modules the user has not started,
	// ordered by position.
	GetUnstarted(ctx context.Context, userID, limit int) ([]models.Module, error)
}

// LessonRepository is the interface that wraps methods for Lesson table data access
type LessonRepository interface {
	// Method GetBySlug retrieves a lesson by slug together with the user's completion flag.
	//
	// If no lesson matches, repositories.ErrLessonNotFound is returned.
	GetBySlug(ctx context.Context, slug string, userID int) (*models.Lesson, bool, error)
	// Method GetByModuleIDWithCompletion retrieves the ordered lessons of a module
	// with the user's completion flag per lesson.
	GetByModuleIDWithCompletion(ctx context.Context, moduleID, userID int) ([]models.LessonListItem, error)
	// Method NextUncompleted retrieves, per started-but-unfinished module, the first
	// uncompleted lesson as a recommendation.
	NextUncompleted(ctx context.Context, userID int) ([]models.Recommendation, error)
}

// ProgressRepository is the interface that wraps methods for LessonProgress table data access
type ProgressRepository interface {
	// Method Exists checks if the user has completed the lesson.
	Exists(ctx context.Context, userID, lessonID int) (bool, error)
	// Method Create records a lesson completion.
	Create(ctx context.Context, progress *models.LessonProgress) error
	// Method Delete removes a lesson completion.
	//
	// If no row matches, repositories.ErrLessonNotFound is returned.
	Delete(ctx context.Context, userID, lessonID int) error
	// Method CountByUser returns the user's total completed lesson count.
	CountByUser(ctx context.Context, userID int) (int, error)
	// Method CountByModule returns the user's completed lesson count within one module.
	CountByModule(ctx context.Context, userID, moduleID int) (int, error)
	// Method CountCompletedModules returns how many modules the user has fully completed.
	CountCompletedModules(ctx context.Context, userID int) (int, error)
	// Method SumTimeSpent returns the user's total recorded study seconds.
	SumTimeSpent(ctx context.Context, userID int) (int, error)
}

// ContentStore is the interface that wraps loading of lesson content documents
type ContentStore interface {
	// Load reads and validates the named lesson content file.
	Load(name string) (json.RawMessage, error)
}

// QuizLookup resolves the quiz attached to a lesson, if any
type QuizLookup interface {
	// Method GetByLessonID retrieves the quiz of a lesson.
	//
	// If the lesson has no quiz, repositories.ErrQuizNotFound is returned.
	GetByLessonID(ctx context.Context, lessonID int) (*models.Quiz, error)
}

type catalogService struct {
	moduleRepo   ModuleRepository
	lessonRepo   LessonRepository
	progressRepo ProgressRepository
	quizRepo     QuizLookup
	content      ContentStore
	enqueuer     TaskEnqueuer
	recCache     RecommendationCache
	logger       *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	moduleRepo ModuleRepository,
	lessonRepo LessonRepository,
	progressRepo ProgressRepository,
	quizRepo QuizLookup,
	content ContentStore,
	enqueuer TaskEnqueuer,
	recCache RecommendationCache,
	logger *zap.Logger,
) *catalogService {
	return &catalogService{
		moduleRepo:   moduleRepo,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		quizRepo:     quizRepo,
		content:      content,
		enqueuer:     enqueuer,
		recCache:     recCache,
		logger:       logger,
	}
}

// ListModules returns the full catalog with the caller's progress rollup
func (s *catalogService) ListModules(ctx context.Context, userID int, difficulty string) ([]models.ModuleListItem, error) {
	var filter *models.Difficulty
	if difficulty != "" {
		d := models.Difficulty(difficulty)
		if !models.ValidDifficulty(d) {
			return nil, apperror.BadRequest("unknown difficulty %q", difficulty)
		}
		filter = &d
	}
	return s.moduleRepo.GetAllWithProgress(ctx, userID, filter)
}

// GetModule returns a single module with its ordered lessons
func (s *catalogService) GetModule(ctx context.Context, userID int, slug string) (*models.ModuleDetail, error) {
	module, err := s.moduleRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrModuleNotFound) {
			return nil, apperror.NotFound("module %q not found", slug)
		}
		return nil, err
	}

	lessons, err := s.lessonRepo.GetByModuleIDWithCompletion(ctx, module.ID, userID)
	if err != nil {
		return nil, err
	}

	return &models.ModuleDetail{Module: *module, Lessons: lessons}, nil
}

// GetLesson returns a lesson with its content document resolved from disk
func (s *catalogService) GetLesson(ctx context.Context, userID int, slug string) (*models.LessonDetail, error) {
	lesson, completed, err := s.lessonRepo.GetBySlug(ctx, slug, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrLessonNotFound) {
			return nil, apperror.NotFound("lesson %q not found", slug)
		}
		return nil, err
	}

	content, err := s.content.Load(lesson.ContentFile)
	if err != nil {
		if errors.Is(err, lessonstore.ErrNotFound) || errors.Is(err, lessonstore.ErrInvalidPath) {
			s.logger.Error("lesson content missing",
				zap.String("slug", slug),
				zap.String("content_file", lesson.ContentFile),
				zap.Error(err))
			return nil, apperror.New(500, "CONTENT_UNAVAILABLE", "lesson content is unavailable")
		}
		return nil, err
	}

	detail := &models.LessonDetail{
		Slug:             lesson.Slug,
		Title:            lesson.Title,
		ShortSummary:     lesson.ShortSummary,
		EstimatedMinutes: lesson.EstimatedMinutes,
		Completed:        completed,
		Content:          content,
	}

	quiz, err := s.quizRepo.GetByLessonID(ctx, lesson.ID)
	switch {
	case err == nil:
		detail.QuizID = &quiz.ID
	case errors.Is(err, repositories.ErrQuizNotFound):
		// lesson without a quiz
	default:
		return nil, err
	}

	return detail, nil
}

// ToggleCompletion flips the completion state of a lesson for the user and
// returns the new state. Completing a lesson triggers achievement evaluation
// and drops the user's cached recommendations.
func (s *catalogService) ToggleCompletion(ctx context.Context, userID int, slug string, timeSpentSeconds int) (bool, error) {
	if timeSpentSeconds < 0 {
		return false, apperror.BadRequest("timeSpentSeconds must not be negative")
	}

	lesson, _, err := s.lessonRepo.GetBySlug(ctx, slug, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrLessonNotFound) {
			return false, apperror.NotFound("lesson %q not found", slug)
		}
		return false, err
	}

	done, err := s.progressRepo.Exists(ctx, userID, lesson.ID)
	if err != nil {
		return false, err
	}

	if done {
		if err := s.progressRepo.Delete(ctx, userID, lesson.ID); err != nil {
			return false, err
		}
		s.invalidateRecommendations(ctx, userID)
		return false, nil
	}

	progress := &models.LessonProgress{
		UserID:           userID,
		ModuleID:         lesson.ModuleID,
		LessonID:         lesson.ID,
		TimeSpentSeconds: timeSpentSeconds,
		CompletedAt:      time.Now().UTC(),
	}
	if err := s.progressRepo.Create(ctx, progress); err != nil {
		return false, err
	}

	s.enqueueEvaluation(ctx, userID, models.EventLessonCompleted)

	completedInModule, err := s.progressRepo.CountByModule(ctx, userID, lesson.ModuleID)
	if err != nil {
		return true, err
	}
	lessons, err := s.lessonRepo.GetByModuleIDWithCompletion(ctx, lesson.ModuleID, userID)
	if err != nil {
		return true, err
	}
	if len(lessons) > 0 && completedInModule == len(lessons) {
		s.enqueueEvaluation(ctx, userID, models.EventModuleCompleted)
	}

	s.invalidateRecommendations(ctx, userID)
	return true, nil
}

func (s *catalogService) enqueueEvaluation(ctx context.Context, userID int, event models.EventType) {
	if err := s.enqueuer.EnqueueAchievementEvaluation(ctx, userID, string(event)); err != nil {
		s.logger.Warn("failed to enqueue achievement evaluation",
			zap.Int("user_id", userID),
			zap.String("event_type", string(event)),
			zap.Error(err))
	}
}

func (s *catalogService) invalidateRecommendations(ctx context.Context, userID int) {
	if err := s.recCache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate recommendation cache", zap.Int("user_id", userID), zap.Error(err))
	}
}
