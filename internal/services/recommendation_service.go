package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/cache"
	"github.com/ventylab/backend/internal/models"
)

// RecommendationCache is the interface that wraps the per-user recommendation cache
type RecommendationCache interface {
	// Method Get retrieves the cached recommendations of a user.
	//
	// If nothing is cached, cache.ErrCacheMiss is returned.
	Get(ctx context.Context, userID int) ([]models.Recommendation, error)
	// Method Set stores the recommendations of a user.
	Set(ctx context.Context, userID int, recs []models.Recommendation) error
	// Method Invalidate drops the cached recommendations of a user.
	Invalidate(ctx context.Context, userID int) error
}

// maxModuleSuggestions caps how many unstarted modules pad the recommendation list
const maxModuleSuggestions = 3

type recommendationService struct {
	lessonRepo LessonRepository
	moduleRepo ModuleRepository
	recCache   RecommendationCache
	logger     *zap.Logger
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(
	lessonRepo LessonRepository,
	moduleRepo ModuleRepository,
	recCache RecommendationCache,
	logger *zap.Logger,
) *recommendationService {
	return &recommendationService{
		lessonRepo: lessonRepo,
		moduleRepo: moduleRepo,
		recCache:   recCache,
		logger:     logger,
	}
}

// Get returns the user's next-step recommendations, served from cache when warm.
// Cache failures degrade to a fresh computation.
func (s *recommendationService) Get(ctx context.Context, userID int) ([]models.Recommendation, error) {
	recs, err := s.recCache.Get(ctx, userID)
	if err == nil {
		return recs, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("recommendation cache read failed", zap.Int("user_id", userID), zap.Error(err))
	}

	recs, err = s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.recCache.Set(ctx, userID, recs); err != nil {
		s.logger.Warn("recommendation cache write failed", zap.Int("user_id", userID), zap.Error(err))
	}
	return recs, nil
}

// Rebuild recomputes and re-caches the recommendations of a user.
// It backs the periodic warm-up job.
func (s *recommendationService) Rebuild(ctx context.Context, userID int) error {
	recs, err := s.compute(ctx, userID)
	if err != nil {
		return err
	}
	return s.recCache.Set(ctx, userID, recs)
}

// compute builds the recommendation list: the next uncompleted lesson of every
// started-but-unfinished module first, then up to three unstarted modules.
func (s *recommendationService) compute(ctx context.Context, userID int) ([]models.Recommendation, error) {
	recs, err := s.lessonRepo.NextUncompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Reason = "Continue where you left off in " + recs[i].ModuleTitle
	}

	modules, err := s.moduleRepo.GetUnstarted(ctx, userID, maxModuleSuggestions)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		recs = append(recs, models.Recommendation{
			Kind:   "module",
			Slug:   m.Slug,
			Title:  m.Title,
			Reason: "You haven't started this module yet",
		})
	}

	if recs == nil {
		recs = []models.Recommendation{}
	}
	return recs, nil
}
