package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/models"
)

func newRecommendationFixture() (*mockLessonRepository, *mockModuleRepository, *mockRecommendationCache, *recommendationService) {
	logger, _ := zap.NewDevelopment()
	lessonRepo := &mockLessonRepository{}
	moduleRepo := &mockModuleRepository{}
	recCache := &mockRecommendationCache{}
	svc := NewRecommendationService(lessonRepo, moduleRepo, recCache, logger)
	return lessonRepo, moduleRepo, recCache, svc
}

func TestRecommendationService_Get(t *testing.T) {
	t.Run("cache hit skips computation", func(t *testing.T) {
		_, _, recCache, svc := newRecommendationFixture()
		recCache.hit = true
		recCache.cached = []models.Recommendation{{Kind: "lesson", Slug: "lung-mechanics"}}

		recs, err := svc.Get(context.Background(), 1)

		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "lung-mechanics", recs[0].Slug)
		assert.Zero(t, recCache.setCallCount)
	})

	t.Run("cache miss computes and stores", func(t *testing.T) {
		lessonRepo, moduleRepo, recCache, svc := newRecommendationFixture()
		lessonRepo.next = []models.Recommendation{
			{Kind: "lesson", Slug: "lung-mechanics", Title: "Lung Mechanics", ModuleSlug: "basics", ModuleTitle: "Ventilation Basics"},
		}
		moduleRepo.unstarted = []models.Module{
			{Slug: "peep", Title: "Understanding PEEP"},
		}

		recs, err := svc.Get(context.Background(), 1)

		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "lesson", recs[0].Kind)
		assert.Contains(t, recs[0].Reason, "Ventilation Basics")
		assert.Equal(t, "module", recs[1].Kind)
		assert.Equal(t, "peep", recs[1].Slug)
		assert.Equal(t, 1, recCache.setCallCount)
	})

	t.Run("cache read failure degrades to recompute", func(t *testing.T) {
		lessonRepo, _, recCache, svc := newRecommendationFixture()
		recCache.getErr = assert.AnError
		lessonRepo.next = []models.Recommendation{{Kind: "lesson", Slug: "lung-mechanics"}}

		recs, err := svc.Get(context.Background(), 1)

		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("no more than three module suggestions", func(t *testing.T) {
		_, moduleRepo, _, svc := newRecommendationFixture()
		moduleRepo.unstarted = []models.Module{
			{Slug: "m1"}, {Slug: "m2"}, {Slug: "m3"}, {Slug: "m4"},
		}

		recs, err := svc.Get(context.Background(), 1)

		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})

	t.Run("everything completed yields an empty list, not null", func(t *testing.T) {
		_, _, _, svc := newRecommendationFixture()

		recs, err := svc.Get(context.Background(), 1)

		require.NoError(t, err)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	})
}

func TestRecommendationService_Rebuild(t *testing.T) {
	lessonRepo, _, recCache, svc := newRecommendationFixture()
	lessonRepo.next = []models.Recommendation{{Kind: "lesson", Slug: "lung-mechanics"}}

	err := svc.Rebuild(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, recCache.setCallCount)
	assert.Len(t, recCache.stored, 1)
}
