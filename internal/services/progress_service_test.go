package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
)

type progressFixture struct {
	moduleRepo      *mockModuleRepository
	lessonRepo      *mockLessonRepository
	progressRepo    *mockProgressRepository
	attemptRepo     *mockQuizAttemptRepository
	achievementRepo *mockAchievementRepository
	sessionRepo     *mockSessionRepository
	svc             *progressService
}

func newProgressFixture() *progressFixture {
	f := &progressFixture{
		moduleRepo:      &mockModuleRepository{},
		lessonRepo:      &mockLessonRepository{},
		progressRepo:    &mockProgressRepository{},
		attemptRepo:     &mockQuizAttemptRepository{},
		achievementRepo: &mockAchievementRepository{},
		sessionRepo:     &mockSessionRepository{},
	}
	f.svc = NewProgressService(f.moduleRepo, f.lessonRepo, f.progressRepo, f.attemptRepo, f.achievementRepo, f.sessionRepo)
	return f
}

func TestProgressService_Overview(t *testing.T) {
	t.Run("weights overall percent by lesson count", func(t *testing.T) {
		f := newProgressFixture()
		f.moduleRepo.modules = []models.ModuleListItem{
			{ID: 1, Slug: "basics", TotalLessons: 8, CompletedLessons: 8, ProgressPercent: 100},
			{ID: 2, Slug: "advanced", TotalLessons: 2, CompletedLessons: 0, ProgressPercent: 0},
		}
		f.attemptRepo.passedCount = 3
		f.achievementRepo.unlockedCount = 2
		f.progressRepo.timeSpent = 5400

		overview, err := f.svc.Overview(context.Background(), 1)

		require.NoError(t, err)
		// 8 of 10 lessons, not the 50% a module average would give.
		assert.Equal(t, 80, overview.OverallPercent)
		assert.Equal(t, 8, overview.LessonsCompleted)
		assert.Equal(t, 3, overview.QuizzesPassed)
		assert.Equal(t, 2, overview.AchievementsUnlocked)
		assert.Equal(t, 5400, overview.TimeSpentSeconds)
		assert.Len(t, overview.Modules, 2)
	})

	t.Run("rounds overall percent half up", func(t *testing.T) {
		f := newProgressFixture()
		f.moduleRepo.modules = []models.ModuleListItem{
			{ID: 1, TotalLessons: 3, CompletedLessons: 1},
		}

		overview, err := f.svc.Overview(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, 33, overview.OverallPercent)
	})

	t.Run("empty catalog", func(t *testing.T) {
		f := newProgressFixture()

		overview, err := f.svc.Overview(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, 0, overview.OverallPercent)
		assert.Empty(t, overview.Modules)
	})

	t.Run("streak from session days", func(t *testing.T) {
		f := newProgressFixture()
		today := time.Now().UTC().Truncate(24 * time.Hour)
		f.sessionRepo.days = []time.Time{today, today.AddDate(0, 0, -1)}

		overview, err := f.svc.Overview(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, 2, overview.StreakDays)
	})
}

func TestProgressService_ModuleDetail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newProgressFixture()
		f.moduleRepo.module = &models.Module{ID: 1, Slug: "basics", Title: "Ventilation Basics"}
		f.lessonRepo.lessons = []models.LessonListItem{
			{Slug: "a", Completed: true},
			{Slug: "b", Completed: true},
			{Slug: "c"},
		}

		detail, err := f.svc.ModuleDetail(context.Background(), 1, "basics")

		require.NoError(t, err)
		assert.Equal(t, 3, detail.Module.TotalLessons)
		assert.Equal(t, 2, detail.Module.CompletedLessons)
		assert.Equal(t, 67, detail.Module.ProgressPercent)
		assert.Len(t, detail.Lessons, 3)
	})

	t.Run("module without lessons", func(t *testing.T) {
		f := newProgressFixture()
		f.moduleRepo.module = &models.Module{ID: 1, Slug: "empty"}

		detail, err := f.svc.ModuleDetail(context.Background(), 1, "empty")

		require.NoError(t, err)
		assert.Equal(t, 0, detail.Module.ProgressPercent)
	})

	t.Run("module not found", func(t *testing.T) {
		f := newProgressFixture()
		f.moduleRepo.err = repositories.ErrModuleNotFound

		_, err := f.svc.ModuleDetail(context.Background(), 1, "missing")

		require.Error(t, err)
		assert.Equal(t, 404, apperror.From(err).Status)
	})
}
