package services

import (
	"context"
	"errors"
	"time"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
)

type progressService struct {
	moduleRepo      ModuleRepository
	lessonRepo      LessonRepository
	progressRepo    ProgressRepository
	attemptRepo     QuizAttemptRepository
	achievementRepo AchievementRepository
	sessionRepo     SessionRepository
}

// NewProgressService creates a new progress service
func NewProgressService(
	moduleRepo ModuleRepository,
	lessonRepo LessonRepository,
	progressRepo ProgressRepository,
	attemptRepo QuizAttemptRepository,
	achievementRepo AchievementRepository,
	sessionRepo SessionRepository,
) *progressService {
	return &progressService{
		moduleRepo:      moduleRepo,
		lessonRepo:      lessonRepo,
		progressRepo:    progressRepo,
		attemptRepo:     attemptRepo,
		achievementRepo: achievementRepo,
		sessionRepo:     sessionRepo,
	}
}

// Overview assembles the user's dashboard: per-module rollups, the overall
// percentage weighted by lesson count, activity totals and the day streak
func (s *progressService) Overview(ctx context.Context, userID int) (*models.ProgressOverview, error) {
	items, err := s.moduleRepo.GetAllWithProgress(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	modules := make([]models.ModuleProgress, 0, len(items))
	totalLessons, completedLessons := 0, 0
	for _, item := range items {
		modules = append(modules, models.ModuleProgress{
			ModuleID:         item.ID,
			Slug:             item.Slug,
			Title:            item.Title,
			TotalLessons:     item.TotalLessons,
			CompletedLessons: item.CompletedLessons,
			ProgressPercent:  item.ProgressPercent,
		})
		totalLessons += item.TotalLessons
		completedLessons += item.CompletedLessons
	}

	// Weighted by lesson count, not an average of module percentages.
	overall := 0
	if totalLessons > 0 {
		overall = (100*completedLessons + totalLessons/2) / totalLessons
	}

	quizzesPassed, err := s.attemptRepo.CountPassedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.achievementRepo.CountUnlockedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	timeSpent, err := s.progressRepo.SumTimeSpent(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	days, err := s.sessionRepo.DistinctDays(ctx, userID, now.AddDate(0, 0, -streakWindowDays))
	if err != nil {
		return nil, err
	}

	return &models.ProgressOverview{
		Modules:              modules,
		OverallPercent:       overall,
		LessonsCompleted:     completedLessons,
		QuizzesPassed:        quizzesPassed,
		AchievementsUnlocked: achievements,
		StreakDays:           computeStreak(days, now),
		TimeSpentSeconds:     timeSpent,
	}, nil
}

// ModuleDetail returns the single-module rollup with per-lesson completion rows
func (s *progressService) ModuleDetail(ctx context.Context, userID int, slug string) (*models.ModuleProgressDetail, error) {
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

	completed := 0
	for _, l := range lessons {
		if l.Completed {
			completed++
		}
	}
	percent := 0
	if len(lessons) > 0 {
		percent = (100*completed + len(lessons)/2) / len(lessons)
	}

	return &models.ModuleProgressDetail{
		Module: models.ModuleProgress{
			ModuleID:         module.ID,
			Slug:             module.Slug,
			Title:            module.Title,
			TotalLessons:     len(lessons),
			CompletedLessons: completed,
			ProgressPercent:  percent,
		},
		Lessons: lessons,
	}, nil
}
