package models

import "time"

// LessonProgress records a completed (user, lesson) pair
type LessonProgress struct {
	ID               int       `json:"id"`
	UserID           int       `json:"userId"`
	ModuleID         int       `json:"moduleId"`
	LessonID         int       `json:"lessonId"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	CompletedAt      time.Time `json:"completedAt"`
}

// ModuleProgress is the per-module rollup used by dashboards
type ModuleProgress struct {
	ModuleID         int    `json:"-"`
	Slug             string `json:"slug"`
	Title            string `json:"title"`
	TotalLessons     int    `json:"totalLessons"`
	CompletedLessons int    `json:"completedLessons"`
	ProgressPercent  int    `json:"progressPercent"`
}

// ProgressOverview is the dashboard aggregate for a user
type ProgressOverview struct {
	Modules              []ModuleProgress `json:"modules"`
	OverallPercent       int              `json:"overallPercent"`
	LessonsCompleted     int              `json:"lessonsCompleted"`
	QuizzesPassed        int              `json:"quizzesPassed"`
	AchievementsUnlocked int              `json:"achievementsUnlocked"`
	StreakDays           int              `json:"streakDays"`
	TimeSpentSeconds     int              `json:"timeSpentSeconds"`
}

// ModuleProgressDetail is the single-module rollup with per-lesson rows
type ModuleProgressDetail struct {
	Module  ModuleProgress   `json:"module"`
	Lessons []LessonListItem `json:"lessons"`
}
