package models

import "time"

// EventType names a learning event that can unlock achievements
type EventType string

const (
	EventLessonCompleted EventType = "lesson_completed"
	EventQuizPassed      EventType = "quiz_passed"
	EventModuleCompleted EventType = "module_completed"
	EventSessionStreak   EventType = "session_streak"
)

// Achievement represents an entry of the achievement catalog. An achievement
// unlocks when the user's metric for EventType reaches Threshold.
type Achievement struct {
	ID          int       `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventType   EventType `json:"eventType"`
	Threshold   int       `json:"threshold"`
	Icon        string    `json:"icon"`
}

// AchievementListItem represents a catalog entry with the caller's unlock state
type AchievementListItem struct {
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Threshold   int        `json:"threshold"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}
