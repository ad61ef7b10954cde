package models

import "encoding/json"

// Lesson represents a lesson in a curriculum module
type Lesson struct {
	ID               int    `json:"id"`
	Slug             string `json:"slug"`
	ModuleID         int    `json:"moduleId,omitempty"`
	Title            string `json:"title"`
	ShortSummary     string `json:"shortSummary"`
	Position         int    `json:"position"`
	ContentFile      string `json:"-"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
}

// LessonListItem represents a lesson row in list responses
type LessonListItem struct {
	ID               int    `json:"id,omitempty"`
	Slug             string `json:"slug"`
	ModuleID         int    `json:"moduleId,omitempty"`
	Title            string `json:"title"`
	ShortSummary     string `json:"shortSummary,omitempty"`
	Position         int    `json:"position,omitempty"`
	EstimatedMinutes int    `json:"estimatedMinutes,omitempty"`
	Completed        bool   `json:"completed"`
}

// LessonDetail is the full lesson response including resolved content
type LessonDetail struct {
	Slug             string          `json:"slug"`
	Title            string          `json:"title"`
	ShortSummary     string          `json:"shortSummary"`
	EstimatedMinutes int             `json:"estimatedMinutes"`
	Completed        bool            `json:"completed"`
	QuizID           *int            `json:"quizId,omitempty"`
	Content          json.RawMessage `json:"content"`
}

// CompleteLessonRequest is the optional body of a completion toggle
type CompleteLessonRequest struct {
	TimeSpentSeconds int `json:"timeSpentSeconds,omitempty"`
}
