package models

import "time"

// LearningSession tracks a continuous study period of a user
type LearningSession struct {
	ID            int        `json:"id"`
	UserID        int        `json:"userId"`
	StartedAt     time.Time  `json:"startedAt"`
	LastSeenAt    time.Time  `json:"lastSeenAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	LessonsViewed int        `json:"lessonsViewed"`
}

// HeartbeatRequest keeps a session alive and optionally reports a viewed lesson
type HeartbeatRequest struct {
	SessionID    int    `json:"sessionId"`
	LessonViewed string `json:"lessonViewed,omitempty"` // lesson slug
}

// EndSessionRequest closes a session
type EndSessionRequest struct {
	SessionID int `json:"sessionId"`
}
