package models

import (
	"encoding/json"
	"time"
)

// Quiz represents a quiz attached to a lesson
type Quiz struct {
	ID        int    `json:"id"`
	LessonID  int    `json:"lessonId"`
	Title     string `json:"title"`
	PassScore int    `json:"passScore"`
}

// QuizQuestion represents a single question of a quiz
type QuizQuestion struct {
	ID           int             `json:"id"`
	QuizID       int             `json:"quizId,omitempty"`
	Prompt       string          `json:"prompt"`
	Options      json.RawMessage `json:"options"`
	CorrectIndex int             `json:"-"` // never exposed to quiz takers
	Explanation  string          `json:"explanation,omitempty"`
	Position     int             `json:"position"`
}

// QuizDetail is the quiz response served to takers, correct answers stripped
type QuizDetail struct {
	ID        int            `json:"id"`
	Title     string         `json:"title"`
	PassScore int            `json:"passScore"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizAttempt represents a graded attempt at a quiz
type QuizAttempt struct {
	ID        int             `json:"id"`
	UserID    int             `json:"userId,omitempty"`
	QuizID    int             `json:"quizId"`
	Score     int             `json:"score"`
	Passed    bool            `json:"passed"`
	Answers   json.RawMessage `json:"answers"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SubmitAttemptRequest carries the answer selection per question, ordered by
// question position
type SubmitAttemptRequest struct {
	Answers []int `json:"answers"`
}

// AttemptResult is the grading response, echoing per-question correctness
type AttemptResult struct {
	AttemptID int    `json:"attemptId"`
	Score     int    `json:"score"`
	Passed    bool   `json:"passed"`
	Correct   []bool `json:"correct"`
}
