package models

// Difficulty represents the difficulty level of a curriculum module
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ValidDifficulty reports whether d is a known difficulty level
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Module represents a curriculum module grouping ordered lessons
type Module struct {
	ID          int        `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Position    int        `json:"position"`
}

// ModuleListItem represents a module in list responses with the caller's progress
type ModuleListItem struct {
	ID               int        `json:"id,omitempty"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Difficulty       Difficulty `json:"difficulty"`
	Position         int        `json:"position"`
	TotalLessons     int        `json:"totalLessons"`
	CompletedLessons int        `json:"completedLessons"`
	ProgressPercent  int        `json:"progressPercent"`
}

// ModuleDetail is the single-module response with its lessons and the
// caller's completion state per lesson
type ModuleDetail struct {
	Module  Module           `json:"module"`
	Lessons []LessonListItem `json:"lessons"`
}
