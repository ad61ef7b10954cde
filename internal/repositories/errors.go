// Package repositories implements MySQL data access for the VentyLab domain
package repositories

import "errors"

// Sentinel errors returned by repositories. Services translate these into
// API-level errors; repositories never shape HTTP responses themselves.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTokenNotFound       = errors.New("token not found")
	ErrModuleNotFound      = errors.New("module not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrSessionNotFound     = errors.New("session not found")
)
