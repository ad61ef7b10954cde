package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ventylab/backend/internal/models"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new lesson progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// Exists checks if a progress row exists for (user, lesson)
func (r *progressRepository) Exists(ctx context.Context, userID, lessonID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM lesson_progress WHERE user_id = ? AND lesson_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check progress existence: %w", err)
	}

	return exists, nil
}

// Create inserts a progress row
func (r *progressRepository) Create(ctx context.Context, progress *models.LessonProgress) error {
	query := `
		INSERT INTO lesson_progress (user_id, module_id, lesson_id, time_spent_seconds)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		progress.UserID,
		progress.ModuleID,
		progress.LessonID,
		progress.TimeSpentSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to create progress record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	progress.ID = int(id)
	return nil
}

// Delete removes the progress row for (user, lesson)
func (r *progressRepository) Delete(ctx context.Context, userID, lessonID int) error {
	query := `DELETE FROM lesson_progress WHERE user_id = ? AND lesson_id = ?`

	result, err := r.db.ExecContext(ctx, query, userID, lessonID)
	if err != nil {
		return fmt.Errorf("failed to delete progress record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrLessonNotFound
	}

	return nil
}

// CountByUser counts the user's completed lessons
func (r *progressRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	query := `SELECT COUNT(*) FROM lesson_progress WHERE user_id = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}

	return count, nil
}

// CountByModule counts the user's completed lessons within a module
func (r *progressRepository) CountByModule(ctx context.Context, userID, moduleID int) (int, error) {
	query := `SELECT COUNT(*) FROM lesson_progress WHERE user_id = ? AND module_id = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, moduleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed lessons in module: %w", err)
	}

	return count, nil
}

// CountCompletedModules counts modules where the user completed every lesson
func (r *progressRepository) CountCompletedModules(ctx context.Context, userID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM (
			SELECT l.module_id
			FROM lessons l
			LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.user_id = ?
			GROUP BY l.module_id
			HAVING COUNT(l.id) = COUNT(lp.id)
		) done
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed modules: %w", err)
	}

	return count, nil
}

// SumTimeSpent sums the user's recorded lesson time in seconds
func (r *progressRepository) SumTimeSpent(ctx context.Context, userID int) (int, error) {
	query := `SELECT COALESCE(SUM(time_spent_seconds), 0) FROM lesson_progress WHERE user_id = ?`

	var total int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum time spent: %w", err)
	}

	return total, nil
}
