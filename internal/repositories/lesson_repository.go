package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ventylab/backend/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// GetBySlug retrieves a lesson by its slug with the user's completion flag
func (r *lessonRepository) GetBySlug(ctx context.Context, slug string, userID int) (*models.Lesson, bool, error) {
	query := `
		SELECT
			l.id,
			l.slug,
			l.module_id,
			l.title,
			l.short_summary,
			l.position,
			l.content_file,
			l.estimated_minutes,
			CASE WHEN lp.id IS NOT NULL THEN 1 ELSE 0 END AS completed
		FROM lessons l
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.user_id = ?
		WHERE l.slug = ?
		LIMIT 1
	`

	var lesson models.Lesson
	var completed int
	err := r.db.QueryRowContext(ctx, query, userID, slug).Scan(
		&lesson.ID,
		&lesson.Slug,
		&lesson.ModuleID,
		&lesson.Title,
		&lesson.ShortSummary,
		&lesson.Position,
		&lesson.ContentFile,
		&lesson.EstimatedMinutes,
		&completed,
	)

	if err == sql.ErrNoRows {
		return nil, false, ErrLessonNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get lesson by slug: %w", err)
	}

	return &lesson, completed == 1, nil
}

// GetByModuleIDWithCompletion retrieves lessons of a module ordered by
// position, each with the user's completion flag
func (r *lessonRepository) GetByModuleIDWithCompletion(ctx context.Context, moduleID, userID int) ([]models.LessonListItem, error) {
	query := `
		SELECT
			l.slug,
			l.title,
			l.short_summary,
			l.position,
			l.estimated_minutes,
			CASE WHEN lp.id IS NOT NULL THEN 1 ELSE 0 END AS completed
		FROM lessons l
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.user_id = ?
		WHERE l.module_id = ?
		ORDER BY l.position
	`

	rows, err := r.db.QueryContext(ctx, query, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.LessonListItem
	for rows.Next() {
		var lesson models.LessonListItem
		var completed int
		err := rows.Scan(
			&lesson.Slug,
			&lesson.Title,
			&lesson.ShortSummary,
			&lesson.Position,
			&lesson.EstimatedMinutes,
			&completed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lesson.Completed = completed == 1
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// NextUncompleted retrieves, for each module the user has started but not
// finished, the first lesson by position the user has not completed
func (r *lessonRepository) NextUncompleted(ctx context.Context, userID int) ([]models.Recommendation, error) {
	query := `
		SELECT l.slug, l.title, m.slug, m.title
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE l.id NOT IN (SELECT lesson_id FROM lesson_progress WHERE user_id = ?)
		  AND EXISTS (
			SELECT 1 FROM lesson_progress lp
			WHERE lp.module_id = l.module_id AND lp.user_id = ?
		  )
		  AND l.position = (
			SELECT MIN(l2.position) FROM lessons l2
			WHERE l2.module_id = l.module_id
			  AND l2.id NOT IN (SELECT lesson_id FROM lesson_progress WHERE user_id = ?)
		  )
		ORDER BY m.position
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query next lessons: %w", err)
	}
	defer rows.Close()

	var recs []models.Recommendation
	for rows.Next() {
		rec := models.Recommendation{Kind: "lesson"}
		err := rows.Scan(&rec.Slug, &rec.Title, &rec.ModuleSlug, &rec.ModuleTitle)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return recs, nil
}

// ExistsBySlug checks if a lesson with the given slug exists
func (r *lessonRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM lessons WHERE slug = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check lesson existence: %w", err)
	}

	return exists, nil
}

// Create creates a new lesson
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (slug, module_id, title, short_summary, position, content_file, estimated_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		lesson.Slug,
		lesson.ModuleID,
		lesson.Title,
		lesson.ShortSummary,
		lesson.Position,
		lesson.ContentFile,
		lesson.EstimatedMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	lesson.ID = int(id)
	return nil
}
