package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ventylab/backend/internal/models"
)

// likePattern builds a contains-match LIKE pattern from user input. LIKE
// metacharacters in the input are escaped so they match literally.
func likePattern(q string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(q) + "%"
}

type searchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new catalog search repository
func NewSearchRepository(db *sql.DB) *searchRepository {
	return &searchRepository{
		db: db,
	}
}

// SearchModules finds modules whose title or description matches the query,
// case-insensitively, limited to limit rows
func (r *searchRepository) SearchModules(ctx context.Context, q string, limit int) ([]models.ModuleListItem, error) {
	query := `
		SELECT id, slug, title, difficulty, position
		FROM modules
		WHERE title LIKE ? OR description LIKE ?
		ORDER BY position
		LIMIT ?
	`

	pattern := likePattern(q)
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search modules: %w", err)
	}
	defer rows.Close()

	var modules []models.ModuleListItem
	for rows.Next() {
		var m models.ModuleListItem
		err := rows.Scan(&m.ID, &m.Slug, &m.Title, &m.Difficulty, &m.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return modules, nil
}

// SearchLessons finds lessons whose title or summary matches the query,
// case-insensitively, limited to limit rows
func (r *searchRepository) SearchLessons(ctx context.Context, q string, limit int) ([]models.LessonListItem, error) {
	query := `
		SELECT l.slug, l.title, l.short_summary, l.module_id
		FROM lessons l
		WHERE l.title LIKE ? OR l.short_summary LIKE ?
		ORDER BY l.module_id, l.position
		LIMIT ?
	`

	pattern := likePattern(q)
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.LessonListItem
	for rows.Next() {
		var l models.LessonListItem
		err := rows.Scan(&l.Slug, &l.Title, &l.ShortSummary, &l.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}
