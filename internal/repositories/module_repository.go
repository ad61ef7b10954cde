package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ventylab/backend/internal/models"
)

type moduleRepository struct {
	db *sql.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *sql.DB) *moduleRepository {
	return &moduleRepository{
		db: db,
	}
}

// GetAllWithProgress retrieves all modules ordered by position, each with the
// user's lesson completion counts. difficulty filters when non-nil.
func (r *moduleRepository) GetAllWithProgress(ctx context.Context, userID int, difficulty *models.Difficulty) ([]models.ModuleListItem, error) {
	query := `
		SELECT
			m.id,
			m.slug,
			m.title,
			m.difficulty,
			m.position,
			COUNT(DISTINCT l.id) AS total_lessons,
			COUNT(DISTINCT lp.lesson_id) AS completed_lessons
		FROM modules m
		LEFT JOIN lessons l ON l.module_id = m.id
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.user_id = ?
	`
	args := []any{userID}

	if difficulty != nil {
		query += " WHERE m.difficulty = ?"
		args = append(args, *difficulty)
	}

	query += `
		GROUP BY m.id, m.slug, m.title, m.difficulty, m.position
		ORDER BY m.position
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []models.ModuleListItem
	for rows.Next() {
		var m models.ModuleListItem
		err := rows.Scan(
			&m.ID,
			&m.Slug,
			&m.Title,
			&m.Difficulty,
			&m.Position,
			&m.TotalLessons,
			&m.CompletedLessons,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		if m.TotalLessons > 0 {
			m.ProgressPercent = (100*m.CompletedLessons + m.TotalLessons/2) / m.TotalLessons
		}
		modules = append(modules, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return modules, nil
}

// GetBySlug retrieves a module by slug
func (r *moduleRepository) GetBySlug(ctx context.Context, slug string) (*models.Module, error) {
	query := `
		SELECT id, slug, title, description, difficulty, position
		FROM modules
		WHERE slug = ?
		LIMIT 1
	`

	var module models.Module
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&module.ID,
		&module.Slug,
		&module.Title,
		&module.Description,
		&module.Difficulty,
		&module.Position,
	)

	if err == sql.ErrNoRows {
		return nil, ErrModuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module by slug: %w", err)
	}

	return &module, nil
}

// GetByID retrieves a module by ID
func (r *moduleRepository) GetByID(ctx context.Context, id int) (*models.Module, error) {
	query := `
		SELECT id, slug, title, description, difficulty, position
		FROM modules
		WHERE id = ?
		LIMIT 1
	`

	var module models.Module
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&module.ID,
		&module.Slug,
		&module.Title,
		&module.Description,
		&module.Difficulty,
		&module.Position,
	)

	if err == sql.ErrNoRows {
		return nil, ErrModuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module by id: %w", err)
	}

	return &module, nil
}

// GetUnstarted retrieves modules where the user has no completed lessons yet,
// ordered by position, limited to limit rows
func (r *moduleRepository) GetUnstarted(ctx context.Context, userID, limit int) ([]models.Module, error) {
	query := `
		SELECT m.id, m.slug, m.title, m.description, m.difficulty, m.position
		FROM modules m
		WHERE NOT EXISTS (
			SELECT 1 FROM lesson_progress lp
			WHERE lp.module_id = m.id AND lp.user_id = ?
		)
		ORDER BY m.position
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unstarted modules: %w", err)
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		var m models.Module
		err := rows.Scan(&m.ID, &m.Slug, &m.Title, &m.Description, &m.Difficulty, &m.Position)
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

// ExistsBySlug checks if a module with the given slug exists
func (r *moduleRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM modules WHERE slug = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check module existence: %w", err)
	}

	return exists, nil
}

// Create creates a new module
func (r *moduleRepository) Create(ctx context.Context, module *models.Module) error {
	query := `
		INSERT INTO modules (slug, title, description, difficulty, position)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		module.Slug,
		module.Title,
		module.Description,
		module.Difficulty,
		module.Position,
	)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	module.ID = int(id)
	return nil
}
