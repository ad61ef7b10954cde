package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ventylab/backend/internal/models"
)

type achievementRepository struct {
	db *sql.DB
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *sql.DB) *achievementRepository {
	return &achievementRepository{
		db: db,
	}
}

// GetAllWithUnlocked retrieves the achievement catalog with the user's unlock
// state, ordered by event type and threshold
func (r *achievementRepository) GetAllWithUnlocked(ctx context.Context, userID int) ([]models.AchievementListItem, error) {
	query := `
		SELECT
			a.code,
			a.title,
			a.description,
			a.icon,
			a.threshold,
			ua.unlocked_at
		FROM achievements a
		LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = ?
		ORDER BY a.event_type, a.threshold
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var items []models.AchievementListItem
	for rows.Next() {
		var item models.AchievementListItem
		var unlockedAt sql.NullTime
		err := rows.Scan(
			&item.Code,
			&item.Title,
			&item.Description,
			&item.Icon,
			&item.Threshold,
			&unlockedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		if unlockedAt.Valid {
			item.Unlocked = true
			t := unlockedAt.Time
			item.UnlockedAt = &t
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// GetByEventType retrieves the achievements reacting to an event type,
// ordered by threshold
func (r *achievementRepository) GetByEventType(ctx context.Context, eventType models.EventType) ([]models.Achievement, error) {
	query := `
		SELECT id, code, title, description, event_type, threshold, icon
		FROM achievements
		WHERE event_type = ?
		ORDER BY threshold
	`

	rows, err := r.db.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements by event type: %w", err)
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		err := rows.Scan(&a.ID, &a.Code, &a.Title, &a.Description, &a.EventType, &a.Threshold, &a.Icon)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return achievements, nil
}

// Unlock records an unlocked achievement. The insert is idempotent: a repeat
// unlock reports false with no error.
func (r *achievementRepository) Unlock(ctx context.Context, userID, achievementID int, unlockedAt time.Time) (bool, error) {
	query := `
		INSERT IGNORE INTO user_achievements (user_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, userID, achievementID, unlockedAt)
	if err != nil {
		return false, fmt.Errorf("failed to unlock achievement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CountUnlockedByUser counts the user's unlocked achievements
func (r *achievementRepository) CountUnlockedByUser(ctx context.Context, userID int) (int, error) {
	query := `SELECT COUNT(*) FROM user_achievements WHERE user_id = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unlocked achievements: %w", err)
	}

	return count, nil
}
