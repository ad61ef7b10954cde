package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ventylab/backend/internal/models"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new learning session repository
func NewSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{
		db: db,
	}
}

// Create starts a session for a user
func (r *sessionRepository) Create(ctx context.Context, userID int) (*models.LearningSession, error) {
	query := `
		INSERT INTO learning_sessions (user_id, started_at, last_seen_at)
		VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	now := time.Now()
	return &models.LearningSession{
		ID:         int(id),
		UserID:     userID,
		StartedAt:  now,
		LastSeenAt: now,
	}, nil
}

// Heartbeat bumps last_seen_at on an open session, incrementing the viewed
// lesson counter when lessonViewed is set
func (r *sessionRepository) Heartbeat(ctx context.Context, sessionID, userID int, lessonViewed bool) error {
	query := `
		UPDATE learning_sessions
		SET last_seen_at = CURRENT_TIMESTAMP,
		    lessons_viewed = lessons_viewed + ?
		WHERE id = ? AND user_id = ? AND ended_at IS NULL
	`

	inc := 0
	if lessonViewed {
		inc = 1
	}

	result, err := r.db.ExecContext(ctx, query, inc, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// End closes an open session
func (r *sessionRepository) End(ctx context.Context, sessionID, userID int) error {
	query := `
		UPDATE learning_sessions
		SET ended_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND ended_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// CloseStale closes open sessions idle since before the cutoff, setting
// ended_at to the last heartbeat. Returns the number of sessions closed.
func (r *sessionRepository) CloseStale(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE learning_sessions
		SET ended_at = last_seen_at
		WHERE ended_at IS NULL AND last_seen_at < ?
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to close stale sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// ActiveUserIDs retrieves the IDs of users with session activity since the
// cutoff
func (r *sessionRepository) ActiveUserIDs(ctx context.Context, since time.Time) ([]int, error) {
	query := `
		SELECT DISTINCT user_id
		FROM learning_sessions
		WHERE last_seen_at >= ?
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var userIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return userIDs, nil
}

// DistinctDays retrieves the distinct calendar days with session activity for
// a user since the cutoff, newest first
func (r *sessionRepository) DistinctDays(ctx context.Context, userID int, since time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT DATE(started_at) AS day
		FROM learning_sessions
		WHERE user_id = ? AND started_at >= ?
		ORDER BY day DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query session days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan session day: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return days, nil
}
