package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ventylab/backend/internal/models"
)

type userTokenRepository struct {
	db *sql.DB
}

// NewUserTokenRepository creates a new user token repository
func NewUserTokenRepository(db *sql.DB) *userTokenRepository {
	return &userTokenRepository{
		db: db,
	}
}

// Create inserts a new refresh token row
func (r *userTokenRepository) Create(ctx context.Context, token *models.UserToken) error {
	query := `
		INSERT INTO user_tokens (user_id, refresh_token)
		VALUES (?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, token.UserID, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to create user token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	token.ID = int(id)
	return nil
}

// GetByToken retrieves a refresh token row by its token string
func (r *userTokenRepository) GetByToken(ctx context.Context, refreshToken string) (*models.UserToken, error) {
	query := `
		SELECT id, user_id, refresh_token, created_at
		FROM user_tokens
		WHERE refresh_token = ?
		LIMIT 1
	`

	var token models.UserToken
	err := r.db.QueryRowContext(ctx, query, refreshToken).Scan(
		&token.ID,
		&token.UserID,
		&token.RefreshToken,
		&token.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user token: %w", err)
	}

	return &token, nil
}

// UpdateToken rotates a refresh token in place
func (r *userTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error {
	query := `
		UPDATE user_tokens
		SET refresh_token = ?, created_at = CURRENT_TIMESTAMP
		WHERE refresh_token = ? AND user_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, newToken, oldToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update user token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// DeleteByToken removes a refresh token row
func (r *userTokenRepository) DeleteByToken(ctx context.Context, refreshToken string) error {
	query := `DELETE FROM user_tokens WHERE refresh_token = ?`

	result, err := r.db.ExecContext(ctx, query, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to delete user token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// DeleteByUserID removes every refresh token of a user
func (r *userTokenRepository) DeleteByUserID(ctx context.Context, userID int) error {
	query := `DELETE FROM user_tokens WHERE user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}

	return nil
}

// DeleteExpired removes tokens created before the cutoff, returning the count
func (r *userTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM user_tokens WHERE created_at < ?`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
