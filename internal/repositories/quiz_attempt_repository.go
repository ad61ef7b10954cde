package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ventylab/backend/internal/models"
)

type quizAttemptRepository struct {
	db *sql.DB
}

// NewQuizAttemptRepository creates a new quiz attempt repository
func NewQuizAttemptRepository(db *sql.DB) *quizAttemptRepository {
	return &quizAttemptRepository{
		db: db,
	}
}

// Create inserts a graded attempt
func (r *quizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	query := `
		INSERT INTO quiz_attempts (user_id, quiz_id, score, passed, answers)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		attempt.UserID,
		attempt.QuizID,
		attempt.Score,
		attempt.Passed,
		[]byte(attempt.Answers),
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	attempt.ID = int(id)
	return nil
}

// ListByUserAndQuiz retrieves a user's attempts at a quiz, newest first
func (r *quizAttemptRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID int) ([]models.QuizAttempt, error) {
	query := `
		SELECT id, quiz_id, score, passed, answers, created_at
		FROM quiz_attempts
		WHERE user_id = ? AND quiz_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.QuizAttempt
	for rows.Next() {
		var a models.QuizAttempt
		var answers []byte
		err := rows.Scan(
			&a.ID,
			&a.QuizID,
			&a.Score,
			&a.Passed,
			&answers,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz attempt: %w", err)
		}
		a.Answers = answers
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}

// CountPassedByUser counts distinct quizzes the user has passed
func (r *quizAttemptRepository) CountPassedByUser(ctx context.Context, userID int) (int, error) {
	query := `SELECT COUNT(DISTINCT quiz_id) FROM quiz_attempts WHERE user_id = ? AND passed = TRUE`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count passed quizzes: %w", err)
	}

	return count, nil
}
