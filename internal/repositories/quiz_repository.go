package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ventylab/backend/internal/models"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

// GetByID retrieves a quiz by ID
func (r *quizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	query := `
		SELECT id, lesson_id, title, pass_score
		FROM quizzes
		WHERE id = ?
		LIMIT 1
	`

	var quiz models.Quiz
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quiz.ID,
		&quiz.LessonID,
		&quiz.Title,
		&quiz.PassScore,
	)

	if err == sql.ErrNoRows {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}

	return &quiz, nil
}

// GetByLessonID retrieves the quiz attached to a lesson, if any
func (r *quizRepository) GetByLessonID(ctx context.Context, lessonID int) (*models.Quiz, error) {
	query := `
		SELECT id, lesson_id, title, pass_score
		FROM quizzes
		WHERE lesson_id = ?
		LIMIT 1
	`

	var quiz models.Quiz
	err := r.db.QueryRowContext(ctx, query, lessonID).Scan(
		&quiz.ID,
		&quiz.LessonID,
		&quiz.Title,
		&quiz.PassScore,
	)

	if err == sql.ErrNoRows {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by lesson id: %w", err)
	}

	return &quiz, nil
}

// GetQuestions retrieves quiz questions ordered by position, including the
// correct answer index. Callers strip grading fields before responding.
func (r *quizRepository) GetQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error) {
	query := `
		SELECT id, quiz_id, prompt, options, correct_index, explanation, position
		FROM quiz_questions
		WHERE quiz_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	var questions []models.QuizQuestion
	for rows.Next() {
		var q models.QuizQuestion
		err := rows.Scan(
			&q.ID,
			&q.QuizID,
			&q.Prompt,
			&q.Options,
			&q.CorrectIndex,
			&q.Explanation,
			&q.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return questions, nil
}
