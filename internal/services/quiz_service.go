package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
)

// QuizRepository is the interface that wraps methods for Quiz table data access
type QuizRepository interface {
	// Method GetByID retrieves a quiz by ID.
	//
	// If no quiz matches, repositories.ErrQuizNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
	// Method GetByLessonID retrieves the quiz of a lesson.
	//
	// If the lesson has no quiz, repositories.ErrQuizNotFound is returned.
	GetByLessonID(ctx context.Context, lessonID int) (*models.Quiz, error)
	// Method GetQuestions retrieves the quiz questions ordered by position,
	// correct answers included.
	GetQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error)
}

// QuizAttemptRepository is the interface that wraps methods for QuizAttempt table data access
type QuizAttemptRepository interface {
	// Method Create inserts a graded attempt.
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	// Method ListByUserAndQuiz retrieves the user's attempts at a quiz, newest first.
	ListByUserAndQuiz(ctx context.Context, userID, quizID int) ([]models.QuizAttempt, error)
	// Method CountPassedByUser returns how many distinct quizzes the user has passed.
	CountPassedByUser(ctx context.Context, userID int) (int, error)
}

type quizService struct {
	quizRepo    QuizRepository
	attemptRepo QuizAttemptRepository
	enqueuer    TaskEnqueuer
	logger      *zap.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(
	quizRepo QuizRepository,
	attemptRepo QuizAttemptRepository,
	enqueuer TaskEnqueuer,
	logger *zap.Logger,
) *quizService {
	return &quizService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		enqueuer:    enqueuer,
		logger:      logger,
	}
}

// Get returns a quiz with its questions, correct answers stripped
func (s *quizService) Get(ctx context.Context, quizID int) (*models.QuizDetail, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, repositories.ErrQuizNotFound) {
			return nil, apperror.NotFound("quiz not found")
		}
		return nil, err
	}

	questions, err := s.quizRepo.GetQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	// CorrectIndex is never serialized; explanations are revealed only after an attempt.
	for i := range questions {
		questions[i].Explanation = ""
	}

	return &models.QuizDetail{
		ID:        quiz.ID,
		Title:     quiz.Title,
		PassScore: quiz.PassScore,
		Questions: questions,
	}, nil
}

// Submit grades an attempt and records it. The score is an integer percent
// of correct answers, rounded half up. The attempt passes when the score
// reaches the quiz pass score.
func (s *quizService) Submit(ctx context.Context, userID, quizID int, req *models.SubmitAttemptRequest) (*models.AttemptResult, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, repositories.ErrQuizNotFound) {
			return nil, apperror.NotFound("quiz not found")
		}
		return nil, err
	}

	questions, err := s.quizRepo.GetQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, apperror.Conflict("quiz has no questions")
	}
	if len(req.Answers) != len(questions) {
		return nil, apperror.BadRequest("expected %d answers, got %d", len(questions), len(req.Answers))
	}

	correct := make([]bool, len(questions))
	correctCount := 0
	for i, q := range questions {
		if req.Answers[i] == q.CorrectIndex {
			correct[i] = true
			correctCount++
		}
	}

	score := (100*correctCount + len(questions)/2) / len(questions)
	passed := score >= quiz.PassScore

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, err
	}

	attempt := &models.QuizAttempt{
		UserID:    userID,
		QuizID:    quizID,
		Score:     score,
		Passed:    passed,
		Answers:   answersJSON,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	if passed {
		if err := s.enqueuer.EnqueueAchievementEvaluation(ctx, userID, string(models.EventQuizPassed)); err != nil {
			s.logger.Warn("failed to enqueue achievement evaluation",
				zap.Int("user_id", userID),
				zap.Int("quiz_id", quizID),
				zap.Error(err))
		}
	}

	return &models.AttemptResult{
		AttemptID: attempt.ID,
		Score:     score,
		Passed:    passed,
		Correct:   correct,
	}, nil
}

// Attempts returns the user's attempts at a quiz, newest first
func (s *quizService) Attempts(ctx context.Context, userID, quizID int) ([]models.QuizAttempt, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, repositories.ErrQuizNotFound) {
			return nil, apperror.NotFound("quiz not found")
		}
		return nil, err
	}
	return s.attemptRepo.ListByUserAndQuiz(ctx, userID, quizID)
}
