package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventylab/backend/internal/models"
)

// setupProgressTestRepository creates a progress repository with a mock database
func setupProgressTestRepository(t *testing.T) (*progressRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewProgressRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestProgressRepository_Exists(t *testing.T) {
	repo, mock, cleanup := setupProgressTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(1, 7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), 1, 7)

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupProgressTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO lesson_progress`).
			WithArgs(1, 2, 7, 300).
			WillReturnResult(sqlmock.NewResult(5, 1))

		progress := &models.LessonProgress{UserID: 1, ModuleID: 2, LessonID: 7, TimeSpentSeconds: 300}
		err := repo.Create(context.Background(), progress)

		require.NoError(t, err)
		assert.Equal(t, 5, progress.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupProgressTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO lesson_progress`).
			WithArgs(1, 2, 7, 0).
			WillReturnError(errors.New("database error"))

		err := repo.Create(context.Background(), &models.LessonProgress{UserID: 1, ModuleID: 2, LessonID: 7})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProgressRepository_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupProgressTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM lesson_progress`).
			WithArgs(1, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 1, 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing to delete", func(t *testing.T) {
		repo, mock, cleanup := setupProgressTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM lesson_progress`).
			WithArgs(1, 7).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 1, 7)

		assert.ErrorIs(t, err, ErrLessonNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProgressRepository_CountCompletedModules(t *testing.T) {
	repo, mock, cleanup := setupProgressTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\)(?s:.+)HAVING COUNT\(l\.id\) = COUNT\(lp\.id\)`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountCompletedModules(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_SumTimeSpent(t *testing.T) {
	repo, mock, cleanup := setupProgressTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(time_spent_seconds\), 0\)`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(5400))

	total, err := repo.SumTimeSpent(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 5400, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
