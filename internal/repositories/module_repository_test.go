package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventylab/backend/internal/models"
)

// setupModuleTestRepository creates a module repository with a mock database
func setupModuleTestRepository(t *testing.T) (*moduleRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewModuleRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestModuleRepository_GetAllWithProgress(t *testing.T) {
	columns := []string{"id", "slug", "title", "difficulty", "position", "total_lessons", "completed_lessons"}

	t.Run("computes rounded percent per module", func(t *testing.T) {
		repo, mock, cleanup := setupModuleTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(columns).
			AddRow(1, "basics", "Ventilation Basics", "beginner", 1, 3, 1).
			AddRow(2, "peep", "Understanding PEEP", "intermediate", 2, 2, 1).
			AddRow(3, "empty", "Placeholder", "advanced", 3, 0, 0)
		mock.ExpectQuery(`SELECT(?s:.+)FROM modules m`).
			WithArgs(1).
			WillReturnRows(rows)

		modules, err := repo.GetAllWithProgress(context.Background(), 1, nil)

		require.NoError(t, err)
		require.Len(t, modules, 3)
		// 1 of 3 rounds half up to 33, 1 of 2 to 50, empty module stays at 0.
		assert.Equal(t, 33, modules[0].ProgressPercent)
		assert.Equal(t, 50, modules[1].ProgressPercent)
		assert.Equal(t, 0, modules[2].ProgressPercent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("difficulty filter adds a where clause", func(t *testing.T) {
		repo, mock, cleanup := setupModuleTestRepository(t)
		defer cleanup()

		difficulty := models.DifficultyBeginner
		rows := sqlmock.NewRows(columns).
			AddRow(1, "basics", "Ventilation Basics", "beginner", 1, 3, 3)
		mock.ExpectQuery(`SELECT(?s:.+)WHERE m\.difficulty = \?`).
			WithArgs(1, difficulty).
			WillReturnRows(rows)

		modules, err := repo.GetAllWithProgress(context.Background(), 1, &difficulty)

		require.NoError(t, err)
		require.Len(t, modules, 1)
		assert.Equal(t, 100, modules[0].ProgressPercent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestModuleRepository_GetBySlug(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupModuleTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "slug", "title", "description", "difficulty", "position"}).
			AddRow(1, "basics", "Ventilation Basics", "Intro to mechanical ventilation", "beginner", 1)
		mock.ExpectQuery(`SELECT id, slug, title, description, difficulty, position`).
			WithArgs("basics").
			WillReturnRows(rows)

		module, err := repo.GetBySlug(context.Background(), "basics")

		require.NoError(t, err)
		assert.Equal(t, "basics", module.Slug)
		assert.Equal(t, models.DifficultyBeginner, module.Difficulty)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupModuleTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, slug, title, description, difficulty, position`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "title", "description", "difficulty", "position"}))

		module, err := repo.GetBySlug(context.Background(), "missing")

		assert.ErrorIs(t, err, ErrModuleNotFound)
		assert.Nil(t, module)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestModuleRepository_GetUnstarted(t *testing.T) {
	repo, mock, cleanup := setupModuleTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "slug", "title", "description", "difficulty", "position"}).
		AddRow(3, "weaning", "Ventilator Weaning", "", "advanced", 3)
	mock.ExpectQuery(`SELECT m\.id, m\.slug, m\.title(?s:.+)NOT EXISTS`).
		WithArgs(1, 3).
		WillReturnRows(rows)

	modules, err := repo.GetUnstarted(context.Background(), 1, 3)

	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "weaning", modules[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}
