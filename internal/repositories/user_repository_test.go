package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventylab/backend/internal/models"
)

// setupUserTestRepository creates a user repository with a mock database
func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewUserRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		user          *models.User
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name: "success",
			user: &models.User{
				Username:     "testuser",
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Role:         models.RoleStudent,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs("testuser", "test@example.com", "hashedpassword", models.RoleStudent).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			expectedError: false,
			expectedID:    1,
		},
		{
			name: "database error on insert",
			user: &models.User{
				Username:     "testuser",
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Role:         models.RoleStudent,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs("testuser", "test@example.com", "hashedpassword", models.RoleStudent).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name: "error getting last insert id",
			user: &models.User{
				Username:     "testuser",
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Role:         models.RoleStudent,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs("testuser", "test@example.com", "hashedpassword", models.RoleStudent).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("last insert id error")))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.user)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, tt.user.ID)
				assert.True(t, tt.user.IsActive)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmailOrUsername(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		login         string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name:  "success",
			login: "testuser",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "is_active", "created_at"}).
					AddRow(1, "testuser", "test@example.com", "hash", models.RoleStudent, true, createdAt)
				mock.ExpectQuery(`SELECT id, username, email, password_hash, role, is_active, created_at`).
					WithArgs("testuser", "testuser").
					WillReturnRows(rows)
			},
		},
		{
			name:  "not found",
			login: "nobody",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, username, email, password_hash, role, is_active, created_at`).
					WithArgs("nobody", "nobody").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user, err := repo.GetByEmailOrUsername(context.Background(), tt.login)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, user.ID)
				assert.Equal(t, "testuser", user.Username)
				assert.True(t, user.IsActive)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_List(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("no filters", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		rows := sqlmock.NewRows([]string{"id", "username", "email", "role", "is_active", "created_at"}).
			AddRow(1, "alice", "alice@example.com", models.RoleStudent, true, createdAt).
			AddRow(2, "bob", "bob@example.com", models.RoleInstructor, true, createdAt)
		mock.ExpectQuery(`SELECT id, username, email, role, is_active, created_at`).
			WithArgs(20, 0).
			WillReturnRows(rows)

		users, total, err := repo.List(context.Background(), models.UserListFilter{Page: 1, Count: 20})

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("role and search filters", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		role := models.RoleStudent
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \? AND \(username LIKE \? OR email LIKE \?\)`).
			WithArgs(role, "%ali%", "%ali%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		rows := sqlmock.NewRows([]string{"id", "username", "email", "role", "is_active", "created_at"}).
			AddRow(1, "alice", "alice@example.com", role, true, createdAt)
		mock.ExpectQuery(`SELECT id, username, email, role, is_active, created_at`).
			WithArgs(role, "%ali%", "%ali%", 10, 10).
			WillReturnRows(rows)

		users, total, err := repo.List(context.Background(), models.UserListFilter{
			Role:   &role,
			Search: "ali",
			Page:   2,
			Count:  10,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, users, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search metacharacters match literally", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE \(username LIKE \? OR email LIKE \?\)`).
			WithArgs(`%50\%\_vent%`, `%50\%\_vent%`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT id, username, email, role, is_active, created_at`).
			WithArgs(`%50\%\_vent%`, `%50\%\_vent%`, 20, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role", "is_active", "created_at"}))

		users, total, err := repo.List(context.Background(), models.UserListFilter{
			Search: "50%_vent",
			Page:   1,
			Count:  20,
		})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_UpdateRole(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE users SET role`).
			WithArgs(models.RoleInstructor, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateRole(context.Background(), 1, models.RoleInstructor)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user not found", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE users SET role`).
			WithArgs(models.RoleInstructor, 99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateRole(context.Background(), 99, models.RoleInstructor)

		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_SetActive(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE users SET is_active`).
		WithArgs(false, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetActive(context.Background(), 1, false)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	t.Run("username only", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE users SET username = \?`).
			WithArgs("newuser", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateProfile(context.Background(), 1, "newuser", "")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("username and email", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE users SET username = \?, email = \?`).
			WithArgs("newuser", "new@example.com", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateProfile(context.Background(), 1, "newuser", "new@example.com")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields", func(t *testing.T) {
		repo, _, cleanup := setupUserTestRepository(t)
		defer cleanup()

		err := repo.UpdateProfile(context.Background(), 1, "", "")

		assert.Error(t, err)
	})
}
