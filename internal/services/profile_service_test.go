package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
)

func TestProfileService_Update(t *testing.T) {
	current := &models.User{ID: 1, Username: "olduser", Email: "old@example.com"}

	t.Run("change username", func(t *testing.T) {
		userRepo := &mockUserRepository{user: current}
		svc := NewProfileService(userRepo, &mockUserTokenRepository{})

		_, err := svc.Update(context.Background(), 1, &models.UpdateProfileRequest{Username: "newuser"})

		assert.NoError(t, err)
	})

	t.Run("empty request", func(t *testing.T) {
		svc := NewProfileService(&mockUserRepository{user: current}, &mockUserTokenRepository{})

		_, err := svc.Update(context.Background(), 1, &models.UpdateProfileRequest{})

		require.Error(t, err)
		assert.Equal(t, 400, apperror.From(err).Status)
	})

	t.Run("username taken by someone else", func(t *testing.T) {
		userRepo := &mockUserRepository{user: current, existsByUsernameResult: true}
		svc := NewProfileService(userRepo, &mockUserTokenRepository{})

		_, err := svc.Update(context.Background(), 1, &models.UpdateProfileRequest{Username: "newuser"})

		require.Error(t, err)
		assert.Equal(t, 409, apperror.From(err).Status)
	})

	t.Run("resubmitting own username is not a conflict", func(t *testing.T) {
		userRepo := &mockUserRepository{user: current, existsByUsernameResult: true}
		svc := NewProfileService(userRepo, &mockUserTokenRepository{})

		_, err := svc.Update(context.Background(), 1, &models.UpdateProfileRequest{Username: "olduser"})

		assert.NoError(t, err)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc := NewProfileService(&mockUserRepository{user: current}, &mockUserTokenRepository{})

		_, err := svc.Update(context.Background(), 1, &models.UpdateProfileRequest{Email: "not-an-email"})

		require.Error(t, err)
		assert.Equal(t, 400, apperror.From(err).Status)
	})
}

func TestProfileService_ChangePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("OldPassword1!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{ID: 1, PasswordHash: string(hash)}

	t.Run("success revokes tokens", func(t *testing.T) {
		userRepo := &mockUserRepository{user: user}
		tokenRepo := &mockUserTokenRepository{}
		svc := NewProfileService(userRepo, tokenRepo)

		err := svc.ChangePassword(context.Background(), 1, &models.ChangePasswordRequest{
			CurrentPassword: "OldPassword1!",
			NewPassword:     "NewPassword1!",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, userRepo.updatedPasswordHash)
		assert.Equal(t, 1, tokenRepo.deletedByUserID)
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc := NewProfileService(&mockUserRepository{user: user}, &mockUserTokenRepository{})

		err := svc.ChangePassword(context.Background(), 1, &models.ChangePasswordRequest{
			CurrentPassword: "WrongPassword1!",
			NewPassword:     "NewPassword1!",
		})

		require.Error(t, err)
		assert.Equal(t, 401, apperror.From(err).Status)
	})

	t.Run("weak new password", func(t *testing.T) {
		svc := NewProfileService(&mockUserRepository{user: user}, &mockUserTokenRepository{})

		err := svc.ChangePassword(context.Background(), 1, &models.ChangePasswordRequest{
			CurrentPassword: "OldPassword1!",
			NewPassword:     "weak",
		})

		require.Error(t, err)
		appErr := apperror.From(err)
		assert.Equal(t, 400, appErr.Status)
		assert.NotEmpty(t, appErr.Details)
	})
}
