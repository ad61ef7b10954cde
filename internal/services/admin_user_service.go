package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
	"github.com/ventylab/backend/internal/taskqueue"
)

type adminUserService struct {
	userRepo      UserRepository
	userTokenRepo UserTokenRepository
	enqueuer      TaskEnqueuer
	logger        *zap.Logger
}

// NewAdminUserService creates a new admin user service
func NewAdminUserService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	enqueuer TaskEnqueuer,
	logger *zap.Logger,
) *adminUserService {
	return &adminUserService{
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		enqueuer:      enqueuer,
		logger:        logger,
	}
}

// List returns users matching the filter with the total count for pagination
func (s *adminUserService) List(ctx context.Context, filter models.UserListFilter) (*models.UserListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Count < 1 || filter.Count > 100 {
		filter.Count = 20
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, apperror.BadRequest("unknown role")
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.UserListResult{
		Users: users,
		Total: total,
		Page:  filter.Page,
		Count: filter.Count,
	}, nil
}

// Get returns a single user by ID
func (s *adminUserService) Get(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateRole changes the role of a user. Admins cannot change their own role.
func (s *adminUserService) UpdateRole(ctx context.Context, actorID, userID int, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperror.BadRequest("unknown role")
	}
	if actorID == userID {
		return nil, apperror.Forbidden("cannot change own role")
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	// A demoted or promoted user must re-authenticate for the new role to apply.
	if err := s.userTokenRepo.DeleteByUserID(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke tokens after role change", zap.Int("user_id", userID), zap.Error(err))
	}

	return s.userRepo.GetByID(ctx, userID)
}

// Deactivate soft-deletes a user and revokes all refresh tokens.
// Admins cannot deactivate themselves.
func (s *adminUserService) Deactivate(ctx context.Context, actorID, userID int) error {
	if actorID == userID {
		return apperror.Forbidden("cannot deactivate own account")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}
	if !user.IsActive {
		return apperror.Conflict("user is already deactivated")
	}

	if err := s.userRepo.SetActive(ctx, userID, false); err != nil {
		return err
	}
	return s.userTokenRepo.DeleteByUserID(ctx, userID)
}

// Activate restores a soft-deleted user
func (s *adminUserService) Activate(ctx context.Context, userID int) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}
	if user.IsActive {
		return apperror.Conflict("user is already active")
	}
	return s.userRepo.SetActive(ctx, userID, true)
}

// ResetPassword generates a temporary password, stores its hash and
// emails the plaintext to the user. All refresh tokens are revoked.
func (s *adminUserService) ResetPassword(ctx context.Context, userID int) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}
	if !user.IsActive {
		return apperror.New(403, "ACCOUNT_DISABLED", "account is disabled")
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	if err := s.userTokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}

	if err := s.enqueuer.EnqueueEmail(ctx, taskqueue.EmailPasswordReset, user.Email, map[string]string{
		"username": user.Username,
		"password": tempPassword,
	}); err != nil {
		s.logger.Error("failed to enqueue password reset email", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// generateTempPassword produces a password that satisfies the complexity rules
func generateTempPassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	// Prefix guarantees upper, lower, digit and special regardless of the random part.
	return "Tmp1!" + hex.EncodeToString(buf), nil
}
