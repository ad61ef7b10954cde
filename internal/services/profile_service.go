package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
)

type profileService struct {
	userRepo      UserRepository
	userTokenRepo UserTokenRepository
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo UserRepository, userTokenRepo UserTokenRepository) *profileService {
	return &profileService{
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
	}
}

// Get returns the profile of the authenticated user
func (s *profileService) Get(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// Update changes username and/or email of the authenticated user
func (s *profileService) Update(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" && email == "" {
		return nil, apperror.BadRequest("nothing to update")
	}

	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	if username != "" && username != current.Username {
		if len(username) < 3 || len(username) > 32 {
			return nil, apperror.BadRequest("username must be between 3 and 32 characters")
		}
		taken, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.Conflict("username is already taken")
		}
	}

	if email != "" && email != current.Email {
		if !emailRegex.MatchString(email) {
			return nil, apperror.BadRequest("invalid email address")
		}
		taken, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperror.Conflict("email is already registered")
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, username, email); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// ChangePassword verifies the current password and stores a new hash.
// All refresh tokens of the user are revoked afterwards.
func (s *profileService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperror.Unauthorized("current password is incorrect")
	}

	if problems := validatePassword(req.NewPassword); len(problems) > 0 {
		return apperror.BadRequest("password does not meet requirements").WithDetails(problems...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	return s.userTokenRepo.DeleteByUserID(ctx, userID)
}
