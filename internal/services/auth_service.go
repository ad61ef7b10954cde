// Package services implements the application logic between HTTP handlers
// and repositories
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/auth"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
	"github.com/ventylab/backend/internal/taskqueue"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmailOrUsername retrieves a user by email or username.
	//
	// "login" parameter is matched against both email and username.
	//
	// If no user matches, repositories.ErrUserNotFound is returned together with "nil" value.
	GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If no user matches, repositories.ErrUserNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method List retrieves users matching the filter with the total row count.
	//
	// "filter" parameter carries role/active/search filters and pagination.
	//
	// If some error occurs during data retrieval, the error will be returned.
	List(ctx context.Context, filter models.UserListFilter) ([]models.UserListItem, int, error)
	// Method UpdateRole updates a user's role.
	//
	// If no user matches, repositories.ErrUserNotFound is returned.
	UpdateRole(ctx context.Context, userID int, role models.Role) error
	// Method SetActive flips the soft-delete flag of a user.
	//
	// If no user matches, repositories.ErrUserNotFound is returned.
	SetActive(ctx context.Context, userID int, active bool) error
	// Method UpdatePassword replaces the stored password hash of a user.
	//
	// If no user matches, repositories.ErrUserNotFound is returned.
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	// Method UpdateProfile updates username and/or email of a user.
	//
	// Empty parameters are skipped; at least one must be set.
	UpdateProfile(ctx context.Context, userID int, username, email string) error
}

// UserTokenRepository is the interface that wraps methods for refresh token data access
type UserTokenRepository interface {
	// Method Create inserts a new refresh token row.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, token *models.UserToken) error
	// Method GetByToken retrieves a refresh token row by its token string.
	//
	// If no row matches, repositories.ErrTokenNotFound is returned together with "nil" value.
	GetByToken(ctx context.Context, refreshToken string) (*models.UserToken, error)
	// Method UpdateToken rotates a refresh token in place.
	//
	// If no row matches, repositories.ErrTokenNotFound is returned.
	UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error
	// Method DeleteByToken removes a refresh token row.
	//
	// If no row matches, repositories.ErrTokenNotFound is returned.
	DeleteByToken(ctx context.Context, refreshToken string) error
	// Method DeleteByUserID removes every refresh token of a user.
	//
	// If some error occurs during deletion, the error will be returned.
	DeleteByUserID(ctx context.Context, userID int) error
}

// TaskEnqueuer is the interface that wraps methods for publishing background tasks
type TaskEnqueuer interface {
	// EnqueueAchievementEvaluation queues an achievement rule evaluation for a user.
	EnqueueAchievementEvaluation(ctx context.Context, userID int, eventType string) error
	// EnqueueEmail queues a transactional email.
	EnqueueEmail(ctx context.Context, kind, recipient string, vars map[string]string) error
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// passwordRegexes validate password: at least 8 chars, uppercase, lowercase, number, special: !_?^&+-=|
var passwordRegexes = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[!_?^&+\-=|]`),
}

type authService struct {
	userRepo       UserRepository
	userTokenRepo  UserTokenRepository
	tokenGenerator *auth.TokenGenerator
	enqueuer       TaskEnqueuer
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	tokenGenerator *auth.TokenGenerator,
	enqueuer TaskEnqueuer,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		tokenGenerator: tokenGenerator,
		enqueuer:       enqueuer,
		logger:         logger,
	}
}

// validatePassword checks the password against all complexity rules
func validatePassword(password string) []string {
	var problems []string
	if !passwordRegexes[0].MatchString(password) {
		problems = append(problems, "password must be at least 8 characters long")
	}
	if !passwordRegexes[1].MatchString(password) {
		problems = append(problems, "password must contain a lowercase letter")
	}
	if !passwordRegexes[2].MatchString(password) {
		problems = append(problems, "password must contain an uppercase letter")
	}
	if !passwordRegexes[3].MatchString(password) {
		problems = append(problems, "password must contain a digit")
	}
	if !passwordRegexes[4].MatchString(password) {
		problems = append(problems, "password must contain a special character (!_?^&+-=|)")
	}
	return problems
}

// Register creates a new user account and issues a token pair
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, *models.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if !emailRegex.MatchString(email) {
		return nil, nil, apperror.BadRequest("invalid email address")
	}
	if len(username) < 3 || len(username) > 32 {
		return nil, nil, apperror.BadRequest("username must be between 3 and 32 characters")
	}
	if problems := validatePassword(req.Password); len(problems) > 0 {
		return nil, nil, apperror.BadRequest("password does not meet requirements").WithDetails(problems...)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, apperror.Conflict("email is already registered")
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, apperror.Conflict("username is already taken")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleStudent, // Default role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	// The welcome email must never break registration; failures are logged only.
	if err := s.enqueuer.EnqueueEmail(ctx, taskqueue.EmailWelcome, user.Email, map[string]string{
		"username": user.Username,
	}); err != nil {
		s.logger.Warn("failed to enqueue welcome email", zap.Int("user_id", user.ID), zap.Error(err))
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Login authenticates a user by email or username
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, *models.TokenPair, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, nil, apperror.BadRequest("login and password are required")
	}

	user, err := s.userRepo.GetByEmailOrUsername(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, apperror.New(403, "ACCOUNT_DISABLED", "account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, apperror.Unauthorized("invalid credentials")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Refresh rotates a refresh token and issues a fresh pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
		return nil, apperror.Unauthorized("invalid or expired refresh token")
	}

	stored, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return nil, apperror.Unauthorized("invalid or expired refresh token")
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.New(403, "ACCOUNT_DISABLED", "account is disabled")
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, int(user.Role))
	if err != nil {
		return nil, err
	}

	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, user.ID); err != nil {
		return nil, err
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// Logout deletes the refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.userTokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return apperror.Unauthorized("unknown refresh token")
		}
		return err
	}
	return nil
}

// issueTokens generates and persists a token pair for a user
func (s *authService) issueTokens(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, int(user.Role))
	if err != nil {
		return nil, err
	}

	token := &models.UserToken{
		UserID:       user.ID,
		RefreshToken: refreshToken,
	}
	if err := s.userTokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
