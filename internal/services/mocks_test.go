package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ventylab/backend/internal/cache"
	"github.com/ventylab/backend/internal/models"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	user                   *models.User
	err                    error
	existsByEmailResult    bool
	existsByEmailError     error
	existsByUsernameResult bool
	existsByUsernameError  error
	listResult             []models.UserListItem
	listTotal              int
	updateRoleErr          error
	setActiveErr           error
	updatePasswordErr      error
	updatedPasswordHash    string
	setActiveCalls         []bool
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailError != nil {
		return false, m.existsByEmailError
	}
	return m.existsByEmailResult, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameError != nil {
		return false, m.existsByUsernameError
	}
	return m.existsByUsernameResult, nil
}

func (m *mockUserRepository) List(ctx context.Context, filter models.UserListFilter) ([]models.UserListItem, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, userID int, role models.Role) error {
	return m.updateRoleErr
}

func (m *mockUserRepository) SetActive(ctx context.Context, userID int, active bool) error {
	m.setActiveCalls = append(m.setActiveCalls, active)
	return m.setActiveErr
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	m.updatedPasswordHash = passwordHash
	return nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, userID int, username, email string) error {
	return m.err
}

// mockUserTokenRepository is a mock implementation of UserTokenRepository
type mockUserTokenRepository struct {
	token           *models.UserToken
	err             error
	updateTokenErr  error
	deletedByUserID int
}

func (m *mockUserTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	return m.err
}

func (m *mockUserTokenRepository) GetByToken(ctx context.Context, token string) (*models.UserToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.token, nil
}

func (m *mockUserTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error {
	return m.updateTokenErr
}

func (m *mockUserTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	return m.err
}

func (m *mockUserTokenRepository) DeleteByUserID(ctx context.Context, userID int) error {
	m.deletedByUserID = userID
	return nil
}

// mockEnqueuer is a mock implementation of TaskEnqueuer recording calls
type mockEnqueuer struct {
	err        error
	events     []string
	emailKinds []string
	emailTo    []string
}

func (m *mockEnqueuer) EnqueueAchievementEvaluation(ctx context.Context, userID int, eventType string) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, eventType)
	return nil
}

func (m *mockEnqueuer) EnqueueEmail(ctx context.Context, kind, recipient string, vars map[string]string) error {
	if m.err != nil {
		return m.err
	}
	m.emailKinds = append(m.emailKinds, kind)
	m.emailTo = append(m.emailTo, recipient)
	return nil
}

// mockModuleRepository is a mock implementation of ModuleRepository
type mockModuleRepository struct {
	modules   []models.ModuleListItem
	module    *models.Module
	unstarted []models.Module
	err       error
}

func (m *mockModuleRepository) GetAllWithProgress(ctx context.Context, userID int, difficulty *models.Difficulty) ([]models.ModuleListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.modules, nil
}

func (m *mockModuleRepository) GetBySlug(ctx context.Context, slug string) (*models.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.module, nil
}

func (m *mockModuleRepository) GetByID(ctx context.Context, id int) (*models.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.module, nil
}

func (m *mockModuleRepository) GetUnstarted(ctx context.Context, userID, limit int) ([]models.Module, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.unstarted) > limit {
		return m.unstarted[:limit], nil
	}
	return m.unstarted, nil
}

// mockLessonRepository is a mock implementation of LessonRepository
type mockLessonRepository struct {
	lesson        *models.Lesson
	completed     bool
	lessons       []models.LessonListItem
	next          []models.Recommendation
	err           error
	getBySlugErr  error
	nextUncompErr error
}

func (m *mockLessonRepository) GetBySlug(ctx context.Context, slug string, userID int) (*models.Lesson, bool, error) {
	if m.getBySlugErr != nil {
		return nil, false, m.getBySlugErr
	}
	return m.lesson, m.completed, nil
}

func (m *mockLessonRepository) GetByModuleIDWithCompletion(ctx context.Context, moduleID, userID int) ([]models.LessonListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessons, nil
}

func (m *mockLessonRepository) NextUncompleted(ctx context.Context, userID int) ([]models.Recommendation, error) {
	if m.nextUncompErr != nil {
		return nil, m.nextUncompErr
	}
	return m.next, nil
}

// mockProgressRepository is a mock implementation of ProgressRepository
type mockProgressRepository struct {
	exists           bool
	existsErr        error
	createErr        error
	deleteErr        error
	created          []*models.LessonProgress
	deleted          int
	countByUser      int
	countByModule    int
	completedModules int
	timeSpent        int
	err              error
}

func (m *mockProgressRepository) Exists(ctx context.Context, userID, lessonID int) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockProgressRepository) Create(ctx context.Context, progress *models.LessonProgress) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, progress)
	return nil
}

func (m *mockProgressRepository) Delete(ctx context.Context, userID, lessonID int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted++
	return nil
}

func (m *mockProgressRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	return m.countByUser, m.err
}

func (m *mockProgressRepository) CountByModule(ctx context.Context, userID, moduleID int) (int, error) {
	return m.countByModule, m.err
}

func (m *mockProgressRepository) CountCompletedModules(ctx context.Context, userID int) (int, error) {
	return m.completedModules, m.err
}

func (m *mockProgressRepository) SumTimeSpent(ctx context.Context, userID int) (int, error) {
	return m.timeSpent, m.err
}

// mockContentStore is a mock implementation of ContentStore
type mockContentStore struct {
	content json.RawMessage
	err     error
}

func (m *mockContentStore) Load(name string) (json.RawMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.content, nil
}

// mockQuizRepository is a mock implementation of QuizRepository and QuizLookup
type mockQuizRepository struct {
	quiz           *models.Quiz
	questions      []models.QuizQuestion
	err            error
	getByLessonErr error
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.quiz, nil
}

func (m *mockQuizRepository) GetByLessonID(ctx context.Context, lessonID int) (*models.Quiz, error) {
	if m.getByLessonErr != nil {
		return nil, m.getByLessonErr
	}
	return m.quiz, nil
}

func (m *mockQuizRepository) GetQuestions(ctx context.Context, quizID int) ([]models.QuizQuestion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.questions, nil
}

// mockQuizAttemptRepository is a mock implementation of QuizAttemptRepository
type mockQuizAttemptRepository struct {
	attempts    []models.QuizAttempt
	created     []*models.QuizAttempt
	passedCount int
	err         error
	createErr   error
}

func (m *mockQuizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if m.createErr != nil {
		return m.createErr
	}
	attempt.ID = len(m.created) + 1
	m.created = append(m.created, attempt)
	return nil
}

func (m *mockQuizAttemptRepository) ListByUserAndQuiz(ctx context.Context, userID, quizID int) ([]models.QuizAttempt, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.attempts, nil
}

func (m *mockQuizAttemptRepository) CountPassedByUser(ctx context.Context, userID int) (int, error) {
	return m.passedCount, m.err
}

// mockAchievementRepository is a mock implementation of AchievementRepository
type mockAchievementRepository struct {
	items         []models.AchievementListItem
	byEventType   []models.Achievement
	alreadyOwned  map[int]bool
	unlocked      []int
	unlockedCount int
	err           error
}

func (m *mockAchievementRepository) GetAllWithUnlocked(ctx context.Context, userID int) ([]models.AchievementListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockAchievementRepository) GetByEventType(ctx context.Context, eventType models.EventType) ([]models.Achievement, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byEventType, nil
}

func (m *mockAchievementRepository) Unlock(ctx context.Context, userID, achievementID int, unlockedAt time.Time) (bool, error) {
	if m.alreadyOwned[achievementID] {
		return false, nil
	}
	m.unlocked = append(m.unlocked, achievementID)
	return true, nil
}

func (m *mockAchievementRepository) CountUnlockedByUser(ctx context.Context, userID int) (int, error) {
	return m.unlockedCount, m.err
}

// mockSessionRepository is a mock implementation of SessionRepository
type mockSessionRepository struct {
	session      *models.LearningSession
	days         []time.Time
	err          error
	heartbeatErr error
	endErr       error
	staleClosed  int
	heartbeats   []bool
}

func (m *mockSessionRepository) Create(ctx context.Context, userID int) (*models.LearningSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockSessionRepository) Heartbeat(ctx context.Context, sessionID, userID int, lessonViewed bool) error {
	if m.heartbeatErr != nil {
		return m.heartbeatErr
	}
	m.heartbeats = append(m.heartbeats, lessonViewed)
	return nil
}

func (m *mockSessionRepository) End(ctx context.Context, sessionID, userID int) error {
	return m.endErr
}

func (m *mockSessionRepository) CloseStale(ctx context.Context, cutoff time.Time) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.staleClosed, nil
}

func (m *mockSessionRepository) DistinctDays(ctx context.Context, userID int, since time.Time) ([]time.Time, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.days, nil
}

// mockSearchRepository is a mock implementation of SearchRepository
type mockSearchRepository struct {
	modules []models.ModuleListItem
	lessons []models.LessonListItem
	err     error
}

func (m *mockSearchRepository) SearchModules(ctx context.Context, q string, limit int) ([]models.ModuleListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.modules, nil
}

func (m *mockSearchRepository) SearchLessons(ctx context.Context, q string, limit int) ([]models.LessonListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessons, nil
}

// mockRecommendationCache is a mock implementation of RecommendationCache
type mockRecommendationCache struct {
	cached       []models.Recommendation
	hit          bool
	getErr       error
	setErr       error
	stored       []models.Recommendation
	invalidated  int
	setCallCount int
}

func (m *mockRecommendationCache) Get(ctx context.Context, userID int) ([]models.Recommendation, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if !m.hit {
		return nil, cache.ErrCacheMiss
	}
	return m.cached, nil
}

func (m *mockRecommendationCache) Set(ctx context.Context, userID int, recs []models.Recommendation) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.stored = recs
	m.setCallCount++
	return nil
}

func (m *mockRecommendationCache) Invalidate(ctx context.Context, userID int) error {
	m.invalidated++
	return nil
}
