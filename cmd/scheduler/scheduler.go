package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// sessionIdleTimeout is how long a session may go without a heartbeat
	// before the scheduler closes it
	sessionIdleTimeout = 30 * time.Minute
	// recentActivityWindow selects the users whose recommendations get
	// rebuilt each cycle
	recentActivityWindow = time.Hour
)

// SessionCleaner closes abandoned learning sessions
type SessionCleaner interface {
	// Method CloseStale closes sessions idle longer than the given duration.
	CloseStale(ctx context.Context, idle time.Duration) (int, error)
}

// TokenPurger removes expired refresh tokens
type TokenPurger interface {
	// Method DeleteExpired removes tokens created before the cutoff,
	// returning the count.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// RecommendationRebuilder recomputes and re-caches a user's recommendations
type RecommendationRebuilder interface {
	// Method Rebuild recomputes and re-caches the recommendations of a user.
	Rebuild(ctx context.Context, userID int) error
}

// ActiveUserSource lists users with recent session activity
type ActiveUserSource interface {
	// Method ActiveUserIDs retrieves the IDs of users active since the cutoff.
	ActiveUserIDs(ctx context.Context, since time.Time) ([]int, error)
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.Logger
	sessions      SessionCleaner
	tokens        TokenPurger
	recs          RecommendationRebuilder
	activeUsers   ActiveUserSource
	refreshExpiry time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	logger *zap.Logger,
	sessions SessionCleaner,
	tokens TokenPurger,
	recs RecommendationRebuilder,
	activeUsers ActiveUserSource,
	refreshExpiry time.Duration,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		logger:        logger,
		sessions:      sessions,
		tokens:        tokens,
		recs:          recs,
		activeUsers:   activeUsers,
		refreshExpiry: refreshExpiry,
	}
}

// Start registers the cron jobs and starts the scheduler
func (s *Scheduler) Start() error {
	// Close stale sessions every 5 minutes
	if _, err := s.cron.AddFunc("*/5 * * * *", s.closeStaleSessions); err != nil {
		return err
	}

	// Purge expired refresh tokens daily at 03:00
	if _, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens); err != nil {
		return err
	}

	// Rebuild recommendations for recently active users every 15 minutes
	if _, err := s.cron.AddFunc("*/15 * * * *", s.rebuildRecommendations); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// closeStaleSessions closes sessions without a recent heartbeat
func (s *Scheduler) closeStaleSessions() {
	ctx := context.Background()

	closed, err := s.sessions.CloseStale(ctx, sessionIdleTimeout)
	if err != nil {
		s.logger.Error("Failed to close stale sessions", zap.Error(err))
		return
	}

	if closed > 0 {
		s.logger.Info("Closed stale sessions", zap.Int("count", closed))
	}
}

// purgeExpiredTokens removes refresh tokens older than the configured expiry
func (s *Scheduler) purgeExpiredTokens() {
	ctx := context.Background()

	cutoff := time.Now().Add(-s.refreshExpiry)
	purged, err := s.tokens.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge expired tokens", zap.Error(err))
		return
	}

	if purged > 0 {
		s.logger.Info("Purged expired refresh tokens", zap.Int("count", purged))
	}
}

// rebuildRecommendations recomputes the cached recommendations of every user
// active within the recent window so their next visit is served warm
func (s *Scheduler) rebuildRecommendations() {
	ctx := context.Background()

	userIDs, err := s.activeUsers.ActiveUserIDs(ctx, time.Now().Add(-recentActivityWindow))
	if err != nil {
		s.logger.Error("Failed to list active users", zap.Error(err))
		return
	}

	rebuilt := 0
	for _, userID := range userIDs {
		if err := s.recs.Rebuild(ctx, userID); err != nil {
			s.logger.Error("Failed to rebuild recommendations", zap.Int("user_id", userID), zap.Error(err))
			continue
		}
		rebuilt++
	}

	if rebuilt > 0 {
		s.logger.Debug("Rebuilt recommendations", zap.Int("count", rebuilt))
	}
}
