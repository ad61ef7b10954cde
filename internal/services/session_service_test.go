package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/apperror"
	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/repositories"
)

func newSessionService(sessionRepo *mockSessionRepository, enqueuer *mockEnqueuer) *sessionService {
	logger, _ := zap.NewDevelopment()
	return NewSessionService(sessionRepo, enqueuer, logger)
}

func TestSessionService_Start(t *testing.T) {
	t.Run("success triggers streak evaluation", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{session: &models.LearningSession{ID: 1, UserID: 1}}
		enqueuer := &mockEnqueuer{}
		svc := newSessionService(sessionRepo, enqueuer)

		session, err := svc.Start(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, 1, session.ID)
		assert.Equal(t, []string{string(models.EventSessionStreak)}, enqueuer.events)
	})

	t.Run("enqueue failure does not break the start", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{session: &models.LearningSession{ID: 1}}
		enqueuer := &mockEnqueuer{err: assert.AnError}
		svc := newSessionService(sessionRepo, enqueuer)

		_, err := svc.Start(context.Background(), 1)

		assert.NoError(t, err)
	})
}

func TestSessionService_Heartbeat(t *testing.T) {
	t.Run("without lesson", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{}
		svc := newSessionService(sessionRepo, &mockEnqueuer{})

		err := svc.Heartbeat(context.Background(), 1, &models.HeartbeatRequest{SessionID: 5})

		require.NoError(t, err)
		assert.Equal(t, []bool{false}, sessionRepo.heartbeats)
	})

	t.Run("with viewed lesson", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{}
		svc := newSessionService(sessionRepo, &mockEnqueuer{})

		err := svc.Heartbeat(context.Background(), 1, &models.HeartbeatRequest{SessionID: 5, LessonViewed: "lung-mechanics"})

		require.NoError(t, err)
		assert.Equal(t, []bool{true}, sessionRepo.heartbeats)
	})

	t.Run("missing session id", func(t *testing.T) {
		svc := newSessionService(&mockSessionRepository{}, &mockEnqueuer{})

		err := svc.Heartbeat(context.Background(), 1, &models.HeartbeatRequest{})

		require.Error(t, err)
		assert.Equal(t, 400, apperror.From(err).Status)
	})

	t.Run("ended session", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{heartbeatErr: repositories.ErrSessionNotFound}
		svc := newSessionService(sessionRepo, &mockEnqueuer{})

		err := svc.Heartbeat(context.Background(), 1, &models.HeartbeatRequest{SessionID: 5})

		require.Error(t, err)
		assert.Equal(t, 404, apperror.From(err).Status)
	})
}

func TestSessionService_End(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := newSessionService(&mockSessionRepository{}, &mockEnqueuer{})

		assert.NoError(t, svc.End(context.Background(), 1, 5))
	})

	t.Run("already ended", func(t *testing.T) {
		sessionRepo := &mockSessionRepository{endErr: repositories.ErrSessionNotFound}
		svc := newSessionService(sessionRepo, &mockEnqueuer{})

		err := svc.End(context.Background(), 1, 5)

		require.Error(t, err)
		assert.Equal(t, 404, apperror.From(err).Status)
	})
}

func TestSessionService_CloseStale(t *testing.T) {
	sessionRepo := &mockSessionRepository{staleClosed: 4}
	svc := newSessionService(sessionRepo, &mockEnqueuer{})

	closed, err := svc.CloseStale(context.Background(), 30*time.Minute)

	require.NoError(t, err)
	assert.Equal(t, 4, closed)
}
