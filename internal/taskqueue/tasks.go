// Package taskqueue defines the background task types exchanged between the
// API and the worker over asynq, and the client used to enqueue them.
package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task type names registered on the worker mux
const (
	TypeAchievementEvaluate = "achievement:evaluate"
	TypeEmailSend           = "email:send"
)

// Queue names with their worker priorities
const (
	QueueEvents = "events"
	QueueEmail  = "email"
)

// Email kinds understood by the worker
const (
	EmailWelcome           = "welcome"
	EmailPasswordReset     = "password_reset"
	EmailAchievementUnlock = "achievement_unlocked"
)

// AchievementEvaluatePayload asks the worker to re-check achievement rules
// for a user after a learning event
type AchievementEvaluatePayload struct {
	UserID    int    `json:"userId"`
	EventType string `json:"eventType"`
}

// EmailSendPayload asks the worker to deliver a transactional email
type EmailSendPayload struct {
	Kind      string            `json:"kind"`
	Recipient string            `json:"recipient"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Enqueuer publishes background tasks for the worker
type Enqueuer struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewEnqueuer creates an enqueuer over an asynq client
func NewEnqueuer(client *asynq.Client, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger,
	}
}

// EnqueueAchievementEvaluation queues an achievement rule evaluation
func (e *Enqueuer) EnqueueAchievementEvaluation(ctx context.Context, userID int, eventType string) error {
	payload, err := json.Marshal(AchievementEvaluatePayload{UserID: userID, EventType: eventType})
	if err != nil {
		return fmt.Errorf("failed to marshal achievement payload: %w", err)
	}

	task := asynq.NewTask(TypeAchievementEvaluate, payload, asynq.Queue(QueueEvents), asynq.MaxRetry(3))
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue achievement evaluation: %w", err)
	}

	e.logger.Debug("enqueued achievement evaluation",
		zap.Int("user_id", userID),
		zap.String("event_type", eventType),
	)
	return nil
}

// EnqueueEmail queues a transactional email
func (e *Enqueuer) EnqueueEmail(ctx context.Context, kind, recipient string, vars map[string]string) error {
	payload, err := json.Marshal(EmailSendPayload{Kind: kind, Recipient: recipient, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	task := asynq.NewTask(TypeEmailSend, payload, asynq.Queue(QueueEmail), asynq.MaxRetry(5))
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	e.logger.Debug("enqueued email",
		zap.String("kind", kind),
		zap.String("recipient", recipient),
	)
	return nil
}
