package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"github.com/ventylab/backend/internal/models"
	"github.com/ventylab/backend/internal/taskqueue"
)

// AchievementEvaluator re-checks achievement rules for a user after a
// learning event
type AchievementEvaluator interface {
	// Method Evaluate checks the rules reacting to the event and unlocks any
	// newly earned achievements, returning them.
	Evaluate(ctx context.Context, userID int, eventType models.EventType) ([]models.Achievement, error)
}

// Worker handles background task processing
type Worker struct {
	logger       *zap.Logger
	evaluator    AchievementEvaluator
	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
	smtpFrom     string
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	evaluator AchievementEvaluator,
	smtpHost string,
	smtpPort int,
	smtpUsername, smtpPassword, smtpFrom string,
) *Worker {
	return &Worker{
		logger:       logger,
		evaluator:    evaluator,
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUsername: smtpUsername,
		smtpPassword: smtpPassword,
		smtpFrom:     smtpFrom,
	}
}

// HandleAchievementEvaluate handles achievement rule evaluation
func (w *Worker) HandleAchievementEvaluate(ctx context.Context, t *asynq.Task) error {
	var payload taskqueue.AchievementEvaluatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to parse achievement payload: %w", err)
	}

	unlocked, err := w.evaluator.Evaluate(ctx, payload.UserID, models.EventType(payload.EventType))
	if err != nil {
		return err
	}

	if len(unlocked) > 0 {
		w.logger.Info("Achievements unlocked",
			zap.Int("user_id", payload.UserID),
			zap.String("event_type", payload.EventType),
			zap.Int("count", len(unlocked)),
		)
	}
	return nil
}

// HandleEmailSend handles transactional email delivery
func (w *Worker) HandleEmailSend(ctx context.Context, t *asynq.Task) error {
	var payload taskqueue.EmailSendPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to parse email payload: %w", err)
	}

	subject, body, err := renderEmail(payload.Kind, payload.Variables)
	if err != nil {
		return err
	}

	if err := w.sendEmail(payload.Recipient, subject, body); err != nil {
		return err
	}

	w.logger.Info("Email sent",
		zap.String("kind", payload.Kind),
		zap.String("recipient", payload.Recipient),
	)
	return nil
}

// renderEmail builds the subject and HTML body for an email kind
func renderEmail(kind string, vars map[string]string) (string, string, error) {
	switch kind {
	case taskqueue.EmailWelcome:
		subject := "Welcome to VentyLab"
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>Welcome to VentyLab! Your account is ready. "+
				"Head to the module catalog to start your first lesson.</p>",
			vars["username"],
		)
		return subject, body, nil
	case taskqueue.EmailPasswordReset:
		subject := "Your VentyLab password was reset"
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>An administrator reset your password. "+
				"Your temporary password is: <b>%s</b></p>"+
				"<p>Please log in and change it as soon as possible.</p>",
			vars["username"], vars["password"],
		)
		return subject, body, nil
	case taskqueue.EmailAchievementUnlock:
		subject := fmt.Sprintf("Achievement unlocked: %s", vars["achievement"])
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>You just unlocked <b>%s</b>: %s. Keep it up!</p>",
			vars["username"], vars["achievement"], vars["description"],
		)
		return subject, body, nil
	default:
		return "", "", fmt.Errorf("unknown email kind: %s", kind)
	}
}

// sendEmail sends an email using gopkg.in/mail.v2
func (w *Worker) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", w.smtpFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(w.smtpHost, w.smtpPort, w.smtpUsername, w.smtpPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
