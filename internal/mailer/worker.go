package mailer

import (
	"context"
	"log/slog"
	"time"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/store"
)

const (
	// Subject is the subject line of the results email.
	Subject = "Your Aptitude Quiz Results - ITian Club"

	claimBatchSize = 10
	backoffBase    = time.Minute
)

// Worker drains the email outbox: due pending notifications are sent through
// the Sender, delivered rows are marked, and failures are rescheduled with
// exponential backoff until the attempt limit. Delivery never surfaces to a
// participant; failures are only logged.
type Worker struct {
	store       *store.Store
	sender      Sender
	interval    time.Duration
	maxAttempts int
}

// NewWorker builds an outbox worker.
func NewWorker(s *store.Store, sender Sender, interval time.Duration, maxAttempts int) *Worker {
	return &Worker{store: s, sender: sender, interval: interval, maxAttempts: maxAttempts}
}

// Run drains the outbox on every tick until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.DrainOnce(ctx)
		}
	}
}

// DrainOnce processes one batch of due notifications.
func (w *Worker) DrainOnce(ctx context.Context) {
	notifications, err := w.store.ClaimDueNotifications(claimBatchSize)
	if err != nil {
		slog.Error("claim due notifications", "error", err)
		return
	}

	for _, n := range notifications {
		participant, err := w.store.GetParticipant(n.ParticipantID)
		if err != nil || participant == nil || !participant.QuizSubmitted {
			slog.Error("notification references unusable participant",
				"notification_id", n.ID, "participant_id", n.ParticipantID, "error", err)
			_ = w.store.RescheduleNotification(n.ID, "participant not available", w.backoff(n.AttemptCount), w.maxAttempts)
			continue
		}

		body, err := BuildResultsEmail(participant)
		if err != nil {
			slog.Error("build results email", "notification_id", n.ID, "error", err)
			_ = w.store.RescheduleNotification(n.ID, err.Error(), w.backoff(n.AttemptCount), w.maxAttempts)
			continue
		}

		if err := w.sender.Send(ctx, n.Email, Subject, body); err != nil {
			slog.Error("send results email", "notification_id", n.ID, "email", n.Email, "error", err)
			_ = w.store.RescheduleNotification(n.ID, err.Error(), w.backoff(n.AttemptCount), w.maxAttempts)
			continue
		}

		if err := w.store.MarkNotificationDelivered(n.ID); err != nil {
			slog.Error("mark notification delivered", "notification_id", n.ID, "error", err)
			continue
		}
		slog.Info("results email delivered", "notification_id", n.ID, "email", n.Email)
	}
}

// backoff doubles the delay with each failed attempt.
func (w *Worker) backoff(attempts int) time.Duration {
	return backoffBase << attempts
}
