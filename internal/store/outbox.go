package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

// EnqueueEmailNotification records a pending results-email for a participant.
// The row is picked up by the mail worker; the caller never waits on delivery.
func (s *Store) EnqueueEmailNotification(participantID int64, email string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO email_outbox (id, participant_id, email, status, attempt_count, next_attempt_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		id, participantID, email, model.NotificationPending, now, now, now,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ClaimDueNotifications returns pending notifications whose next attempt time
// has passed, oldest first.
func (s *Store) ClaimDueNotifications(limit int) ([]model.EmailNotification, error) {
	rows, err := s.db.Query(
		`SELECT id, participant_id, email, status, attempt_count, next_attempt_at, last_error, created_at, updated_at
		 FROM email_outbox
		 WHERE status = ? AND next_attempt_at <= ?
		 ORDER BY next_attempt_at
		 LIMIT ?`,
		model.NotificationPending, time.Now().UTC(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []model.EmailNotification
	for rows.Next() {
		var n model.EmailNotification
		if err := rows.Scan(&n.ID, &n.ParticipantID, &n.Email, &n.Status, &n.AttemptCount,
			&n.NextAttemptAt, &n.LastError, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationDelivered marks an outbox row as delivered.
func (s *Store) MarkNotificationDelivered(id string) error {
	_, err := s.db.Exec(
		`UPDATE email_outbox SET status = ?, updated_at = ? WHERE id = ?`,
		model.NotificationDelivered, time.Now().UTC(), id,
	)
	return err
}

// RescheduleNotification records a failed attempt. The row stays pending with
// its next attempt pushed out by delay until maxAttempts is reached, after
// which it is marked failed for good.
func (s *Store) RescheduleNotification(id string, sendErr string, delay time.Duration, maxAttempts int) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`UPDATE email_outbox
		 SET attempt_count = attempt_count + 1, next_attempt_at = ?, last_error = ?, updated_at = ?
		 WHERE id = ? AND attempt_count + 1 < ?`,
		now.Add(delay), sendErr, now, id, maxAttempts,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	_, err = s.db.Exec(
		`UPDATE email_outbox
		 SET status = ?, attempt_count = attempt_count + 1, last_error = ?, updated_at = ?
		 WHERE id = ?`,
		model.NotificationFailed, sendErr, now, id,
	)
	return err
}

// GetNotification returns an outbox row by ID, or nil if not found.
func (s *Store) GetNotification(id string) (*model.EmailNotification, error) {
	var n model.EmailNotification
	err := s.db.QueryRow(
		`SELECT id, participant_id, email, status, attempt_count, next_attempt_at, last_error, created_at, updated_at
		 FROM email_outbox WHERE id = ?`, id,
	).Scan(&n.ID, &n.ParticipantID, &n.Email, &n.Status, &n.AttemptCount,
		&n.NextAttemptAt, &n.LastError, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
