package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/store"
)

type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newWorkerFixture(t *testing.T, sender Sender) (*Worker, *store.Store) {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewWorker(s, sender, time.Second, 3), s
}

func submittedParticipant(t *testing.T, s *store.Store, email string) int64 {
	t.Helper()
	id, err := s.CreateParticipant(model.Participant{
		Name: "Worker Test", Email: email, Branch: "CSE", Year: 2,
	})
	if err != nil {
		t.Fatalf("CreateParticipant: %v", err)
	}
	served := []model.Question{
		{ID: 1, Category: "Math", Text: "2+2?", Options: []string{"3", "4"}, Answer: []string{"4"}},
	}
	if err := s.SaveServedQuestions(id, served); err != nil {
		t.Fatalf("SaveServedQuestions: %v", err)
	}
	result := model.QuizResult{
		Score: 1, Total: 1,
		Answers:        map[string][]string{"1": {"4"}},
		CategoryScores: map[string]int{"Math": 1, "Reasoning": 0, "Verbal": 0},
	}
	if _, err := s.MarkQuizSubmitted(id, result); err != nil {
		t.Fatalf("MarkQuizSubmitted: %v", err)
	}
	return id
}

func TestDrainOnceDelivers(t *testing.T) {
	sender := &fakeSender{}
	w, s := newWorkerFixture(t, sender)
	pid := submittedParticipant(t, s, "deliver@example.com")

	nid, err := s.EnqueueEmailNotification(pid, "deliver@example.com")
	if err != nil {
		t.Fatalf("EnqueueEmailNotification: %v", err)
	}

	w.DrainOnce(context.Background())

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 mail sent, got %d", len(sender.sent))
	}
	m := sender.sent[0]
	if m.to != "deliver@example.com" {
		t.Errorf("expected recipient deliver@example.com, got %q", m.to)
	}
	if m.subject != Subject {
		t.Errorf("unexpected subject %q", m.subject)
	}
	if m.body == "" {
		t.Error("expected non-empty body")
	}

	n, _ := s.GetNotification(nid)
	if n.Status != model.NotificationDelivered {
		t.Errorf("expected delivered, got %q", n.Status)
	}

	// A second drain sends nothing new.
	w.DrainOnce(context.Background())
	if len(sender.sent) != 1 {
		t.Errorf("delivered notification sent again: %d mails", len(sender.sent))
	}
}

func TestDrainOnceReschedulesOnSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	w, s := newWorkerFixture(t, sender)
	pid := submittedParticipant(t, s, "fail@example.com")

	nid, err := s.EnqueueEmailNotification(pid, "fail@example.com")
	if err != nil {
		t.Fatalf("EnqueueEmailNotification: %v", err)
	}

	w.DrainOnce(context.Background())

	n, _ := s.GetNotification(nid)
	if n.Status != model.NotificationPending {
		t.Errorf("expected pending after failure, got %q", n.Status)
	}
	if n.AttemptCount != 1 {
		t.Errorf("expected 1 attempt, got %d", n.AttemptCount)
	}
	if n.LastError != "connection refused" {
		t.Errorf("expected last error recorded, got %q", n.LastError)
	}
	if !n.NextAttemptAt.After(time.Now().UTC()) {
		t.Errorf("expected future next attempt, got %v", n.NextAttemptAt)
	}
}

func TestDrainOnceUnsubmittedParticipant(t *testing.T) {
	sender := &fakeSender{}
	w, s := newWorkerFixture(t, sender)

	pid, err := s.CreateParticipant(model.Participant{
		Name: "Not Done", Email: "notdone@example.com", Branch: "CSE", Year: 2,
	})
	if err != nil {
		t.Fatalf("CreateParticipant: %v", err)
	}
	nid, err := s.EnqueueEmailNotification(pid, "notdone@example.com")
	if err != nil {
		t.Fatalf("EnqueueEmailNotification: %v", err)
	}

	w.DrainOnce(context.Background())

	if len(sender.sent) != 0 {
		t.Errorf("expected no mail for unsubmitted participant, got %d", len(sender.sent))
	}
	n, _ := s.GetNotification(nid)
	if n.Status != model.NotificationPending || n.AttemptCount != 1 {
		t.Errorf("expected rescheduled pending, got %q/%d", n.Status, n.AttemptCount)
	}
}

func TestBackoffDoubles(t *testing.T) {
	w := &Worker{}
	if w.backoff(0) != time.Minute {
		t.Errorf("expected 1m for first retry, got %v", w.backoff(0))
	}
	if w.backoff(1) != 2*time.Minute {
		t.Errorf("expected 2m, got %v", w.backoff(1))
	}
	if w.backoff(3) != 8*time.Minute {
		t.Errorf("expected 8m, got %v", w.backoff(3))
	}
}
