package model

import (
	"context"
	"time"
)

// ApprovalStatus gates a participant's access to the quiz.
type ApprovalStatus string

const (
	// ApprovalPending means the profile is awaiting admin review.
	ApprovalPending ApprovalStatus = "pending"
	// ApprovalApproved means the participant may take the quiz.
	ApprovalApproved ApprovalStatus = "approved"
	// ApprovalRejected means the profile was rejected.
	ApprovalRejected ApprovalStatus = "rejected"
)

// Categories lists the question categories in the order they are served.
var Categories = []string{"Math", "Reasoning", "Verbal"}

// SubmitReason is the client-declared reason for a quiz submission.
// It only changes the user-facing message, never the scoring.
type SubmitReason string

const (
	SubmitManual       SubmitReason = "manual"
	SubmitTimeUp       SubmitReason = "time_up"
	SubmitBeforeUnload SubmitReason = "beforeunload"
	SubmitViolation    SubmitReason = "violation"
)

// Question is a single multiple-choice question from the bank.
// Answer holds one element for single-answer questions; Multiple marks
// questions graded by set equality over several correct options.
type Question struct {
	ID       int64    `json:"id"`
	Category string   `json:"category"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Answer   []string `json:"answer"`
	Multiple bool     `json:"multiple,omitempty"`
}

// Participant is one quiz-taking user record, keyed by email.
// Questions holds the exact served set, including per-participant option
// order, so results stay reproducible even if the bank changes later.
type Participant struct {
	ID             int64               `json:"id"`
	GoogleID       string              `json:"google_id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	ProfilePic     string              `json:"profile_pic"`
	URN            string              `json:"urn,omitempty"`
	CRN            string              `json:"crn,omitempty"`
	Branch         string              `json:"branch"`
	Year           int                 `json:"year"`
	ApprovalStatus ApprovalStatus      `json:"approval_status"`
	QuizSubmitted  bool                `json:"quiz_submitted"`
	Score          int                 `json:"score"`
	Answers        map[string][]string `json:"answers,omitempty"`
	Questions      []Question          `json:"questions,omitempty"`
	CategoryScores map[string]int      `json:"category_scores,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// QuizResult carries the outcome of scoring one submission.
type QuizResult struct {
	Score          int
	Total          int
	Answers        map[string][]string
	CategoryScores map[string]int
}

// Identity is what the OAuth provider reports about the caller.
type Identity struct {
	GoogleID string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}

// WebSession is one server-side session row, keyed by the cookie token.
type WebSession struct {
	Token     string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Flash is a one-shot user-visible message carried across a redirect.
type Flash struct {
	Message string
	Kind    string // success, info, warning, danger
}

// NotificationStatus is the lifecycle state of an outbox row.
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationFailed    NotificationStatus = "failed"
)

// EmailNotification is a results-email outbox row.
type EmailNotification struct {
	ID            string
	ParticipantID int64
	Email         string
	Status        NotificationStatus
	AttemptCount  int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuizConfig holds runtime quiz parameters set via CLI flags.
type QuizConfig struct {
	QuestionsPerCategory int  // questions drawn per category
	TimerSeconds         int  // countdown shown on the quiz page
	SecureCookies        bool // Set Secure flag on cookies (disable for local dev)
}

// QuestionImport is used for loading questions from JSON bank files.
type QuestionImport struct {
	Category string   `json:"category"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Answer   []string `json:"answer"`
	Multiple bool     `json:"multiple,omitempty"`
}

type identityCtxKey struct{}

// ContextWithIdentity stores the authenticated identity in the request context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext retrieves the authenticated identity from context, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return id
}

type sessionTokenCtxKey struct{}

// ContextWithSessionToken stores the session cookie token in context.
func ContextWithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenCtxKey{}, token)
}

// SessionTokenFromContext retrieves the session token from context.
func SessionTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(sessionTokenCtxKey{}).(string)
	return t
}
