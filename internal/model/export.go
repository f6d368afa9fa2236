package model

import "time"

// QuizExport is the top-level JSON structure for results export.
type QuizExport struct {
	QuizID       string              `json:"quiz_id"`
	Name         string              `json:"name"`
	Date         string              `json:"date"`
	NumQuestions int                 `json:"num_questions"`
	Results      []ParticipantResult `json:"results"`
}

// ParticipantResult holds one participant's submission for export.
type ParticipantResult struct {
	GoogleID       string           `json:"google_id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Branch         string           `json:"branch"`
	Year           int              `json:"year"`
	URN            string           `json:"urn,omitempty"`
	CRN            string           `json:"crn,omitempty"`
	Score          int              `json:"score"`
	CategoryScores map[string]int   `json:"category_scores"`
	Questions      []QuestionResult `json:"questions"`
	SubmittedAt    time.Time        `json:"submitted_at"`
}

// QuestionResult holds per-question data for export.
type QuestionResult struct {
	ID       int64    `json:"id"`
	Category string   `json:"category"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Answer   []string `json:"answer"`
	Given    []string `json:"given"`
	Correct  bool     `json:"correct"`
}
