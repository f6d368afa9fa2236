package store

import (
	"fmt"
	"strconv"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/quiz"
)

// ExportAllResults builds export-ready records from all submitted participants,
// re-deriving per-question correctness from the persisted served set.
func (s *Store) ExportAllResults() ([]model.ParticipantResult, error) {
	participants, err := s.ListSubmittedByScore()
	if err != nil {
		return nil, fmt.Errorf("list submitted participants: %w", err)
	}

	var results []model.ParticipantResult
	for _, p := range participants {
		var questions []model.QuestionResult
		for _, q := range p.Questions {
			given := p.Answers[strconv.FormatInt(q.ID, 10)]
			questions = append(questions, model.QuestionResult{
				ID:       q.ID,
				Category: q.Category,
				Text:     q.Text,
				Options:  q.Options,
				Answer:   q.Answer,
				Given:    given,
				Correct:  quiz.Matches(q, given),
			})
		}

		results = append(results, model.ParticipantResult{
			GoogleID:       p.GoogleID,
			Name:           p.Name,
			Email:          p.Email,
			Branch:         p.Branch,
			Year:           p.Year,
			URN:            p.URN,
			CRN:            p.CRN,
			Score:          p.Score,
			CategoryScores: p.CategoryScores,
			Questions:      questions,
			SubmittedAt:    p.UpdatedAt,
		})
	}

	return results, nil
}
