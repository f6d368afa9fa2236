package quiz

import (
	"strconv"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

// Matches reports whether the submitted answers satisfy the question.
// Single-answer questions require an exact string match on the first
// submitted value; multi-answer questions require equality of the submitted
// and correct values as sets, so duplicated values never change the outcome.
func Matches(q model.Question, given []string) bool {
	if q.Multiple {
		return setEqual(given, q.Answer)
	}
	return len(given) > 0 && len(q.Answer) > 0 && given[0] == q.Answer[0]
}

// Score grades a submission against the exact question set that was served.
// Answers are keyed by the question ID rendered as a decimal string, matching
// the form field names. Every known category appears in CategoryScores even
// when it scored zero.
func Score(served []model.Question, answers map[string][]string) model.QuizResult {
	categoryScores := make(map[string]int, len(model.Categories))
	for _, c := range model.Categories {
		categoryScores[c] = 0
	}

	result := model.QuizResult{
		Total:   len(served),
		Answers: make(map[string][]string, len(served)),
	}
	for _, q := range served {
		key := strconv.FormatInt(q.ID, 10)
		given := answers[key]
		result.Answers[key] = given
		if Matches(q, given) {
			result.Score++
			categoryScores[q.Category]++
		}
	}
	result.CategoryScores = categoryScores
	return result
}

func setEqual(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}
