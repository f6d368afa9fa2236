package quiz

import (
	"testing"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

func TestMatches(t *testing.T) {
	single := model.Question{
		ID: 1, Category: "Math",
		Options: []string{"3", "4", "5"},
		Answer:  []string{"4"},
	}
	multi := model.Question{
		ID: 2, Category: "Verbal",
		Options:  []string{"a", "b", "c", "d"},
		Answer:   []string{"a", "c"},
		Multiple: true,
	}
	multiOne := model.Question{
		ID: 3, Category: "Verbal",
		Options:  []string{"a", "b"},
		Answer:   []string{"a"},
		Multiple: true,
	}

	tests := []struct {
		name  string
		q     model.Question
		given []string
		want  bool
	}{
		{"single correct", single, []string{"4"}, true},
		{"single wrong", single, []string{"3"}, false},
		{"single no answer", single, nil, false},
		{"single empty slice", single, []string{}, false},
		{"single extra values ignored", single, []string{"4", "3"}, true},
		{"multi exact set", multi, []string{"a", "c"}, true},
		{"multi order irrelevant", multi, []string{"c", "a"}, true},
		{"multi missing one", multi, []string{"a"}, false},
		{"multi extra one", multi, []string{"a", "c", "d"}, false},
		{"multi wrong set", multi, []string{"b", "d"}, false},
		{"multi incomplete despite duplicates", multi, []string{"a", "a"}, false},
		{"multi duplicated correct value", multi, []string{"a", "c", "c"}, true},
		{"multi no answer", multi, nil, false},
		{"multi single duplicated given", multiOne, []string{"a", "a"}, true},
		{"multi single wrong", multiOne, []string{"b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.q, tt.given); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.given, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	served := []model.Question{
		{ID: 1, Category: "Math", Answer: []string{"4"}},
		{ID: 2, Category: "Math", Answer: []string{"72"}},
		{ID: 11, Category: "Reasoning", Answer: []string{"42"}},
		{ID: 21, Category: "Verbal", Answer: []string{"on"}},
	}
	answers := map[string][]string{
		"1":  {"4"},
		"2":  {"80"},
		"11": {"42"},
		// 21 unanswered
	}

	result := Score(served, answers)

	if result.Score != 2 {
		t.Errorf("expected score 2, got %d", result.Score)
	}
	if result.Total != 4 {
		t.Errorf("expected total 4, got %d", result.Total)
	}
	if result.CategoryScores["Math"] != 1 {
		t.Errorf("expected Math 1, got %d", result.CategoryScores["Math"])
	}
	if result.CategoryScores["Reasoning"] != 1 {
		t.Errorf("expected Reasoning 1, got %d", result.CategoryScores["Reasoning"])
	}
	// Verbal scored zero but still appears.
	if v, ok := result.CategoryScores["Verbal"]; !ok || v != 0 {
		t.Errorf("expected Verbal present with 0, got %d (present=%v)", v, ok)
	}

	// Category scores always sum to the total score.
	sum := 0
	for _, v := range result.CategoryScores {
		sum += v
	}
	if sum != result.Score {
		t.Errorf("category scores sum %d, want %d", sum, result.Score)
	}

	// Submitted answers are recorded per question, unanswered as empty.
	if got := result.Answers["2"]; len(got) != 1 || got[0] != "80" {
		t.Errorf("expected wrong answer recorded, got %v", got)
	}
	if got := result.Answers["21"]; len(got) != 0 {
		t.Errorf("expected no answer recorded for 21, got %v", got)
	}
}

func TestScoreEmptySubmission(t *testing.T) {
	served := []model.Question{
		{ID: 1, Category: "Math", Answer: []string{"4"}},
	}
	result := Score(served, nil)

	if result.Score != 0 {
		t.Errorf("expected score 0, got %d", result.Score)
	}
	if result.Total != 1 {
		t.Errorf("expected total 1, got %d", result.Total)
	}
	for _, c := range model.Categories {
		if v := result.CategoryScores[c]; v != 0 {
			t.Errorf("expected %s 0, got %d", c, v)
		}
	}
}

func TestScoreNoQuestions(t *testing.T) {
	result := Score(nil, map[string][]string{"1": {"4"}})
	if result.Score != 0 || result.Total != 0 {
		t.Errorf("expected 0/0, got %d/%d", result.Score, result.Total)
	}
	if len(result.Answers) != 0 {
		t.Errorf("expected no recorded answers, got %v", result.Answers)
	}
}
