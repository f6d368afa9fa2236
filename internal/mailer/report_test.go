package mailer

import (
	"strings"
	"testing"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

func testParticipant() *model.Participant {
	return &model.Participant{
		ID:    1,
		Name:  "Simar",
		Email: "simar@example.com",
		Score: 2,
		Questions: []model.Question{
			{ID: 1, Category: "Math", Text: "2+2?", Options: []string{"3", "4"}, Answer: []string{"4"}},
			{ID: 2, Category: "Math", Text: "3*3?", Options: []string{"6", "9"}, Answer: []string{"9"}},
			{ID: 11, Category: "Reasoning", Text: "Next in 1,2,3?", Options: []string{"4", "5"}, Answer: []string{"4"}},
			{ID: 21, Category: "Verbal", Text: "Pick two vowels", Options: []string{"a", "b", "e"}, Answer: []string{"a", "e"}, Multiple: true},
		},
		Answers: map[string][]string{
			"1":  {"4"},
			"2":  {"6"},
			"21": {"a", "e"},
			// 11 unanswered
		},
		QuizSubmitted: true,
	}
}

func TestBuildResultsEmail(t *testing.T) {
	body, err := BuildResultsEmail(testParticipant())
	if err != nil {
		t.Fatalf("BuildResultsEmail: %v", err)
	}

	for _, want := range []string{
		"Simar",
		"2/4",
		"2+2?",
		"No answer",
		"a, e",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Categories appear once each, in serve order.
	mathAt := strings.Index(body, "Math")
	reasoningAt := strings.Index(body, "Reasoning")
	verbalAt := strings.Index(body, "Verbal")
	if mathAt < 0 || reasoningAt < 0 || verbalAt < 0 {
		t.Fatal("report missing a category heading")
	}
	if !(mathAt < reasoningAt && reasoningAt < verbalAt) {
		t.Error("categories out of serve order")
	}
}

func TestBuildResultsEmailPercentage(t *testing.T) {
	p := testParticipant()
	body, err := BuildResultsEmail(p)
	if err != nil {
		t.Fatalf("BuildResultsEmail: %v", err)
	}
	if !strings.Contains(body, "50.0") {
		t.Error("expected percentage 50.0 in report")
	}
}

func TestBuildResultsEmailNoQuestions(t *testing.T) {
	p := &model.Participant{ID: 7, Name: "Empty"}
	_, err := BuildResultsEmail(p)
	if err == nil {
		t.Fatal("expected error when no served questions")
	}
}
