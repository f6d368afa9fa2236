package main

import "testing"

func TestServeDefaults(t *testing.T) {
	cmd := serveCmd()

	// The shipped bank carries 10 questions per category and the quiz is
	// a 30-question paper; the defaults must serve all of it.
	n, err := cmd.Flags().GetInt("questions-per-category")
	if err != nil {
		t.Fatalf("questions-per-category flag: %v", err)
	}
	if n != 10 {
		t.Errorf("expected default 10 questions per category, got %d", n)
	}

	timer, err := cmd.Flags().GetInt("quiz-timer")
	if err != nil {
		t.Fatalf("quiz-timer flag: %v", err)
	}
	if timer != 1200 {
		t.Errorf("expected default 1200 second timer, got %d", timer)
	}

	banks, err := cmd.Flags().GetStringSlice("questions")
	if err != nil {
		t.Fatalf("questions flag: %v", err)
	}
	if len(banks) != 1 || banks[0] != "questions/aptitude_en.json" {
		t.Errorf("unexpected default bank paths: %v", banks)
	}
}
