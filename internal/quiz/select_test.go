package quiz

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

func testBank(perCategory int) map[string][]model.Question {
	bank := make(map[string][]model.Question)
	id := int64(1)
	for _, category := range model.Categories {
		for i := 0; i < perCategory; i++ {
			bank[category] = append(bank[category], model.Question{
				ID:       id,
				Category: category,
				Text:     "question",
				Options:  []string{"A", "B", "C", "D"},
				Answer:   []string{"A"},
			})
			id++
		}
	}
	return bank
}

func TestSelectCounts(t *testing.T) {
	bank := testBank(10)
	rng := rand.New(rand.NewPCG(1, 2))

	served := Select(bank, 5, rng)
	if len(served) != 15 {
		t.Fatalf("expected 15 questions, got %d", len(served))
	}

	perCategory := make(map[string]int)
	for _, q := range served {
		perCategory[q.Category]++
	}
	for _, c := range model.Categories {
		if perCategory[c] != 5 {
			t.Errorf("expected 5 %s questions, got %d", c, perCategory[c])
		}
	}
}

func TestSelectNoDuplicates(t *testing.T) {
	bank := testBank(10)
	rng := rand.New(rand.NewPCG(7, 7))

	served := Select(bank, 5, rng)
	seen := make(map[int64]bool)
	for _, q := range served {
		if seen[q.ID] {
			t.Errorf("question %d served twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectCategoryOrder(t *testing.T) {
	bank := testBank(10)
	rng := rand.New(rand.NewPCG(3, 4))

	served := Select(bank, 5, rng)

	// Category blocks must come out in the fixed serving order.
	var order []string
	for _, q := range served {
		if len(order) == 0 || order[len(order)-1] != q.Category {
			order = append(order, q.Category)
		}
	}
	if len(order) != len(model.Categories) {
		t.Fatalf("categories interleaved: %v", order)
	}
	for i, c := range model.Categories {
		if order[i] != c {
			t.Errorf("expected category %q at block %d, got %q", c, i, order[i])
		}
	}
}

func TestSelectShufflesOptionsNotContent(t *testing.T) {
	bank := testBank(3)
	rng := rand.New(rand.NewPCG(5, 6))

	served := Select(bank, 3, rng)
	for _, q := range served {
		if len(q.Options) != 4 {
			t.Fatalf("expected 4 options, got %d", len(q.Options))
		}
		// Same multiset of options regardless of order.
		got := append([]string(nil), q.Options...)
		sort.Strings(got)
		want := []string{"A", "B", "C", "D"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("options changed content: %v", q.Options)
			}
		}
	}

	// The bank itself must not be mutated by the option shuffle.
	for _, pool := range bank {
		for _, q := range pool {
			if q.Options[0] != "A" || q.Options[3] != "D" {
				t.Fatalf("bank options mutated: %v", q.Options)
			}
		}
	}
}

func TestSelectSmallPool(t *testing.T) {
	bank := map[string][]model.Question{
		"Math": {{ID: 1, Category: "Math", Options: []string{"A", "B"}, Answer: []string{"A"}}},
	}
	rng := rand.New(rand.NewPCG(9, 9))

	// Asking for more than the pool holds serves the whole pool.
	served := Select(bank, 5, rng)
	if len(served) != 1 {
		t.Fatalf("expected 1 question, got %d", len(served))
	}

	// An empty bank serves nothing.
	served = Select(map[string][]model.Question{}, 5, rng)
	if len(served) != 0 {
		t.Fatalf("expected no questions, got %d", len(served))
	}
}

func TestSelectDeterministicWithSeed(t *testing.T) {
	bank := testBank(10)

	a := Select(bank, 5, rand.New(rand.NewPCG(42, 42)))
	b := Select(bank, 5, rand.New(rand.NewPCG(42, 42)))
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("selection differs at %d: %d vs %d", i, a[i].ID, b[i].ID)
		}
		for j := range a[i].Options {
			if a[i].Options[j] != b[i].Options[j] {
				t.Fatalf("option order differs for question %d", a[i].ID)
			}
		}
	}
}
