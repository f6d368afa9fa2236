// Package quiz implements question selection and answer scoring.
package quiz

import (
	"math/rand/v2"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

// Select draws perCategory questions from each category of the bank, in the
// fixed category order, without replacement. Each selected question's options
// are shuffled so every participant sees a distinct option order; category
// blocks themselves are never shuffled. The rand source is injectable so
// selection is reproducible in tests; pass nil to use the global source.
func Select(bank map[string][]model.Question, perCategory int, rng *rand.Rand) []model.Question {
	shuffle := rand.Shuffle
	intN := rand.IntN
	if rng != nil {
		shuffle = rng.Shuffle
		intN = rng.IntN
	}

	var served []model.Question
	for _, category := range model.Categories {
		pool := bank[category]
		n := perCategory
		if n > len(pool) {
			n = len(pool)
		}

		// Sample without replacement: shuffle a copy of the indexes and
		// take the first n.
		idx := make([]int, len(pool))
		for i := range idx {
			idx[i] = i
		}
		shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})

		for _, k := range idx[:n] {
			q := pool[k]
			q.Options = shuffleOptions(q.Options, intN)
			served = append(served, q)
		}
	}
	return served
}

func shuffleOptions(options []string, intN func(int) int) []string {
	out := make([]string, len(options))
	copy(out, options)
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
