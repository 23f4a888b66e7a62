// Package sampler draws fixed-size, uniformly-random card sets from a deck
// without allocating, using reservoir sampling (Algorithm R).
package sampler

import (
	"fmt"
	"math/rand/v2"

	"github.com/lox/discarder/internal/deck"
)

// Draw fills out with len(out) cards drawn uniformly at random from
// source, without replacement, using Algorithm R. out must be no longer
// than source. The first len(out) cards of source seed the reservoir,
// and each subsequent card, at index i, replaces a reservoir slot with
// probability len(out)/(i+1); the result is order-independent of rng implementation
// beyond what Algorithm R itself requires.
//
// Draw panics if len(out) > len(source), since that is a precondition
// violation rather than a recoverable runtime condition: the caller has
// asked for more cards than the deck contains.
func Draw(rng *rand.Rand, source []deck.Card, out []deck.Card) {
	k := len(out)
	n := len(source)
	if k > n {
		panic(fmt.Sprintf("sampler: draw size %d exceeds deck size %d", k, n))
	}

	for i := 0; i < k; i++ {
		out[i] = source[i]
	}

	for i := k; i < n; i++ {
		j := rng.IntN(i + 1)
		if j < k {
			out[j] = source[i]
		}
	}
}
