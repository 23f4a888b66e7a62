package discarder

import (
	"context"
	"math"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/discarder/internal/cardtext"
	"github.com/lox/discarder/internal/deck"
	"github.com/lox/discarder/internal/tally"
)

func mustHand(t *testing.T, s string) []deck.Card {
	t.Helper()
	hand, err := cardtext.ParseHand(s)
	if err != nil {
		t.Fatalf("parsing hand %q: %v", s, err)
	}
	return hand
}

// Enumeration-path scenarios are combinatorially exact and independent
// of RNG family, so their tallies are asserted bit-for-bit against the
// reference implementation.
func TestRunEnumerationExact(t *testing.T) {
	tests := []struct {
		name           string
		hand           string
		handSize       int
		maxIterations  uint64
		wantIterations uint64
		wantTally      tally.Tally
	}{
		{
			name:           "hand already complete, no draws",
			hand:           "AS AS AS AS AS AS AS AS",
			handSize:       8,
			maxIterations:  10_000,
			wantIterations: 1,
			wantTally:      tally.Tally{1, 1, 1, 1, 0, 1, 1, 1, 0, 0},
		},
		{
			name:           "hand already longer than target size",
			hand:           "AS AS AS AS AS AS AS AS AS AS AS AS",
			handSize:       8,
			maxIterations:  10_000,
			wantIterations: 1,
			wantTally:      tally.Tally{1, 1, 1, 1, 0, 1, 1, 1, 0, 0},
		},
		{
			name:           "one card to draw enumerates every deck card",
			hand:           "2S 3S 4S 5S 6S 7S 8S",
			handSize:       8,
			maxIterations:  10_000,
			wantIterations: 52,
			wantTally:      tally.Tally{52, 28, 0, 0, 52, 52, 0, 0, 52, 0},
		},
		{
			name:           "three cards to draw enumerates C(52,3) completions",
			hand:           "AS KH 5S TC 6D",
			handSize:       8,
			maxIterations:  30_000,
			wantIterations: 22_100,
			wantTally:      tally.Tally{22100, 18516, 7220, 1492, 1008, 286, 480, 20, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Discarder{
				Deck:        deck.NewStandardDeck(),
				MaxHandSize: tt.handSize,
				Seed:        43,
			}
			chunk := d.Run(context.Background(), mustHand(t, tt.hand), tt.maxIterations, nil)

			require.Equal(t, tt.wantIterations, chunk.IterationsDone)
			require.Equal(t, tt.wantTally, chunk.Tally)
		})
	}
}

// Monte Carlo scenarios depend on the exact RNG family; this module uses
// math/rand/v2's PCG rather than the reference's PCG64, so exact tallies
// are not reproducible across implementations. These assertions check
// statistical closeness to the reference tallies instead, per the spec's
// own caveat that an implementation using a different RNG family must do
// so rather than assert equality.
func TestRunMonteCarloStatisticallyClose(t *testing.T) {
	tests := []struct {
		name          string
		hand          string
		handSize      int
		maxIterations uint64
		referenceMean []float64 // reference category rates, as fractions of iterations
	}{
		{
			name:          "empty hand, full Monte Carlo draw",
			hand:          "",
			handSize:      8,
			maxIterations: 10_000,
			referenceMean: []float64{1.0, 0.8865, 0.4380, 0.1167, 0.1020, 0.0758, 0.0609, 0.0029, 0.0006, 0},
		},
		{
			name:          "open straight draw",
			hand:          "2S 3S 4S 5S",
			handSize:      8,
			maxIterations: 10_000,
			referenceMean: []float64{1.0, 0.8784, 0.4077, 0.1093, 0.5026, 0.6940, 0.0514, 0.0032, 0.1479, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Discarder{
				Deck:        deck.NewStandardDeck(),
				MaxHandSize: tt.handSize,
				Seed:        43,
			}
			chunk := d.Run(context.Background(), mustHand(t, tt.hand), tt.maxIterations, nil)

			if chunk.IterationsDone != tt.maxIterations {
				t.Fatalf("iterations = %d, want %d", chunk.IterationsDone, tt.maxIterations)
			}

			for c := tally.HighCard; c <= tally.RoyalFlush; c++ {
				got := float64(chunk.Tally[c]) / float64(chunk.IterationsDone)
				want := tt.referenceMean[c]
				// Loose bound: this is a different RNG family from the
				// reference, so we check the estimate lands in a
				// generous neighborhood of the known-good rate rather
				// than matching bit-for-bit.
				if math.Abs(got-want) > 0.05 {
					t.Errorf("category %v rate = %.4f, reference %.4f (tolerance 0.05)", c, got, want)
				}
			}
		})
	}
}

// When the deck holds fewer cards than the hand needs, the enumeration
// path degrades gracefully: the binomial "k > n" rule (see
// internal/binomial) routes these cases to enumeration rather than an
// unbounded Monte Carlo run, and the walk draws every card the deck
// actually has instead of panicking.
func TestRunDegradesGracefullyOnSmallDeck(t *testing.T) {
	tests := []struct {
		name           string
		deckCards      string
		hand           string
		handSize       int
		wantIterations uint64
		wantTally      tally.Tally
	}{
		{
			name:           "two-card deck, three cards needed",
			deckCards:      "2S 3S",
			hand:           "AS KH 3H TC 2D",
			handSize:       8,
			wantIterations: 1,
			wantTally:      tally.Tally{1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:           "empty deck, three cards needed",
			deckCards:      "",
			hand:           "AS KH 3H TC 2D",
			handSize:       8,
			wantIterations: 1,
			wantTally:      tally.Tally{1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:           "empty hand, empty deck",
			deckCards:      "",
			hand:           "",
			handSize:       8,
			wantIterations: 1,
			wantTally:      tally.Tally{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Discarder{
				Deck:        deck.New(mustHand(t, tt.deckCards)),
				MaxHandSize: tt.handSize,
				Seed:        43,
			}
			chunk := d.Run(context.Background(), mustHand(t, tt.hand), 10_000, nil)

			require.Equal(t, tt.wantIterations, chunk.IterationsDone)
			require.Equal(t, tt.wantTally, chunk.Tally)
		})
	}
}

// The reservoir sampler is the actual precondition-enforcement point for
// "deck too small": it panics if ever asked to draw more cards than the
// deck contains. In practice Run never reaches the Monte Carlo path with
// an undersized deck (the binomial "k > n" rule above always routes that
// case to enumeration instead), so this exercises the sampler directly.
func TestSamplerPanicsWhenDeckSmallerThanDraw(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when deck cannot satisfy the draw")
		}
	}()

	algo := discardFactory{
		deckCards:   mustHand(t, "2S 3S"),
		initial:     nil,
		maxHandSize: 5,
	}.Make(43)

	var out tally.Tally
	algo.Sample(&out)
}

func TestRunWithMockClockDriver(t *testing.T) {
	d := &Discarder{
		Deck:        deck.NewStandardDeck(),
		MaxHandSize: 8,
		Seed:        1,
		Threads:     2,
		ChunkSize:   100,
		Clock:       quartz.NewMock(t),
	}
	chunk := d.Run(context.Background(), nil, 1000, nil)
	if chunk.IterationsDone != 1000 {
		t.Fatalf("iterations = %d, want 1000", chunk.IterationsDone)
	}
}
