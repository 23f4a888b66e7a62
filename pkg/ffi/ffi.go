// Package ffi is the narrow, C-ABI-compatible boundary between the
// discarder engine and a host embedder. It preserves the structural
// layout of the exchanged types and the entry-point contract described
// for external callers; everything else in this module is free to
// change shape without breaking callers that only depend on this
// package.
//
// This is the one place in the module where precondition violations
// (null pointers where non-null is required) are checked explicitly and
// turned into a panic, matching the "fatal abort" contract: a host
// embedder that violates these preconditions has a bug, and there is no
// safe way to continue.
package ffi

import (
	"context"

	"github.com/lox/discarder/internal/deck"
	"github.com/lox/discarder/internal/discarder"
	"github.com/lox/discarder/internal/tally"
)

// CRank mirrors the C-ABI CRank { u8 value } layout.
type CRank struct {
	Value uint8
}

// CSuit mirrors the C-ABI CSuit { u8 value } layout.
type CSuit struct {
	Value uint8
}

// CCard mirrors the C-ABI CCard { CRank rank; CSuit suit } layout.
type CCard struct {
	Rank CRank
	Suit CSuit
}

// CPokerHandsCount mirrors the C-ABI CPokerHandsCount { i64 counts[10] }
// layout. Ordering follows the HighCard..RoyalFlush category contract.
type CPokerHandsCount struct {
	Counts [10]int64
}

func toCard(c CCard) deck.Card {
	return deck.NewCard(deck.Rank(c.Rank.Value), deck.Suit(c.Suit.Value))
}

func fromTally(t tally.Tally) CPokerHandsCount {
	var out CPokerHandsCount
	t.CopyTo(out.Counts[:])
	return out
}

// ProgressHandler is invoked from the driver goroutine whenever a chunk
// is merged. Implementations must not retain counts past the call and
// must be safe to call repeatedly from the same goroutine.
type ProgressHandler func(ctx any, counts *CPokerHandsCount, iterationsDone uint64, fractionCompleted float64)

// Handle is the opaque object returned by New and consumed by Run and
// Free. The zero Handle is not valid.
type Handle struct {
	d *discarder.Discarder
}

// New copies deck into internal storage and returns a handle configured
// for hands of size handSize, seeded with seed. A nil deckCards is
// equivalent to an empty deck, matching the "deck_ptr may be null iff
// deck_size == 0" contract (a Go slice couples pointer and length, so
// that precondition cannot be violated on this side of the boundary).
func New(deckCards []CCard, handSize int, seed uint64) *Handle {
	cards := make([]deck.Card, len(deckCards))
	for i, c := range deckCards {
		cards[i] = toCard(c)
	}

	return &Handle{
		d: &discarder.Discarder{
			Deck:        deck.New(cards),
			MaxHandSize: handSize,
			Seed:        seed,
		},
	}
}

// Free releases h. It is idempotent on a nil handle.
func Free(h *Handle) {
	if h == nil {
		return
	}
	h.d = nil
}

// Run completes hand to the handle's configured hand size and writes the
// resulting tally into outCounts, invoking progressHandler (if non-nil)
// whenever a chunk is merged. It returns the number of iterations
// actually performed.
//
// Run panics if h is nil or outCounts is nil, matching the fatal-abort
// contract for precondition violations at this boundary.
func Run(ctx context.Context, h *Handle, hand []CCard, maxIterations uint64, outCounts *CPokerHandsCount, progressHandler ProgressHandler, progressCtx any) uint64 {
	if h == nil || h.d == nil {
		panic("ffi: Run: handle is nil")
	}
	if outCounts == nil {
		panic("ffi: Run: outCounts is nil")
	}
	cards := make([]deck.Card, len(hand))
	for i, c := range hand {
		cards[i] = toCard(c)
	}

	var progress func(discarder.Progress)
	if progressHandler != nil {
		progress = func(p discarder.Progress) {
			counts := fromTally(p.Chunk.Tally)
			progressHandler(progressCtx, &counts, p.Chunk.IterationsDone, p.FractionCompleted)
		}
	}

	chunk := h.d.Run(ctx, cards, maxIterations, progress)
	*outCounts = fromTally(chunk.Tally)
	return chunk.IterationsDone
}
