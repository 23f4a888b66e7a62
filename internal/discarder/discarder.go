// Package discarder implements the draw-completion strategy selector: it
// decides, for a partial hand and a target size, whether to enumerate
// every completion exhaustively or estimate via Monte Carlo sampling, and
// drives whichever path applies.
package discarder

import (
	"context"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/discarder/internal/binomial"
	"github.com/lox/discarder/internal/classify"
	"github.com/lox/discarder/internal/deck"
	"github.com/lox/discarder/internal/montecarlo"
	"github.com/lox/discarder/internal/sampler"
	"github.com/lox/discarder/internal/tally"
)

// DefaultThreshold is the enumeration-vs-sampling cutoff in combinations.
// The spec calls this a tunable, not a contract; internal/config may
// override it.
const DefaultThreshold = 30_000

// DefaultMonteCarloChunkSize is the per-worker batch size between
// progress reports during Monte Carlo sampling.
const DefaultMonteCarloChunkSize = 1_000_000

// Discarder estimates, for a partial hand drawn from Deck, the
// probability that each poker hand category is realizable once the hand
// is completed to MaxHandSize cards.
type Discarder struct {
	Deck        deck.Deck
	MaxHandSize int
	Seed        uint64

	// Threshold is the combinations cutoff above which Run falls back to
	// Monte Carlo sampling instead of exhaustive enumeration. Zero means
	// DefaultThreshold.
	Threshold int

	// Threads and ChunkSize configure the Monte Carlo path. Zero means
	// runtime.NumCPU() and DefaultMonteCarloChunkSize respectively.
	Threads   int
	ChunkSize int

	// Clock is injected into the Monte Carlo driver so tests can supply
	// quartz.NewMock instead of real time. Nil means the real clock.
	Clock quartz.Clock
}

func (d *Discarder) threshold() int {
	if d.Threshold > 0 {
		return d.Threshold
	}
	return DefaultThreshold
}

func (d *Discarder) threads() int {
	if d.Threads > 0 {
		return d.Threads
	}
	return runtime.NumCPU()
}

func (d *Discarder) chunkSize() int {
	if d.ChunkSize > 0 {
		return d.ChunkSize
	}
	return DefaultMonteCarloChunkSize
}

// Progress reports a fraction-completed estimate and the
// partially-accumulated chunk during a Monte Carlo run. It is never
// invoked during exhaustive enumeration, since that path has no
// meaningful partial progress to report.
type Progress struct {
	FractionCompleted float64
	Elapsed           time.Duration
	Chunk             tally.Chunk
}

// Run completes hand to d.MaxHandSize cards, either by enumerating every
// possible completion exactly or by Monte Carlo sampling up to
// maxIterations completions, and returns the resulting tally together
// with the number of completions (enumeration) or trials (Monte Carlo)
// actually performed.
//
// Run does not itself check that the deck holds enough cards to reach
// MaxHandSize: the enumeration path degrades gracefully (drawing as many
// cards as the deck has, per the min(need, |Deck|) rule below), and the
// Monte Carlo path's reservoir sampler is the actual precondition
// enforcement point — it panics if ever asked to draw more cards than
// the deck contains.
func (d *Discarder) Run(ctx context.Context, hand []deck.Card, maxIterations uint64, progress func(Progress)) tally.Chunk {
	if len(hand) >= d.MaxHandSize {
		var t tally.Tally
		classify.Classify(hand, &t)
		return tally.Chunk{Tally: t, IterationsDone: 1}
	}

	need := d.MaxHandSize - len(hand)

	// combinations uses the raw (uncapped) need: binomial.C's k > n rule
	// returning 1 rather than 0 is what lets a deck smaller than need
	// still route to the (degenerate) enumeration path below instead of
	// an unbounded Monte Carlo run over an impossible draw.
	combinations, ok := binomial.C(len(d.Deck.Cards), need)
	if ok && combinations <= uint64(d.threshold()) {
		log.Debug("enumerating completions", "combinations", combinations, "threshold", d.threshold())
		return d.runEnumeration(hand, need)
	}
	log.Debug("falling back to monte carlo", "combinations", combinations, "fits", ok, "threshold", d.threshold())
	return d.runMonteCarlo(ctx, hand, maxIterations, progress)
}

// runEnumeration walks every size-k subset of the deck in place,
// classifying each completed hand, rather than materializing the full
// set of k-subsets up front. k is capped to the deck size, so a deck
// smaller than need draws every card it has exactly once.
func (d *Discarder) runEnumeration(hand []deck.Card, need int) tally.Chunk {
	k := need
	if k > len(d.Deck.Cards) {
		k = len(d.Deck.Cards)
	}

	scratch := make([]deck.Card, len(hand)+k)
	copy(scratch, hand)
	for i := len(hand); i < len(scratch); i++ {
		scratch[i] = deck.Invalid()
	}

	chosen := make([]int, k)
	var chunk tally.Chunk

	var walk func(start, slot int)
	walk = func(start, slot int) {
		if slot == k {
			for i, idx := range chosen {
				scratch[len(hand)+i] = d.Deck.Cards[idx]
			}
			var t tally.Tally
			classify.Classify(scratch, &t)
			chunk.Tally = chunk.Tally.Merge(t)
			chunk.IterationsDone++
			return
		}
		remainingSlots := k - slot
		for i := start; i <= len(d.Deck.Cards)-remainingSlots; i++ {
			chosen[slot] = i
			walk(i+1, slot+1)
		}
	}
	walk(0, 0)

	return chunk
}

// runMonteCarlo drives the generic Monte Carlo framework with a factory
// that builds one discardAlgorithm per worker.
func (d *Discarder) runMonteCarlo(ctx context.Context, hand []deck.Card, maxIterations uint64, progress func(Progress)) tally.Chunk {
	factory := discardFactory{
		deckCards:   d.Deck.Cards,
		initial:     hand,
		maxHandSize: d.MaxHandSize,
	}

	driver := montecarlo.New[tally.Tally, *discardAlgorithm, discardFactory](d.threads(), d.chunkSize(), d.Seed, d.Clock)

	var wrapped func(montecarlo.Progress[tally.Tally])
	if progress != nil {
		wrapped = func(p montecarlo.Progress[tally.Tally]) {
			progress(Progress{
				FractionCompleted: p.FractionCompleted,
				Elapsed:           p.Elapsed,
				Chunk:             tally.Chunk{Tally: p.Chunk.Output, IterationsDone: p.Chunk.IterationsDone},
			})
		}
	}

	result := driver.Run(ctx, factory, maxIterations, wrapped)
	return tally.Chunk{Tally: result.Output, IterationsDone: result.IterationsDone}
}

// discardFactory builds one discardAlgorithm per Monte Carlo worker.
type discardFactory struct {
	deckCards   []deck.Card
	initial     []deck.Card
	maxHandSize int
}

// Make implements montecarlo.Factory[*discardAlgorithm].
func (f discardFactory) Make(seed uint64) *discardAlgorithm {
	scratchSize := f.maxHandSize
	if len(f.initial) > scratchSize {
		scratchSize = len(f.initial)
	}
	scratch := make([]deck.Card, scratchSize)
	copy(scratch, f.initial)
	for i := len(f.initial); i < scratchSize; i++ {
		scratch[i] = deck.Invalid()
	}

	return &discardAlgorithm{
		deckCards:   f.deckCards,
		scratch:     scratch,
		drawStart:   len(f.initial),
		maxHandSize: f.maxHandSize,
		rng:         rand.New(rand.NewPCG(seed, seed^0x2545f4914f6cdd1d)),
	}
}

// discardAlgorithm performs one Monte Carlo trial: draw a completion
// into the scratch hand's tail, classify the full scratch hand, and
// merge the result into out.
type discardAlgorithm struct {
	deckCards   []deck.Card
	scratch     []deck.Card
	drawStart   int
	maxHandSize int
	rng         *rand.Rand
}

// Sample implements montecarlo.Algorithm[tally.Tally].
func (a *discardAlgorithm) Sample(out *tally.Tally) {
	sampler.Draw(a.rng, a.deckCards, a.scratch[a.drawStart:a.maxHandSize])

	var t tally.Tally
	classify.Classify(a.scratch, &t)
	*out = out.Merge(t)
}
