// Package montecarlo implements a generic parallel work-distribution
// framework: partition an iteration budget across worker goroutines,
// aggregate partial results via channel message passing, and surface
// progress to the caller. It knows nothing about poker; the discarder
// package supplies the Output/Algorithm/Factory it runs.
package montecarlo

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// Output is a Monte Carlo accumulator: Merge must be commutative and
// associative, with the zero value of O acting as the identity element.
type Output[O any] interface {
	Merge(O) O
}

// Algorithm performs one Monte Carlo trial per Sample call, mutating its
// own internal RNG/state and updating out. A single Algorithm value is
// only ever driven from one goroutine.
type Algorithm[O any] interface {
	Sample(out *O)
}

// Factory builds a worker's Algorithm from a per-worker seed. Make is
// called once per worker, on the driver's goroutine, before that worker
// starts.
type Factory[A any] interface {
	Make(seed uint64) A
}

// Chunk is a worker's output between two progress reports: an
// accumulated Output plus the iteration count that produced it.
type Chunk[O Output[O]] struct {
	Output         O
	IterationsDone uint64
}

// Merge combines c and other; order does not matter since Output.Merge
// is required to be commutative and associative.
func (c Chunk[O]) Merge(other Chunk[O]) Chunk[O] {
	return Chunk[O]{
		Output:         c.Output.Merge(other.Output),
		IterationsDone: c.IterationsDone + other.IterationsDone,
	}
}

// Progress describes the state of a run as of the most recently merged
// chunk. Elapsed is measured against the Driver's clock, so mocked
// clocks in tests produce deterministic Elapsed values.
type Progress[O Output[O]] struct {
	FractionCompleted float64
	Elapsed           time.Duration
	Chunk             Chunk[O]
}

// Driver owns the worker-partitioning and aggregation policy. It is
// parameterized by the Output type workers accumulate into, the
// Algorithm type that performs trials, and the Factory that builds one
// Algorithm per worker.
type Driver[O Output[O], A Algorithm[O], Fa Factory[A]] struct {
	Threads   int
	ChunkSize int

	rng   *rand.Rand
	clock quartz.Clock
}

// New builds a Driver seeded from seed. threads and chunkSize must be
// positive; clock defaults to the real wall clock when nil, so tests can
// inject quartz.NewMock instead.
func New[O Output[O], A Algorithm[O], Fa Factory[A]](threads, chunkSize int, seed uint64, clock quartz.Clock) *Driver[O, A, Fa] {
	if threads <= 0 {
		panic("montecarlo: threads must be positive")
	}
	if chunkSize <= 0 {
		panic("montecarlo: chunkSize must be positive")
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Driver[O, A, Fa]{
		Threads:   threads,
		ChunkSize: chunkSize,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		clock:     clock,
	}
}

type workerMsg[O Output[O]] struct {
	chunk Chunk[O]
	done  bool
}

// Run partitions total iterations across d.Threads workers built from
// factory, drives them to completion, and returns the merged chunk.
// progress, if non-nil, is invoked on the driver's goroutine after every
// chunk merge. If ctx is cancelled before every worker reports done, Run
// logs a warning and returns the partially merged chunk rather than
// blocking forever — a transient aggregation error, not a fatal one.
func (d *Driver[O, A, Fa]) Run(ctx context.Context, factory Fa, total uint64, progress func(Progress[O])) Chunk[O] {
	startedAt := d.clock.Now()

	base := total / uint64(d.Threads)
	remainder := total % uint64(d.Threads)

	results := make(chan workerMsg[O], d.Threads)

	group, groupCtx := errgroup.WithContext(ctx)
	for worker := 0; worker < d.Threads; worker++ {
		iterations := base
		if uint64(worker) < remainder {
			iterations++
		}
		seed := d.rng.Uint64()
		algorithm := factory.Make(seed)

		group.Go(func() error {
			remaining := iterations
			for remaining > 0 {
				batch := uint64(d.ChunkSize)
				if batch > remaining {
					batch = remaining
				}
				var out O
				for i := uint64(0); i < batch; i++ {
					algorithm.Sample(&out)
				}
				select {
				case results <- workerMsg[O]{chunk: Chunk[O]{Output: out, IterationsDone: batch}}:
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
				remaining -= batch
			}
			select {
			case results <- workerMsg[O]{done: true}:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
			return nil
		})
	}

	go func() {
		_ = group.Wait()
		close(results)
	}()

	var global Chunk[O]
	initial := global.IterationsDone
	doneCount := 0

	for doneCount < d.Threads {
		select {
		case msg, ok := <-results:
			if !ok {
				log.Warn("montecarlo: result channel closed before all workers reported done", "doneWorkers", doneCount, "totalWorkers", d.Threads, "elapsed", d.clock.Now().Sub(startedAt))
				return global
			}
			if msg.done {
				doneCount++
				continue
			}
			global = global.Merge(msg.chunk)
			if progress != nil && total > initial {
				progress(Progress[O]{
					FractionCompleted: float64(global.IterationsDone-initial) / float64(total-initial),
					Elapsed:           d.clock.Now().Sub(startedAt),
					Chunk:             global,
				})
			}
		case <-ctx.Done():
			log.Warn("montecarlo: context cancelled before all workers reported done", "doneWorkers", doneCount, "totalWorkers", d.Threads, "elapsed", d.clock.Now().Sub(startedAt))
			return global
		}
	}

	return global
}
