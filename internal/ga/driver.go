package ga

import (
	"container/heap"
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/conflict"
	"github.com/russross/timetabler/internal/cost"
	"github.com/russross/timetabler/internal/timetable"
)

// Recorder observes GA progress; internal/metrics implements this to
// export Prometheus gauges without ga importing metrics' HTTP plumbing.
type Recorder interface {
	ObserveGeneration(generation, best, worst, populationSize int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(int, int, int, int) {}

// Run drives the generational search to completion (or early-stops at
// cost 0) and returns the best timetable found. Candidate generation
// and evaluation within a generation are parallelized across
// params.Workers goroutines, each with its own *rand.Rand stream seeded
// deterministically from params.Seed XORed with a value derived from the
// worker index, per the
// concurrency model in SPEC_FULL.md §5: same seed and params always
// reproduce the same sequence of populations for a fixed worker count.
func Run(ctx context.Context, snap *catalog.Snapshot, conflicts *conflict.Result, params Params, logger *zap.Logger, recorder Recorder) (*timetable.Timetable, cost.Breakdown, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	workers := params.Workers
	if workers < 1 {
		workers = 1
	}

	order := classOrder(conflicts)
	roomCache := buildRoomCache(snap)

	evaluate := func(tt *timetable.Timetable) cost.Breakdown {
		return cost.Evaluate(snap, conflicts, tt)
	}

	pop := make(population, 0, params.PopulationSize)

	initial := parallelBuild(params.PopulationSize, workers, params.Seed, func(idx int, rng *rand.Rand) *Individual {
		tt := randomCandidate(snap, order, roomCache, rng)
		return &Individual{Timetable: tt, Breakdown: evaluate(tt), TiebreakID: idx}
	})
	for _, ind := range initial {
		pop = append(pop, ind)
	}
	heap.Init(&pop)

	best := bestOf(pop)
	logger.Info("initial population ready", zap.Int("best_cost", best.Breakdown.Total), zap.Int("population_size", len(pop)))
	recorder.ObserveGeneration(0, best.Breakdown.Total, worstOf(pop).Breakdown.Total, len(pop))

	for gen := 1; gen <= params.Generations; gen++ {
		select {
		case <-ctx.Done():
			return best.Timetable, best.Breakdown, ctx.Err()
		default:
		}

		parent1, parent2 := popTwoBest(&pop)

		offspringCount := params.PopulationSize - 1
		if offspringCount < 0 {
			offspringCount = 0
		}
		children := parallelBuild(offspringCount, workers, params.Seed^int64(gen), func(idx int, rng *rand.Rand) *Individual {
			child := crossover(snap, parent1.Timetable, parent2.Timetable, rng)
			mutate(snap, child, roomCache, params.MutationChance, rng)
			return &Individual{Timetable: child, Breakdown: evaluate(child), TiebreakID: gen*1_000_000 + idx}
		})

		next := make(population, 0, params.PopulationSize)
		next = append(next, parent1) // elite, unchanged
		next = append(next, children...)
		heap.Init(&next)
		pop = next

		best = bestOf(pop)
		worst := worstOf(pop)
		logger.Info("generation complete",
			zap.Int("generation", gen),
			zap.Int("best_cost", best.Breakdown.Total),
			zap.Int("worst_cost", worst.Breakdown.Total),
		)
		recorder.ObserveGeneration(gen, best.Breakdown.Total, worst.Breakdown.Total, len(pop))

		if best.Breakdown.Total == 0 {
			logger.Info("early stop: cost reached zero", zap.Int("generation", gen))
			break
		}
	}

	return best.Timetable, best.Breakdown, nil
}

func bestOf(pop population) *Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if pop.Less2(ind, best) {
			best = ind
		}
	}
	return best
}

func worstOf(pop population) *Individual {
	worst := pop[0]
	for _, ind := range pop[1:] {
		if pop.Less2(worst, ind) {
			worst = ind
		}
	}
	return worst
}

// Less2 compares two individuals using the same ordering as the heap,
// without requiring them to be heap indices.
func (p population) Less2(a, b *Individual) bool {
	if a.Breakdown.Total != b.Breakdown.Total {
		return a.Breakdown.Total < b.Breakdown.Total
	}
	return a.TiebreakID < b.TiebreakID
}

// parallelBuild runs n independent build() calls across workers
// goroutines. Work is partitioned into fixed, contiguous blocks ahead
// of time (not pulled from a shared channel), so the number of calls
// each worker's *rand.Rand stream makes is a deterministic function of
// n and workers, not of goroutine scheduling: a fixed seed and worker
// count always reproduce the same population, per SPEC_FULL.md §5.
func parallelBuild(n, workers int, seed int64, build func(idx int, rng *rand.Rand) *Individual) []*Individual {
	if n <= 0 {
		return nil
	}
	if workers > n {
		workers = n
	}

	results := make([]*Individual, n)
	base := n / workers
	extra := n % workers

	var wg sync.WaitGroup
	start := 0
	for w := 0; w < workers; w++ {
		count := base
		if w < extra {
			count++
		}
		lo, hi := start, start+count
		start = hi
		if lo == hi {
			continue
		}
		wg.Add(1)
		go func(workerIdx, lo, hi int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed ^ int64(uint64(workerIdx)*0x9E3779B97F4A7C15)))
			for i := lo; i < hi; i++ {
				results[i] = build(i, rng)
			}
		}(w, lo, hi)
	}
	wg.Wait()
	return results
}
