// Package conflict builds the class-conflict graph: which pairs of
// classes cannot share a time slot because at least one student is
// enrolled in both.
package conflict

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/russross/timetabler/internal/apperr"
	"github.com/russross/timetabler/internal/catalog"
)

// Result is the output of Build: the conflict set for each class and
// each class's realized enrollment.
type Result struct {
	// Conflicts[c] lists the classes sharing at least one student with
	// c, sorted ascending by neighbor count (least-constrained first)
	// per the distilled spec's return-order requirement.
	Conflicts  map[uuid.UUID][]uuid.UUID
	Enrollment map[uuid.UUID]int
}

// Analyzer produces and caches conflict Results for a catalog snapshot.
type Analyzer struct {
	cache Cache

	// OnHit and OnMiss, when set, are called after every Build so a
	// caller (internal/metrics) can track cache effectiveness without
	// this package depending on Prometheus.
	OnHit  func()
	OnMiss func()
}

// Cache is the pluggable backing store for Analyzer's per-catalog
// memoization. A Redis-backed implementation lives in
// internal/conflict/rediscache.go and treats any Redis error as a cache
// miss, so an unreachable Redis means a recompute rather than a failed
// scheduling run; NewAnalyzer falls back to an in-process map if no
// cache is supplied.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool)
	Set(ctx context.Context, key string, result *Result)
}

func NewAnalyzer(cache Cache) *Analyzer {
	if cache == nil {
		cache = newMemCache()
	}
	return &Analyzer{cache: cache}
}

// Build returns the conflict graph for snap, using the cache when the
// catalog's content hash has been seen before.
func (a *Analyzer) Build(ctx context.Context, snap *catalog.Snapshot) (*Result, error) {
	key := cacheKey(snap.Hash)
	if cached, ok := a.cache.Get(ctx, key); ok {
		if a.OnHit != nil {
			a.OnHit()
		}
		return cached, nil
	}
	if a.OnMiss != nil {
		a.OnMiss()
	}

	result, err := build(snap)
	if err != nil {
		return nil, err
	}
	a.cache.Set(ctx, key, result)
	return result, nil
}

// Invalidate drops the cached result for snap; callers invoke this
// after any catalog write (ResetSchedule, Persist).
func (a *Analyzer) Invalidate(ctx context.Context, snap *catalog.Snapshot) {
	a.cache.Set(ctx, cacheKey(snap.Hash), nil)
}

func cacheKey(hash uint64) string {
	return fmt.Sprintf("timetabler:conflicts:%x", hash)
}

// build runs the virtual-student greedy fill: for every study plan,
// instantiate its followers as virtual students, and for every required
// subject, fill its classes (in stable order) up to remaining capacity.
// Two classes conflict if any virtual student landed in both.
func build(snap *catalog.Snapshot) (*Result, error) {
	// studentClasses[studentKey] -> classes that student is enrolled in.
	studentClasses := make(map[int64][]uuid.UUID)
	enrollment := make(map[uuid.UUID]int, len(snap.Classes))
	remaining := make(map[uuid.UUID]int, len(snap.Classes))
	for _, c := range snap.Classes {
		remaining[c.ID] = c.Capacity
	}

	for _, plan := range snap.StudyPlans {
		for _, subjectID := range plan.SubjectIDs {
			subj := snap.Subjects[subjectID]
			classes := snap.SubjectClasses(subjectID)
			if len(classes) == 0 {
				return nil, apperr.Unschedulable(subj.Name)
			}

			// Every student in this plan takes this subject; track
			// which virtual students (by stable global key) belong to
			// this plan, and place each of them into a class.
			for s := 0; s < plan.Followers; s++ {
				placed := false
				for _, class := range classes {
					if remaining[class.ID] > 0 {
						remaining[class.ID]--
						enrollment[class.ID]++
						studentKey := planStudentIndex(plan, s)
						studentClasses[studentKey] = append(studentClasses[studentKey], class.ID)
						placed = true
						break
					}
				}
				if !placed {
					return nil, apperr.Unschedulable(subj.Name)
				}
			}
		}
	}

	conflictSet := make(map[uuid.UUID]map[uuid.UUID]bool, len(snap.Classes))
	for _, c := range snap.Classes {
		conflictSet[c.ID] = map[uuid.UUID]bool{}
	}
	for _, classes := range studentClasses {
		for i := 0; i < len(classes); i++ {
			for j := i + 1; j < len(classes); j++ {
				a, b := classes[i], classes[j]
				if a == b {
					continue
				}
				conflictSet[a][b] = true
				conflictSet[b][a] = true
			}
		}
	}

	conflicts := make(map[uuid.UUID][]uuid.UUID, len(conflictSet))
	for id, set := range conflictSet {
		list := make([]uuid.UUID, 0, len(set))
		for other := range set {
			list = append(list, other)
		}
		sort.Slice(list, func(i, j int) bool {
			ci, cj := len(conflictSet[list[i]]), len(conflictSet[list[j]])
			if ci != cj {
				return ci < cj
			}
			return list[i].String() < list[j].String()
		})
		conflicts[id] = list
	}

	for _, c := range snap.Classes {
		if _, ok := enrollment[c.ID]; !ok {
			enrollment[c.ID] = 0
		}
	}

	return &Result{Conflicts: conflicts, Enrollment: enrollment}, nil
}

// OrderedClasses returns every class with a conflict entry, ascending
// by neighbor count (least-constrained first), the order the GA's
// initial population generator consumes classes in for stability.
func (r *Result) OrderedClasses() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(r.Conflicts))
	for id := range r.Conflicts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := len(r.Conflicts[out[i]]), len(r.Conflicts[out[j]])
		if ci != cj {
			return ci < cj
		}
		return out[i].String() < out[j].String()
	})
	return out
}

// planStudentIndex gives each (plan, follower) pair a unique, stable
// key so the same virtual student is tracked across every subject
// required by their plan.
func planStudentIndex(plan *catalog.StudyPlan, follower int) int64 {
	return int64(plan.ID)<<32 | int64(follower)
}
