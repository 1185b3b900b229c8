package ga

import (
	"container/heap"

	"github.com/russross/timetabler/internal/cost"
	"github.com/russross/timetabler/internal/timetable"
)

// Individual is one candidate timetable plus its evaluated cost.
type Individual struct {
	Timetable *timetable.Timetable
	Breakdown cost.Breakdown
	// TiebreakID is a stable, deterministic identifier used only to
	// keep heap ordering total when two individuals have equal cost.
	TiebreakID int
}

// population is a min-heap of Individuals ordered by (cost, tiebreak).
type population []*Individual

func (p population) Len() int { return len(p) }
func (p population) Less(i, j int) bool {
	if p[i].Breakdown.Total != p[j].Breakdown.Total {
		return p[i].Breakdown.Total < p[j].Breakdown.Total
	}
	return p[i].TiebreakID < p[j].TiebreakID
}
func (p population) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p *population) Push(x interface{}) {
	*p = append(*p, x.(*Individual))
}
func (p *population) Pop() interface{} {
	old := *p
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*p = old[:n-1]
	return item
}

// popTwoBest removes and returns the two lowest-cost individuals.
func popTwoBest(p *population) (*Individual, *Individual) {
	first := heap.Pop(p).(*Individual)
	second := heap.Pop(p).(*Individual)
	return first, second
}
