package ga

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/russross/timetabler/internal/cost"
)

func TestPopulationHeapOrdersByCostThenTiebreak(t *testing.T) {
	pop := population{
		{Breakdown: cost.Breakdown{Total: 50}, TiebreakID: 2},
		{Breakdown: cost.Breakdown{Total: 10}, TiebreakID: 1},
		{Breakdown: cost.Breakdown{Total: 10}, TiebreakID: 0},
	}
	heap.Init(&pop)

	first := heap.Pop(&pop).(*Individual)
	second := heap.Pop(&pop).(*Individual)
	third := heap.Pop(&pop).(*Individual)

	assert.Equal(t, 0, first.TiebreakID, "equal cost must be broken by the lower tiebreak id")
	assert.Equal(t, 1, second.TiebreakID)
	assert.Equal(t, 50, third.Breakdown.Total)
}

func TestPopTwoBestRemovesLowestCostPair(t *testing.T) {
	pop := population{
		{Breakdown: cost.Breakdown{Total: 30}, TiebreakID: 0},
		{Breakdown: cost.Breakdown{Total: 5}, TiebreakID: 1},
		{Breakdown: cost.Breakdown{Total: 15}, TiebreakID: 2},
	}
	heap.Init(&pop)

	first, second := popTwoBest(&pop)
	assert.Equal(t, 5, first.Breakdown.Total)
	assert.Equal(t, 15, second.Breakdown.Total)
	assert.Len(t, pop, 1)
}
