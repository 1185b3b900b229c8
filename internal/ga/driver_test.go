package ga

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/conflict"
)

func smallSnapshot() (*catalog.Snapshot, *conflict.Result) {
	slots := make([]*catalog.TimeSlot, catalog.TotalSlots)
	byIndex := make([]*catalog.TimeSlot, catalog.TotalSlots)
	for day := 0; day < 3; day++ {
		for i := 0; i < catalog.SlotsPerDay; i++ {
			idx := day*catalog.SlotsPerDay + i
			s := &catalog.TimeSlot{ID: idx + 1, Day: catalog.Day(day), StartMinute: 420 + i*30, EndMinute: 420 + (i+1)*30, Index: idx}
			slots[idx] = s
			byIndex[idx] = s
		}
	}

	room := &catalog.Room{ID: 1, Name: "R1", Features: map[int]bool{}, HasDivision: true, DivisionID: 1}
	subjects := map[int]*catalog.Subject{
		1: {ID: 1, Name: "Algorithms", NumRequiredTimeslots: 2, RequiredFeatureIDs: map[int]bool{}, DivisionID: 1},
		2: {ID: 2, Name: "Databases", NumRequiredTimeslots: 2, RequiredFeatureIDs: map[int]bool{}, DivisionID: 1},
	}
	classA := &catalog.Class{ID: uuid.New(), SubjectID: 1, Capacity: 30, StartSlot: -1}
	classB := &catalog.Class{ID: uuid.New(), SubjectID: 2, Capacity: 30, StartSlot: -1}

	snap := &catalog.Snapshot{
		Rooms:       map[int]*catalog.Room{1: room},
		Subjects:    subjects,
		Teachers:    map[int]*catalog.Teacher{},
		Classes:     []*catalog.Class{classA, classB},
		ClassByID:   map[uuid.UUID]*catalog.Class{classA.ID: classA, classB.ID: classB},
		Slots:       slots,
		SlotByIndex: byIndex,
	}

	conflicts := &conflict.Result{
		Conflicts:  map[uuid.UUID][]uuid.UUID{classA.ID: {}, classB.ID: {}},
		Enrollment: map[uuid.UUID]int{classA.ID: 30, classB.ID: 30},
	}
	return snap, conflicts
}

func TestRunIsDeterministicForAFixedSeed(t *testing.T) {
	snap, conflicts := smallSnapshot()
	params := Params{PopulationSize: 6, Generations: 4, MutationChance: 0.3, Workers: 3, Seed: 99}

	tt1, b1, err1 := Run(context.Background(), snap, conflicts, params, nil, nil)
	require.NoError(t, err1)
	tt2, b2, err2 := Run(context.Background(), snap, conflicts, params, nil, nil)
	require.NoError(t, err2)

	assert.Equal(t, b1.Total, b2.Total)
	for _, id := range snap.Classes {
		slots1 := tt1.ClassSlots(id.ID)
		slots2 := tt2.ClassSlots(id.ID)
		assert.Equal(t, slots1, slots2, "fixed seed and params must reproduce identical placements")
		room1, _ := tt1.ClassRoom(id.ID)
		room2, _ := tt2.ClassRoom(id.ID)
		assert.Equal(t, room1, room2)
	}
}

func TestRunStopsEarlyAtZeroCost(t *testing.T) {
	snap, conflicts := smallSnapshot()
	params := Params{PopulationSize: 8, Generations: 50, MutationChance: 0.2, Workers: 2, Seed: 7}

	_, breakdown, err := Run(context.Background(), snap, conflicts, params, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, breakdown.Total, "two non-conflicting classes in one room should always reach cost 0")
}
