package cost

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/conflict"
	"github.com/russross/timetabler/internal/timetable"
)

func slotGrid() ([]*catalog.TimeSlot, []*catalog.TimeSlot) {
	slots := make([]*catalog.TimeSlot, catalog.TotalSlots)
	byIndex := make([]*catalog.TimeSlot, catalog.TotalSlots)
	for day := 0; day < 3; day++ {
		for i := 0; i < catalog.SlotsPerDay; i++ {
			idx := day*catalog.SlotsPerDay + i
			s := &catalog.TimeSlot{
				ID:          idx + 1,
				Day:         catalog.Day(day),
				StartMinute: 420 + i*30,
				EndMinute:   420 + (i+1)*30,
				Index:       idx,
			}
			slots[idx] = s
			byIndex[idx] = s
		}
	}
	return slots, byIndex
}

func baseSnapshot() *catalog.Snapshot {
	slots, byIndex := slotGrid()
	room := &catalog.Room{ID: 1, Name: "R1", Features: map[int]bool{}, HasDivision: true, DivisionID: 1}
	subj := &catalog.Subject{ID: 1, Name: "Algorithms", NumRequiredTimeslots: 2, RequiredFeatureIDs: map[int]bool{}, DivisionID: 1}
	class := &catalog.Class{ID: uuid.New(), SubjectID: 1, Capacity: 30, StartSlot: -1}
	return &catalog.Snapshot{
		Rooms:       map[int]*catalog.Room{1: room},
		Subjects:    map[int]*catalog.Subject{1: subj},
		Teachers:    map[int]*catalog.Teacher{},
		Classes:     []*catalog.Class{class},
		ClassByID:   map[uuid.UUID]*catalog.Class{class.ID: class},
		Slots:       slots,
		SlotByIndex: byIndex,
	}
}

func emptyConflicts() *conflict.Result {
	return &conflict.Result{Conflicts: map[uuid.UUID][]uuid.UUID{}, Enrollment: map[uuid.UUID]int{}}
}

func TestEvaluatePerfectPlacementIsFree(t *testing.T) {
	snap := baseSnapshot()
	tt := timetable.New(snap)
	// start at offset 2 (08:00), clear of the disliked morning/lunch/evening bands.
	tt.AddClass(snap.Classes[0], 2, 2, 1)

	b := Evaluate(snap, emptyConflicts(), tt)
	assert.Equal(t, 0, b.Total, "a contiguous, fully-featured, fully-placed class should cost nothing: %+v", b.ByTag)
}

func TestEvaluateUnplacedClassIsHC3(t *testing.T) {
	snap := baseSnapshot()
	tt := timetable.New(snap)

	b := Evaluate(snap, emptyConflicts(), tt)
	assert.Equal(t, HardPenalty, b.Total)
	assert.Equal(t, HardPenalty, b.ByTag["HC3_COMPLETENESS"])
}

func TestEvaluateRoomDoubleBookingIsHC2(t *testing.T) {
	snap := baseSnapshot()
	other := &catalog.Class{ID: uuid.New(), SubjectID: 1, Capacity: 30, StartSlot: -1}
	snap.Classes = append(snap.Classes, other)
	snap.ClassByID[other.ID] = other

	tt := timetable.New(snap)
	tt.AddClass(snap.Classes[0], 0, 2, 1)
	tt.AddClass(other, 0, 2, 1)

	b := Evaluate(snap, emptyConflicts(), tt)
	assert.Greater(t, b.ByTag["HC2_ROOM_UNIQUENESS"], 0)
}

func TestEvaluateSharedResourceConflictIsHC1(t *testing.T) {
	snap := baseSnapshot()
	class := snap.Classes[0]
	other := &catalog.Class{ID: uuid.New(), SubjectID: 1, Capacity: 30, StartSlot: -1}
	snap.Classes = append(snap.Classes, other)
	snap.ClassByID[other.ID] = other

	tt := timetable.New(snap)
	tt.AddClass(class, 0, 2, 1)
	tt.AddClass(other, 0, 2, 1)

	conflicts := &conflict.Result{
		Conflicts:  map[uuid.UUID][]uuid.UUID{class.ID: {other.ID}, other.ID: {class.ID}},
		Enrollment: map[uuid.UUID]int{class.ID: 30, other.ID: 30},
	}

	b := Evaluate(snap, conflicts, tt)
	assert.Equal(t, 4*HardPenalty, b.ByTag["HC1_CONFLICT"], "one penalty per conflicting class in each of the two shared slots, not per neighbor pair")
}

func TestEvaluateSharedResourceConflictCountsOncePerClassRegardlessOfNeighborCount(t *testing.T) {
	snap := baseSnapshot()
	class := snap.Classes[0]
	neighbor1 := &catalog.Class{ID: uuid.New(), SubjectID: 1, Capacity: 30, StartSlot: -1}
	neighbor2 := &catalog.Class{ID: uuid.New(), SubjectID: 1, Capacity: 30, StartSlot: -1}
	snap.Classes = append(snap.Classes, neighbor1, neighbor2)
	snap.ClassByID[neighbor1.ID] = neighbor1
	snap.ClassByID[neighbor2.ID] = neighbor2

	tt := timetable.New(snap)
	tt.AddClass(class, 0, 2, 1)
	tt.AddClass(neighbor1, 0, 2, 1)
	tt.AddClass(neighbor2, 0, 2, 1)

	// class conflicts with both neighbors sharing its slots, but must still
	// only be penalized once for itself in each slot.
	conflicts := &conflict.Result{
		Conflicts: map[uuid.UUID][]uuid.UUID{
			class.ID:     {neighbor1.ID, neighbor2.ID},
			neighbor1.ID: {class.ID},
			neighbor2.ID: {class.ID},
		},
		Enrollment: map[uuid.UUID]int{class.ID: 30, neighbor1.ID: 30, neighbor2.ID: 30},
	}

	b := Evaluate(snap, conflicts, tt)
	assert.Equal(t, 6*HardPenalty, b.ByTag["HC1_CONFLICT"], "class plus its two conflicting neighbors: one penalty each in each of the two shared slots")
}

func TestEvaluateMissingRoomFeatureIsHC5(t *testing.T) {
	snap := baseSnapshot()
	snap.Subjects[1].RequiredFeatureIDs = map[int]bool{7: true}

	tt := timetable.New(snap)
	tt.AddClass(snap.Classes[0], 0, 2, 1)

	b := Evaluate(snap, emptyConflicts(), tt)
	require.Contains(t, b.ByTag, "HC5_ROOM_FEATURES")
	assert.Equal(t, HardPenalty, b.ByTag["HC5_ROOM_FEATURES"])
}

func TestEvaluateContiguousSlotsAreNotHC7(t *testing.T) {
	snap := baseSnapshot()
	tt := timetable.New(snap)
	class := snap.Classes[0]
	tt.AddClass(class, 0, 2, 1)
	// AddClass always writes consecutive slot indices; this checks that
	// hc7 does not fire for a contiguous placement inside one day.
	b := Evaluate(snap, emptyConflicts(), tt)
	assert.NotContains(t, b.ByTag, "HC7_CONTIGUITY")
}

func TestEvaluateDislikedSlotIsSoft(t *testing.T) {
	snap := baseSnapshot()
	tt := timetable.New(snap)
	tt.AddClass(snap.Classes[0], 0, 2, 1) // offsets 0,1 within day 0 -> offset 0 is disliked

	b := Evaluate(snap, emptyConflicts(), tt)
	assert.Equal(t, SoftPenalty, b.ByTag["SC2_DISLIKED_SLOT"])
	assert.Less(t, b.Total, HardPenalty, "a soft-only violation must never reach hard-constraint magnitude")
}

func TestSortedTagsOrdersByDescendingContribution(t *testing.T) {
	b := Breakdown{ByTag: map[string]int{"A": 5, "B": 50, "C": 50}}
	tags := b.SortedTags()
	require.Len(t, tags, 3)
	assert.Equal(t, "B", tags[0]) // ties broken alphabetically
	assert.Equal(t, "C", tags[1])
	assert.Equal(t, "A", tags[2])
}
