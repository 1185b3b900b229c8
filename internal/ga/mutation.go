package ga

import (
	"math/rand"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/timetable"
)

// mutate applies, with probability chance, one of two mutation
// operators to tt in place: move1 resamples a random class's start
// index and room; move2 swaps the starting slot indices of two random
// classes, leaving rooms unchanged.
func mutate(snap *catalog.Snapshot, tt *timetable.Timetable, roomCache map[int][]*catalog.Room, chance float64, rng *rand.Rand) {
	if rng.Float64() >= chance {
		return
	}
	if rng.Intn(2) == 0 {
		move1(snap, tt, roomCache, rng)
	} else {
		move2(snap, tt, rng)
	}
}

func move1(snap *catalog.Snapshot, tt *timetable.Timetable, roomCache map[int][]*catalog.Room, rng *rand.Rand) {
	placed := tt.PlacedClasses()
	if len(placed) == 0 {
		return
	}
	classID := placed[rng.Intn(len(placed))]
	class := snap.ClassByID[classID]
	subj := snap.Subjects[class.SubjectID]

	day := catalog.Day(rng.Intn(3))
	starts := timetable.LegalStarts(day, subj.NumRequiredTimeslots)
	start := starts[rng.Intn(len(starts))]

	rooms := roomCache[subj.ID]
	if len(rooms) == 0 {
		return
	}
	room := rooms[rng.Intn(len(rooms))]

	length := timetable.OccupiedLength(start, subj.NumRequiredTimeslots)
	tt.AddClass(class, start, length, room.ID)
}

func move2(snap *catalog.Snapshot, tt *timetable.Timetable, rng *rand.Rand) {
	placed := tt.PlacedClasses()
	if len(placed) < 2 {
		return
	}
	i := rng.Intn(len(placed))
	j := rng.Intn(len(placed))
	for j == i {
		j = rng.Intn(len(placed))
	}
	classA := snap.ClassByID[placed[i]]
	classB := snap.ClassByID[placed[j]]

	slotsA := tt.ClassSlots(classA.ID)
	slotsB := tt.ClassSlots(classB.ID)
	if len(slotsA) == 0 || len(slotsB) == 0 {
		return
	}
	startA, startB := slotsA[0], slotsB[0]

	subjA := snap.Subjects[classA.SubjectID]
	subjB := snap.Subjects[classB.SubjectID]
	if !timetable.IsLegalStart(startB, subjA.NumRequiredTimeslots) ||
		!timetable.IsLegalStart(startA, subjB.NumRequiredTimeslots) {
		return
	}
	_ = tt.MoveClass(classA, startB)
	_ = tt.MoveClass(classB, startA)
}
