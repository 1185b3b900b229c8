package ga

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/conflict"
	"github.com/russross/timetabler/internal/timetable"
)

// randomCandidate builds one initial timetable: iterate classes in
// conflict-order (least-constrained first), and for each pick a
// uniform random legal start index and a uniform random acceptable
// room. No conflict checks during placement; selection pressure
// resolves violations over subsequent generations.
func randomCandidate(snap *catalog.Snapshot, order []uuid.UUID, roomCache map[int][]*catalog.Room, rng *rand.Rand) *timetable.Timetable {
	tt := timetable.New(snap)
	for _, id := range order {
		class := snap.ClassByID[id]
		subj := snap.Subjects[class.SubjectID]
		rooms := roomCache[subj.ID]
		if len(rooms) == 0 {
			continue
		}
		var starts []int
		for day := catalog.DayMonThu; day <= catalog.DayWed; day++ {
			starts = append(starts, timetable.LegalStarts(day, subj.NumRequiredTimeslots)...)
		}
		start := starts[rng.Intn(len(starts))]
		room := rooms[rng.Intn(len(rooms))]
		length := timetable.OccupiedLength(start, subj.NumRequiredTimeslots)
		tt.AddClass(class, start, length, room.ID)
	}
	return tt
}

// buildRoomCache pre-computes AcceptableRooms per subject once, since
// the set never changes across the population or across generations.
func buildRoomCache(snap *catalog.Snapshot) map[int][]*catalog.Room {
	cache := make(map[int][]*catalog.Room, len(snap.Subjects))
	for id, subj := range snap.Subjects {
		cache[id] = AcceptableRooms(snap, subj)
	}
	return cache
}

// classOrder returns snap's classes ordered per Result.OrderedClasses.
func classOrder(result *conflict.Result) []uuid.UUID {
	return result.OrderedClasses()
}
