package main

import (
	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/conflict"
	"github.com/russross/timetabler/internal/cost"
	"github.com/russross/timetabler/internal/timetable"
)

// snapshotToTimetable rebuilds an in-memory Timetable from the
// persisted placement fields on each Class (StartSlot, RoomID, Slots),
// so view-schedule can render and score the last schedule written by
// the schedule command without re-running the search.
func snapshotToTimetable(snap *catalog.Snapshot) (*timetable.Timetable, error) {
	tt := timetable.New(snap)
	for _, c := range snap.Classes {
		if !c.Placed() {
			continue
		}
		tt.AddClass(c, c.StartSlot, len(c.Slots), c.RoomID)
	}
	return tt, nil
}

func costEvaluate(snap *catalog.Snapshot, conflicts *conflict.Result, tt *timetable.Timetable) cost.Breakdown {
	return cost.Evaluate(snap, conflicts, tt)
}
