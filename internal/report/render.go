// Package report formats timetables and conflict graphs for human
// consumption, generalizing the teacher's PrintSchedule table and
// Problems list (see score.go's PrintSchedule) to the catalog's
// division/subject/teacher vocabulary.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/conflict"
	"github.com/russross/timetabler/internal/cost"
	"github.com/russross/timetabler/internal/timetable"
)

// RenderSchedule writes a grid of rooms x time slots, one cell per
// (room, slot) showing the subject placed there, followed by the cost
// breakdown by constraint tag. Mirrors the teacher's PrintSchedule
// layout: a header row of room names, one row per time slot, a dashed
// separator, then a "Total cost" summary.
func RenderSchedule(w io.Writer, snap *catalog.Snapshot, tt *timetable.Timetable, breakdown cost.Breakdown) {
	rooms := sortedRooms(snap)
	nameLen := 0
	for _, subj := range snap.Subjects {
		if len(subj.Name) > nameLen {
			nameLen = len(subj.Name)
		}
	}
	for _, r := range rooms {
		if len(r.Name) > nameLen {
			nameLen = len(r.Name)
		}
	}
	timeLen := 0
	for _, s := range snap.Slots {
		if n := len(slotLabel(s)); n > timeLen {
			timeLen = n
		}
	}

	hyphens := repeat("-", nameLen)

	fmt.Fprintf(w, "%*s ", timeLen, "")
	for _, r := range rooms {
		fmt.Fprintf(w, "+-%s-", hyphens)
	}
	fmt.Fprintln(w, "+")

	fmt.Fprintf(w, "%*s ", timeLen, "")
	for _, r := range rooms {
		fmt.Fprintf(w, "| %-*s ", nameLen, r.Name)
	}
	fmt.Fprintln(w, "|")

	for _, slot := range snap.Slots {
		fmt.Fprintf(w, "%*s ", timeLen, slotLabel(slot))
		for _, r := range rooms {
			classID := soleClassAt(tt, r.ID, slot.Index)
			label := ""
			if classID != uuid.Nil {
				label = snap.Subjects[snap.ClassByID[classID].SubjectID].Name
			}
			fmt.Fprintf(w, "| %-*s ", nameLen, label)
		}
		fmt.Fprintln(w, "|")
	}

	fmt.Fprintf(w, "%*s ", timeLen, "")
	for range rooms {
		fmt.Fprintf(w, "+-%s-", hyphens)
	}
	fmt.Fprintln(w, "+")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total cost %d with the following contributions:\n", breakdown.Total)
	for _, tag := range breakdown.SortedTags() {
		fmt.Fprintf(w, "* %s: %d\n", tag, breakdown.ByTag[tag])
	}
	for _, note := range breakdown.Notes {
		fmt.Fprintf(w, "  - %s\n", note)
	}
}

// RenderConflicts writes each class's conflict set and enrollment,
// ordered the same way the GA consumes classes (OrderedClasses), so
// output is stable across runs against the same catalog.
func RenderConflicts(w io.Writer, snap *catalog.Snapshot, result *conflict.Result) {
	for _, id := range result.OrderedClasses() {
		class := snap.ClassByID[id]
		subj := snap.Subjects[class.SubjectID]
		fmt.Fprintf(w, "%s (%s): enrollment %d, conflicts with %d class(es)\n",
			subj.Name, id, result.Enrollment[id], len(result.Conflicts[id]))
		others := append([]uuid.UUID(nil), result.Conflicts[id]...)
		sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
		for _, other := range others {
			otherSubj := snap.Subjects[snap.ClassByID[other].SubjectID]
			fmt.Fprintf(w, "  - %s (%s)\n", otherSubj.Name, other)
		}
	}
}

func soleClassAt(tt *timetable.Timetable, room, slot int) uuid.UUID {
	ids := tt.ClassesAtRoomSlot(room, slot)
	if len(ids) == 0 {
		return uuid.Nil
	}
	return ids[0]
}

func sortedRooms(snap *catalog.Snapshot) []*catalog.Room {
	out := make([]*catalog.Room, 0, len(snap.Rooms))
	for _, r := range snap.Rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func slotLabel(s *catalog.TimeSlot) string {
	day := [...]string{"MonThu", "TueFri", "Wed"}[s.Day]
	return fmt.Sprintf("%s %02d:%02d", day, s.StartMinute/60, s.StartMinute%60)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
