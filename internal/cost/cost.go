// Package cost implements the weighted sum of hard and soft constraint
// penalties (C5) used to score a candidate timetable.
package cost

import (
	"sort"

	"github.com/google/uuid"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/conflict"
	"github.com/russross/timetabler/internal/timetable"
)

const (
	HardPenalty = 10000
	SoftPenalty = 1
)

// unpreferredOffsets is the fixed, institution-wide disliked set:
// morning 07:00-07:30, lunch 11:30-13:00, evening 17:30-19:00, on every
// day. Slot i covers [07:00 + i*30, 07:00 + (i+1)*30) within a day.
var unpreferredOffsets = buildUnpreferredOffsets()

func buildUnpreferredOffsets() map[int]bool {
	offsets := map[int]bool{}
	// 07:00-07:30 -> offset 0
	offsets[0] = true
	// 11:30-13:00 -> offsets 9..11 (11:30,12:00,12:30)
	for o := 9; o <= 11; o++ {
		offsets[o] = true
	}
	// 17:30-19:00 -> offsets 21..23
	for o := 21; o <= 23; o++ {
		offsets[o] = true
	}
	return offsets
}

// Breakdown reports the total cost plus each constraint's contribution,
// grounded in the teacher's Problem/Schedule.Problems pattern so C7 and
// metrics can show per-constraint detail instead of just a number.
type Breakdown struct {
	Total int
	ByTag map[string]int
	Notes []string
}

func (b *Breakdown) add(tag string, amount int, note string) {
	if amount == 0 {
		return
	}
	b.Total += amount
	b.ByTag[tag] += amount
	if note != "" {
		b.Notes = append(b.Notes, note)
	}
}

// Evaluate scores tt against snap's catalog and conflict graph.
func Evaluate(snap *catalog.Snapshot, conflicts *conflict.Result, tt *timetable.Timetable) Breakdown {
	b := Breakdown{ByTag: map[string]int{}}

	placed := map[uuid.UUID]bool{}
	for _, id := range tt.PlacedClasses() {
		placed[id] = true
	}

	hc1(snap, conflicts, tt, &b)
	hc2(snap, tt, &b)
	hc3(snap, placed, &b)
	hc4(snap, tt, &b)
	hc5(snap, tt, &b)
	hc6(snap, tt, &b)
	hc7(snap, tt, &b)
	sc1(snap, tt, &b)
	sc2(snap, tt, &b)
	sc3(snap, tt, &b)

	return b
}

// hc1: shared-resource conflicts and teacher double-booking.
func hc1(snap *catalog.Snapshot, conflicts *conflict.Result, tt *timetable.Timetable, b *Breakdown) {
	for slot := 0; slot < catalog.TotalSlots; slot++ {
		here := tt.ClassesAt(slot)
		if len(here) < 2 {
			continue
		}
		hereSet := make(map[uuid.UUID]bool, len(here))
		for _, id := range here {
			hereSet[id] = true
		}
		for _, id := range here {
			hasConflict := false
			for _, neighbor := range conflicts.Conflicts[id] {
				if neighbor != id && hereSet[neighbor] {
					hasConflict = true
					break
				}
			}
			if hasConflict {
				b.add("HC1_CONFLICT", HardPenalty, "shared-resource conflict in a time slot")
			}
		}

		byTeacher := map[int]int{}
		for _, id := range here {
			class := snap.ClassByID[id]
			if class == nil || class.TeacherID == 0 {
				continue
			}
			byTeacher[class.TeacherID]++
		}
		for _, k := range byTeacher {
			if k > 1 {
				b.add("HC1_TEACHER_DOUBLE_BOOK", k*HardPenalty, "teacher double-booked in a time slot")
			}
		}
	}
}

// hc2: room uniqueness.
func hc2(snap *catalog.Snapshot, tt *timetable.Timetable, b *Breakdown) {
	for _, room := range snap.Rooms {
		for slot := 0; slot < catalog.TotalSlots; slot++ {
			if n := len(tt.ClassesAtRoomSlot(room.ID, slot)); n > 1 {
				b.add("HC2_ROOM_UNIQUENESS", HardPenalty, "more than one class in the same room and slot")
			}
		}
	}
}

// hc3: completeness.
func hc3(snap *catalog.Snapshot, placed map[uuid.UUID]bool, b *Breakdown) {
	for _, class := range snap.Classes {
		if !placed[class.ID] {
			b.add("HC3_COMPLETENESS", HardPenalty, "class missing from the timetable")
		}
	}
}

// hc4: day-2 length.
func hc4(snap *catalog.Snapshot, tt *timetable.Timetable, b *Breakdown) {
	for _, class := range snap.Classes {
		slots := tt.ClassSlots(class.ID)
		if len(slots) == 0 {
			continue
		}
		if catalog.Day(slots[0]/catalog.SlotsPerDay) != catalog.DayWed {
			continue
		}
		subj := snap.Subjects[class.SubjectID]
		if len(slots) != 2*subj.NumRequiredTimeslots {
			b.add("HC4_DAY2_LENGTH", HardPenalty, "wednesday class has the wrong number of slots")
		}
	}
}

// hc5: room features.
func hc5(snap *catalog.Snapshot, tt *timetable.Timetable, b *Breakdown) {
	for _, class := range snap.Classes {
		roomID, placed := tt.ClassRoom(class.ID)
		if !placed {
			continue
		}
		subj := snap.Subjects[class.SubjectID]
		room := snap.Rooms[roomID]
		if room == nil || !room.HasFeatures(subj.RequiredFeatureIDs) {
			b.add("HC5_ROOM_FEATURES", HardPenalty, "class placed in a room missing required features")
		}
	}
}

// hc6: Wednesday-only subjects.
func hc6(snap *catalog.Snapshot, tt *timetable.Timetable, b *Breakdown) {
	for _, class := range snap.Classes {
		subj := snap.Subjects[class.SubjectID]
		if !subj.IsWednesdayClass {
			continue
		}
		slots := tt.ClassSlots(class.ID)
		if len(slots) == 0 {
			continue
		}
		if catalog.Day(slots[0]/catalog.SlotsPerDay) != catalog.DayWed {
			b.add("HC6_WEDNESDAY_ONLY", HardPenalty, "wednesday-only subject not placed on wednesday")
		}
	}
}

// hc7: contiguity.
func hc7(snap *catalog.Snapshot, tt *timetable.Timetable, b *Breakdown) {
	for _, class := range snap.Classes {
		slots := tt.ClassSlots(class.ID)
		for i := 0; i+1 < len(slots); i++ {
			a := snap.SlotByIndex[slots[i]]
			c := snap.SlotByIndex[slots[i+1]]
			if a == nil || c == nil || a.EndMinute != c.StartMinute || a.Day != c.Day {
				b.add("HC7_CONTIGUITY", HardPenalty, "class slots are not contiguous")
			}
		}
	}
}

// sc1: division match.
func sc1(snap *catalog.Snapshot, tt *timetable.Timetable, b *Breakdown) {
	for _, class := range snap.Classes {
		roomID, placed := tt.ClassRoom(class.ID)
		if !placed {
			continue
		}
		subj := snap.Subjects[class.SubjectID]
		room := snap.Rooms[roomID]
		if room == nil {
			continue
		}
		if !room.HasDivision || room.DivisionID != subj.DivisionID {
			b.add("SC1_DIVISION_MATCH", SoftPenalty, "class room division differs from subject division")
		}
	}
}

// sc2: disliked slots.
func sc2(snap *catalog.Snapshot, tt *timetable.Timetable, b *Breakdown) {
	for _, class := range snap.Classes {
		for _, slot := range tt.ClassSlots(class.ID) {
			offset := slot % catalog.SlotsPerDay
			if unpreferredOffsets[offset] {
				b.add("SC2_DISLIKED_SLOT", SoftPenalty, "class placed in an institution-wide disliked slot")
			}
		}
	}
}

// sc3: teacher preference.
func sc3(snap *catalog.Snapshot, tt *timetable.Timetable, b *Breakdown) {
	for _, class := range snap.Classes {
		if class.TeacherID == 0 {
			continue
		}
		teacher := snap.Teachers[class.TeacherID]
		if teacher == nil {
			continue
		}
		for _, slot := range tt.ClassSlots(class.ID) {
			if teacher.UnpreferredSlots[slot] {
				b.add("SC3_TEACHER_PREFERENCE", SoftPenalty, "class placed in teacher's unpreferred slot")
			}
		}
	}
}

// SortedTags returns the breakdown's tags in descending contribution
// order, for stable reporting.
func (b Breakdown) SortedTags() []string {
	tags := make([]string, 0, len(b.ByTag))
	for t := range b.ByTag {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if b.ByTag[tags[i]] != b.ByTag[tags[j]] {
			return b.ByTag[tags[i]] > b.ByTag[tags[j]]
		}
		return tags[i] < tags[j]
	})
	return tags
}
