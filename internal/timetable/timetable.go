// Package timetable is the in-memory grid (slot x room -> classes) that
// the genetic search mutates. It keeps four inverted indices consistent
// on every move so lookups in any direction are O(1).
package timetable

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/russross/timetabler/internal/apperr"
	"github.com/russross/timetabler/internal/catalog"
)

type roomTimeKey struct {
	Room int
	Slot int
}

// Timetable is one candidate assignment of classes to (room, start
// slot). It never references the catalog's mutable state directly; the
// owning Snapshot is only used for read-only lookups (subject length,
// room features).
type Timetable struct {
	snap *catalog.Snapshot

	classRoom  map[uuid.UUID]int
	classSlots map[uuid.UUID][]int
	roomTime   map[roomTimeKey]map[uuid.UUID]bool
	slotClass  map[int]map[uuid.UUID]bool
}

func New(snap *catalog.Snapshot) *Timetable {
	return &Timetable{
		snap:       snap,
		classRoom:  map[uuid.UUID]int{},
		classSlots: map[uuid.UUID][]int{},
		roomTime:   map[roomTimeKey]map[uuid.UUID]bool{},
		slotClass:  map[int]map[uuid.UUID]bool{},
	}
}

// AddClass places class at [startIndex, startIndex+length) in room,
// updating all four indices. It does not check for conflicts; those
// are left for the cost function (HC1, HC2) to penalize.
func (t *Timetable) AddClass(class *catalog.Class, startIndex, length int, room int) {
	t.removeClass(class.ID)

	slots := make([]int, length)
	for i := 0; i < length; i++ {
		slots[i] = startIndex + i
	}
	t.classRoom[class.ID] = room
	t.classSlots[class.ID] = slots

	for _, slot := range slots {
		key := roomTimeKey{Room: room, Slot: slot}
		if t.roomTime[key] == nil {
			t.roomTime[key] = map[uuid.UUID]bool{}
		}
		t.roomTime[key][class.ID] = true

		if t.slotClass[slot] == nil {
			t.slotClass[slot] = map[uuid.UUID]bool{}
		}
		t.slotClass[slot][class.ID] = true
	}
}

func (t *Timetable) removeClass(classID uuid.UUID) {
	room, placed := t.classRoom[classID]
	if !placed {
		return
	}
	for _, slot := range t.classSlots[classID] {
		key := roomTimeKey{Room: room, Slot: slot}
		delete(t.roomTime[key], classID)
		if len(t.roomTime[key]) == 0 {
			delete(t.roomTime, key)
		}
		delete(t.slotClass[slot], classID)
		if len(t.slotClass[slot]) == 0 {
			delete(t.slotClass, slot)
		}
	}
	delete(t.classRoom, classID)
	delete(t.classSlots, classID)
}

// MoveClass relocates class within its current room to newStartIndex.
// It fails with InvalidStartIndex if newStartIndex is not legal for the
// class's subject.
func (t *Timetable) MoveClass(class *catalog.Class, newStartIndex int) error {
	subj := t.snap.Subjects[class.SubjectID]
	if !IsLegalStart(newStartIndex, subj.NumRequiredTimeslots) {
		return apperr.InvalidStartIndex(class.ID.String(), newStartIndex)
	}
	room, placed := t.classRoom[class.ID]
	if !placed {
		return fmt.Errorf("class %s is not placed; use AddClass", class.ID)
	}
	length := OccupiedLength(newStartIndex, subj.NumRequiredTimeslots)
	t.AddClass(class, newStartIndex, length, room)
	return nil
}

// ChangeRoom reassigns class's room without touching its slots.
func (t *Timetable) ChangeRoom(class *catalog.Class, newRoom int) error {
	slots, placed := t.classSlots[class.ID]
	if !placed || len(slots) == 0 {
		return fmt.Errorf("class %s is not placed; use AddClass", class.ID)
	}
	t.AddClass(class, slots[0], len(slots), newRoom)
	return nil
}

// ClassesAt returns the classes scheduled in the given slot.
func (t *Timetable) ClassesAt(slot int) []uuid.UUID {
	set := t.slotClass[slot]
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// ClassesAtRoomSlot returns the classes scheduled in room at slot.
func (t *Timetable) ClassesAtRoomSlot(room, slot int) []uuid.UUID {
	set := t.roomTime[roomTimeKey{Room: room, Slot: slot}]
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (t *Timetable) ClassRoom(classID uuid.UUID) (int, bool) {
	r, ok := t.classRoom[classID]
	return r, ok
}

func (t *Timetable) ClassSlots(classID uuid.UUID) []int {
	return t.classSlots[classID]
}

// SlotIndex returns a time slot's position in the global ordering.
func (t *Timetable) SlotIndex(slot *catalog.TimeSlot) int {
	return slot.Index
}

// PlacedClasses returns the IDs of every class currently placed, sorted
// by string form so callers that index into the result (the GA's
// crossover and mutation operators) see the same order on every call
// for a given timetable, independent of Go's randomized map iteration.
func (t *Timetable) PlacedClasses() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(t.classRoom))
	for id := range t.classRoom {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Clone performs a full deep copy: a GA crossover or mutation operates
// on the clone, leaving the parent untouched.
func (t *Timetable) Clone() *Timetable {
	out := New(t.snap)
	for id, room := range t.classRoom {
		out.classRoom[id] = room
	}
	for id, slots := range t.classSlots {
		cp := make([]int, len(slots))
		copy(cp, slots)
		out.classSlots[id] = cp
	}
	for key, set := range t.roomTime {
		cp := make(map[uuid.UUID]bool, len(set))
		for id := range set {
			cp[id] = true
		}
		out.roomTime[key] = cp
	}
	for slot, set := range t.slotClass {
		cp := make(map[uuid.UUID]bool, len(set))
		for id := range set {
			cp[id] = true
		}
		out.slotClass[slot] = cp
	}
	return out
}
