package catalog

import "github.com/google/uuid"

// Snapshot is the immutable, fully-indexed view of the catalog that the
// rest of the core operates on. It is built once by Load and never
// mutated in place; ResetSchedule and Persist go back through the
// store, and a fresh Snapshot should be loaded afterward if the caller
// needs to see the change.
type Snapshot struct {
	Divisions    map[int]*Division
	Courses      map[int]*Course
	Rooms        map[int]*Room
	RoomFeatures map[int]*RoomFeature
	Teachers     map[int]*Teacher
	Subjects     map[int]*Subject
	StudyPlans   []*StudyPlan

	// Slots is the 72-entry weekly grid in canonical (day, start) order.
	// SlotByIndex[i] == Slots[i] for every valid index.
	Slots       []*TimeSlot
	SlotByIndex []*TimeSlot

	// Classes is kept in a stable order (ascending by ID string) so that
	// every consumer (conflict analysis, the GA's initial population)
	// iterates classes deterministically.
	Classes   []*Class
	ClassByID map[uuid.UUID]*Class

	// Hash is a content fingerprint used as the conflict-cache key.
	Hash uint64
}

// SubjectClasses returns every Class belonging to subjectID, in the
// Snapshot's stable class order.
func (s *Snapshot) SubjectClasses(subjectID int) []*Class {
	var out []*Class
	for _, c := range s.Classes {
		if c.SubjectID == subjectID {
			out = append(out, c)
		}
	}
	return out
}

// RoomsForDivision returns the rooms owned by the given division, plus
// any division-less rooms, since those are usable by any subject.
func (s *Snapshot) RoomsForDivision(divisionID int) []*Room {
	var out []*Room
	for _, r := range s.Rooms {
		if !r.HasDivision || r.DivisionID == divisionID {
			out = append(out, r)
		}
	}
	return out
}

// HasFeatures reports whether room satisfies every feature in required.
func (r *Room) HasFeatures(required map[int]bool) bool {
	for f := range required {
		if !r.Features[f] {
			return false
		}
	}
	return true
}
