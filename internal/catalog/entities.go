// Package catalog holds the read-only snapshot of scheduling entities:
// divisions, courses, rooms, teachers, subjects, classes, study plans,
// and the weekly grid of time slots.
package catalog

import "github.com/google/uuid"

// Day identifies one of the three weekly day groups used by the grid.
// Day 0 mirrors Monday and Thursday, day 1 mirrors Tuesday and Friday,
// and day 2 is the standalone Wednesday block.
type Day int

const (
	DayMonThu Day = iota
	DayTueFri
	DayWed
)

// SlotsPerDay is the number of 30-minute cells in a single day block.
const SlotsPerDay = 24

// TotalSlots is the size of the weekly grid (3 day blocks x 24 slots).
const TotalSlots = 3 * SlotsPerDay

type Division struct {
	ID   int
	Name string
}

type Course struct {
	ID         int
	Name       string
	DivisionID int
}

type RoomFeature struct {
	ID   int
	Name string
}

type Room struct {
	ID         int
	Name       string
	DivisionID int // 0 means no owning division
	HasDivision bool
	Features   map[int]bool // RoomFeature.ID -> present
}

// TimeSlot is one 30-minute weekly cell. StartMinute and EndMinute are
// minutes since midnight so "07:00" is 420.
type TimeSlot struct {
	ID         int
	Day        Day
	StartMinute int
	EndMinute   int
	// Index is the slot's position in the global, totally-ordered grid:
	// Index = int(Day)*SlotsPerDay + (position within the day).
	Index int
}

type Teacher struct {
	ID               int
	FirstName        string
	LastName         string
	DivisionID       int
	UnpreferredSlots map[int]bool // TimeSlot.Index -> true
}

func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

type Subject struct {
	ID                   int
	Name                 string
	Units                float64
	DivisionID           int
	CandidateTeacherIDs  []int
	RequiredFeatureIDs   map[int]bool
	NumRequiredTimeslots int // 2 or 3
	IsWednesdayClass     bool
}

// Class is one scheduled section of a Subject. TeacherID, Room, and
// Slots are nil/empty/zero until the allocator and GA fill them in.
type Class struct {
	ID         uuid.UUID
	SubjectID  int
	TeacherID  int // 0 means unassigned
	Capacity   int
	StartSlot  int // -1 means unplaced
	RoomID     int // 0 means unplaced
	Slots      []int
}

func (c *Class) Placed() bool {
	return c.StartSlot >= 0 && c.RoomID != 0
}

type StudyPlan struct {
	ID         int
	CourseID   int
	Year       int
	Followers  int
	SubjectIDs []int
}
