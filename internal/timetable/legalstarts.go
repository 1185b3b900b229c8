package timetable

import "github.com/russross/timetabler/internal/catalog"

// LegalStarts returns the legal starting indices, in ascending order,
// for a session of the given base length (2 or 3, i.e.
// num_required_timeslots) on the given day. Day 0/1 sessions occupy
// baseLength slots; day 2 sessions double per I2, so the day-2 bound is
// tighter to keep the occupied range inside the day's 24 slots (the
// tightened bound from the distilled spec's second open question,
// validated against I1).
func LegalStarts(day catalog.Day, baseLength int) []int {
	offset := int(day) * catalog.SlotsPerDay
	occupied := baseLength
	if day == catalog.DayWed {
		occupied = 2 * baseLength
	}
	limit := catalog.SlotsPerDay - occupied
	var starts []int
	for s := 0; s <= limit; s += baseLength {
		starts = append(starts, offset+s)
	}
	return starts
}

// IsLegalStart reports whether startIndex is a legal starting index for
// a session with the given base length.
func IsLegalStart(startIndex, baseLength int) bool {
	if startIndex < 0 || startIndex >= catalog.TotalSlots {
		return false
	}
	day := catalog.Day(startIndex / catalog.SlotsPerDay)
	for _, s := range LegalStarts(day, baseLength) {
		if s == startIndex {
			return true
		}
	}
	return false
}

// OccupiedLength returns how many slots a session of the given base
// length occupies if it starts at startIndex (I2: day-2 doubles it).
func OccupiedLength(startIndex, baseLength int) int {
	if catalog.Day(startIndex/catalog.SlotsPerDay) == catalog.DayWed {
		return 2 * baseLength
	}
	return baseLength
}
