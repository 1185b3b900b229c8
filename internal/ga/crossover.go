package ga

import (
	"math/rand"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/timetable"
)

// crossover deep-copies one parent (uniformly chosen) as the base, then
// transplants a single scheduling decision from the other parent: pick
// one of its classes, read its starting slot there, and move the base's
// matching class to that index.
//
// The matching class is found by its stable UUID (see SPEC_FULL.md §3),
// not by subject name as the reference implementation did — matching on
// name misidentifies one of several classes of the same subject.
func crossover(snap *catalog.Snapshot, parent1, parent2 *timetable.Timetable, rng *rand.Rand) *timetable.Timetable {
	var base, donor *timetable.Timetable
	if rng.Intn(2) == 0 {
		base, donor = parent1, parent2
	} else {
		base, donor = parent2, parent1
	}
	child := base.Clone()

	donorClasses := donor.PlacedClasses()
	if len(donorClasses) == 0 {
		return child
	}
	picked := donorClasses[rng.Intn(len(donorClasses))]
	donorSlots := donor.ClassSlots(picked)
	if len(donorSlots) == 0 {
		return child
	}

	class := snap.ClassByID[picked]
	if class == nil {
		return child
	}
	// move_class fails if the transplanted start is illegal for the
	// base's copy of the class (it always is legal here, since it was
	// legal in the donor and legality depends only on subject length),
	// but guard anyway since MoveClass is a hard error, not a signal.
	if _, placed := child.ClassRoom(picked); placed {
		_ = child.MoveClass(class, donorSlots[0])
	}
	return child
}
