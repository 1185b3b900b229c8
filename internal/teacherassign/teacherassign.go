// Package teacherassign implements the load-balanced greedy teacher
// allocator (C3): one teacher per class, keeping per-teacher unit loads
// as even as possible while respecting each subject's candidate set.
package teacherassign

import (
	"math/rand"
	"sort"

	"github.com/russross/timetabler/internal/catalog"
)

// Assign writes Class.TeacherID for every class in snap, in place.
// Classes are ordered ascending by the size of their subject's
// candidate-teacher set (smallest pool first, since those are hardest
// to place); ties in current teacher load are broken with rng so no
// teacher is systematically favored.
func Assign(snap *catalog.Snapshot, rng *rand.Rand) {
	units := make(map[int]float64, len(snap.Teachers))
	for id := range snap.Teachers {
		units[id] = 0
	}

	classes := make([]*catalog.Class, len(snap.Classes))
	copy(classes, snap.Classes)
	sort.Slice(classes, func(i, j int) bool {
		si := snap.Subjects[classes[i].SubjectID]
		sj := snap.Subjects[classes[j].SubjectID]
		if len(si.CandidateTeacherIDs) != len(sj.CandidateTeacherIDs) {
			return len(si.CandidateTeacherIDs) < len(sj.CandidateTeacherIDs)
		}
		return classes[i].ID.String() < classes[j].ID.String()
	})

	for _, class := range classes {
		subj := snap.Subjects[class.SubjectID]
		teacherID := pickTeacher(subj.CandidateTeacherIDs, units, rng)
		class.TeacherID = teacherID
		units[teacherID] += subj.Units
	}
}

// pickTeacher partitions candidates into ties of equal current load,
// shuffles within the lightest tie with a fair uniform permutation, and
// returns the winner.
func pickTeacher(candidates []int, units map[int]float64, rng *rand.Rand) int {
	best := candidates[0]
	bestLoad := units[best]
	for _, id := range candidates[1:] {
		if units[id] < bestLoad {
			best = id
			bestLoad = units[id]
		}
	}

	var tied []int
	for _, id := range candidates {
		if units[id] == bestLoad {
			tied = append(tied, id)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	sort.Ints(tied)
	perm := rng.Perm(len(tied))
	return tied[perm[0]]
}
