package ga

import (
	"sort"

	"github.com/russross/timetabler/internal/catalog"
)

// AcceptableRooms returns every room in subj's division (or without a
// division) whose features are a superset of subj's required features,
// sorted ascending by feature count so the least-over-provisioned rooms
// are preferred when ties occur in downstream sampling.
func AcceptableRooms(snap *catalog.Snapshot, subj *catalog.Subject) []*catalog.Room {
	var out []*catalog.Room
	for _, room := range snap.RoomsForDivision(subj.DivisionID) {
		if room.HasFeatures(subj.RequiredFeatureIDs) {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Features) != len(out[j].Features) {
			return len(out[i].Features) < len(out[j].Features)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
