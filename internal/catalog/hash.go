package catalog

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// contentHash is a cheap fingerprint of the entities that affect
// conflict analysis (class IDs, subjects and capacities; study-plan
// followers and subjects), used as the conflict-set cache key in
// internal/conflict. It deliberately ignores fields (like room features)
// that conflict analysis never reads, so unrelated catalog edits don't
// cause needless cache misses.
func contentHash(snap *Snapshot) uint64 {
	h := fnv.New64a()

	classIDs := make([]string, 0, len(snap.Classes))
	for _, c := range snap.Classes {
		classIDs = append(classIDs, c.ID.String()+":"+strconv.Itoa(c.SubjectID)+":"+strconv.Itoa(c.Capacity))
	}
	sort.Strings(classIDs)
	for _, id := range classIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}

	planKeys := make([]string, 0, len(snap.StudyPlans))
	for _, p := range snap.StudyPlans {
		planKeys = append(planKeys, planKey(p))
	}
	sort.Strings(planKeys)
	for _, k := range planKeys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}

	return h.Sum64()
}

func planKey(p *StudyPlan) string {
	ids := make([]string, len(p.SubjectIDs))
	for i, id := range p.SubjectIDs {
		ids[i] = strconv.Itoa(id)
	}
	return strconv.Itoa(p.ID) + ":" + strconv.Itoa(p.Followers) + ":" + strings.Join(ids, ",")
}
