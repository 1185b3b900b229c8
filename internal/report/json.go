package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/russross/timetabler/internal/catalog"
	"github.com/russross/timetabler/internal/timetable"
)

// placementJSON is the on-disk shape of one placed class, grounded on
// the teacher's json.go Placement round trip (course/room/time by
// name rather than by internal ID, so files stay readable and stable
// across catalog reloads).
type placementJSON struct {
	Subject string `json:"subject"`
	Room    string `json:"room"`
	Start   string `json:"start"`
}

// WriteJSON serializes every placed class in tt to w, keyed by class ID
// so ReadJSON can restore the exact assignment without re-running the
// search. Mirrors the teacher's WriteJSON in spirit (human-legible
// names) while keeping the UUID needed for exact restoration.
func WriteJSON(w io.Writer, snap *catalog.Snapshot, tt *timetable.Timetable) error {
	out := make(map[string]placementJSON)
	for _, id := range tt.PlacedClasses() {
		class := snap.ClassByID[id]
		subj := snap.Subjects[class.SubjectID]
		room, _ := tt.ClassRoom(id)
		slots := tt.ClassSlots(id)
		if len(slots) == 0 {
			continue
		}
		out[id.String()] = placementJSON{
			Subject: subj.Name,
			Room:    snap.Rooms[room].Name,
			Start:   slotLabel(snap.SlotByIndex[slots[0]]),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ReadJSON restores a previously written placement file into a fresh
// Timetable built against snap. It fails if a class ID from the file no
// longer exists in snap's catalog, or if a referenced room is unknown,
// mirroring the teacher's ReadJSON "unrecognized room name" checks.
func ReadJSON(r io.Reader, snap *catalog.Snapshot) (*timetable.Timetable, error) {
	var in map[string]placementJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decoding schedule json: %w", err)
	}

	roomByName := make(map[string]int, len(snap.Rooms))
	for id, room := range snap.Rooms {
		roomByName[room.Name] = id
	}

	tt := timetable.New(snap)
	for idStr, p := range in {
		classID, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("malformed class id %q: %w", idStr, err)
		}
		class, ok := snap.ClassByID[classID]
		if !ok {
			return nil, fmt.Errorf("class %s from schedule file no longer exists in catalog", idStr)
		}
		roomID, ok := roomByName[p.Room]
		if !ok {
			return nil, fmt.Errorf("class %s has unrecognized room name %q", idStr, p.Room)
		}
		start, ok := startIndexForLabel(snap, p.Start)
		if !ok {
			return nil, fmt.Errorf("class %s has unrecognized start time %q", idStr, p.Start)
		}
		subj := snap.Subjects[class.SubjectID]
		length := timetable.OccupiedLength(start, subj.NumRequiredTimeslots)
		tt.AddClass(class, start, length, roomID)
	}
	return tt, nil
}

func startIndexForLabel(snap *catalog.Snapshot, label string) (int, bool) {
	for _, s := range snap.Slots {
		if slotLabel(s) == label {
			return s.Index, true
		}
	}
	return 0, false
}
