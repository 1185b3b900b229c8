package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/russross/timetabler/internal/apperr"
)

// Store is the read/write gateway to the persisted catalog.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type divisionRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type courseRow struct {
	ID         int    `db:"id"`
	Name       string `db:"name"`
	DivisionID int    `db:"division_id"`
}

type roomFeatureRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type roomRow struct {
	ID         int   `db:"id"`
	Name       string `db:"name"`
	DivisionID *int  `db:"division_id"`
}

type roomFeatureLinkRow struct {
	RoomID        int `db:"room_id"`
	RoomFeatureID int `db:"room_feature_id"`
}

type timeSlotRow struct {
	ID          int `db:"id"`
	Day         int `db:"day"`
	StartMinute int `db:"start_minute"`
	EndMinute   int `db:"end_minute"`
	GridIndex   int `db:"grid_index"`
}

type teacherRow struct {
	ID         int    `db:"id"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	DivisionID int    `db:"division_id"`
}

type teacherSlotRow struct {
	TeacherID  int `db:"teacher_id"`
	TimeSlotID int `db:"time_slot_id"`
}

type subjectRow struct {
	ID                   int     `db:"id"`
	Name                 string  `db:"name"`
	Units                float64 `db:"units"`
	DivisionID           int     `db:"division_id"`
	NumRequiredTimeslots int     `db:"num_required_timeslots"`
	IsWednesdayClass     bool    `db:"is_wednesday_class"`
}

type subjectTeacherRow struct {
	SubjectID int `db:"subject_id"`
	TeacherID int `db:"teacher_id"`
}

type subjectFeatureRow struct {
	SubjectID     int `db:"subject_id"`
	RoomFeatureID int `db:"room_feature_id"`
}

type classRow struct {
	ID        uuid.UUID `db:"id"`
	SubjectID int       `db:"subject_id"`
	TeacherID *int      `db:"teacher_id"`
	Capacity  int       `db:"capacity"`
	RoomID    *int      `db:"room_id"`
	StartSlot *int      `db:"start_slot"`
}

type classSlotRow struct {
	ClassID    uuid.UUID `db:"class_id"`
	TimeSlotID int       `db:"time_slot_id"`
}

type studyPlanRow struct {
	ID        int `db:"id"`
	CourseID  int `db:"course_id"`
	Year      int `db:"year"`
	Followers int `db:"followers"`
}

type studyPlanSubjectRow struct {
	StudyPlanID int `db:"study_plan_id"`
	SubjectID   int `db:"subject_id"`
}

// Load reads the entire catalog into an immutable Snapshot.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Divisions:    map[int]*Division{},
		Courses:      map[int]*Course{},
		Rooms:        map[int]*Room{},
		RoomFeatures: map[int]*RoomFeature{},
		Teachers:     map[int]*Teacher{},
		Subjects:     map[int]*Subject{},
		ClassByID:    map[uuid.UUID]*Class{},
	}

	var divisions []divisionRow
	if err := s.db.SelectContext(ctx, &divisions, `SELECT id, name FROM divisions`); err != nil {
		return nil, fmt.Errorf("loading divisions: %w", err)
	}
	for _, d := range divisions {
		snap.Divisions[d.ID] = &Division{ID: d.ID, Name: d.Name}
	}

	var courses []courseRow
	if err := s.db.SelectContext(ctx, &courses, `SELECT id, name, division_id FROM courses`); err != nil {
		return nil, fmt.Errorf("loading courses: %w", err)
	}
	for _, c := range courses {
		snap.Courses[c.ID] = &Course{ID: c.ID, Name: c.Name, DivisionID: c.DivisionID}
	}

	var features []roomFeatureRow
	if err := s.db.SelectContext(ctx, &features, `SELECT id, name FROM room_features`); err != nil {
		return nil, fmt.Errorf("loading room features: %w", err)
	}
	for _, f := range features {
		snap.RoomFeatures[f.ID] = &RoomFeature{ID: f.ID, Name: f.Name}
	}

	var rooms []roomRow
	if err := s.db.SelectContext(ctx, &rooms, `SELECT id, name, division_id FROM rooms`); err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}
	for _, r := range rooms {
		room := &Room{ID: r.ID, Name: r.Name, Features: map[int]bool{}}
		if r.DivisionID != nil {
			room.HasDivision = true
			room.DivisionID = *r.DivisionID
		}
		snap.Rooms[r.ID] = room
	}

	var roomLinks []roomFeatureLinkRow
	if err := s.db.SelectContext(ctx, &roomLinks, `SELECT room_id, room_feature_id FROM room_room_features`); err != nil {
		return nil, fmt.Errorf("loading room features links: %w", err)
	}
	for _, l := range roomLinks {
		if room, ok := snap.Rooms[l.RoomID]; ok {
			room.Features[l.RoomFeatureID] = true
		}
	}

	var slots []timeSlotRow
	if err := s.db.SelectContext(ctx, &slots, `SELECT id, day, start_minute, end_minute, grid_index FROM time_slots ORDER BY grid_index`); err != nil {
		return nil, fmt.Errorf("loading time slots: %w", err)
	}
	if len(slots) != TotalSlots {
		return nil, apperr.CatalogIntegrity(fmt.Sprintf("expected %d time slots, found %d", TotalSlots, len(slots)))
	}
	snap.Slots = make([]*TimeSlot, 0, len(slots))
	snap.SlotByIndex = make([]*TimeSlot, TotalSlots)
	for i, t := range slots {
		if t.GridIndex != i {
			return nil, apperr.CatalogIntegrity(fmt.Sprintf("time slot grid is not contiguous at index %d", i))
		}
		ts := &TimeSlot{ID: t.ID, Day: Day(t.Day), StartMinute: t.StartMinute, EndMinute: t.EndMinute, Index: t.GridIndex}
		snap.Slots = append(snap.Slots, ts)
		snap.SlotByIndex[ts.Index] = ts
	}

	var teachers []teacherRow
	if err := s.db.SelectContext(ctx, &teachers, `SELECT id, first_name, last_name, division_id FROM teachers`); err != nil {
		return nil, fmt.Errorf("loading teachers: %w", err)
	}
	slotByID := make(map[int]*TimeSlot, len(snap.Slots))
	for _, t := range snap.Slots {
		slotByID[t.ID] = t
	}
	for _, t := range teachers {
		snap.Teachers[t.ID] = &Teacher{
			ID: t.ID, FirstName: t.FirstName, LastName: t.LastName,
			DivisionID: t.DivisionID, UnpreferredSlots: map[int]bool{},
		}
	}

	var teacherSlots []teacherSlotRow
	if err := s.db.SelectContext(ctx, &teacherSlots, `SELECT teacher_id, time_slot_id FROM teacher_unpreferred_slots`); err != nil {
		return nil, fmt.Errorf("loading teacher unpreferred slots: %w", err)
	}
	for _, ts := range teacherSlots {
		if teacher, ok := snap.Teachers[ts.TeacherID]; ok {
			if slot, ok := slotByID[ts.TimeSlotID]; ok {
				teacher.UnpreferredSlots[slot.Index] = true
			}
		}
	}

	var subjects []subjectRow
	if err := s.db.SelectContext(ctx, &subjects, `SELECT id, name, units, division_id, num_required_timeslots, is_wednesday_class FROM subjects`); err != nil {
		return nil, fmt.Errorf("loading subjects: %w", err)
	}
	for _, sub := range subjects {
		snap.Subjects[sub.ID] = &Subject{
			ID: sub.ID, Name: sub.Name, Units: sub.Units, DivisionID: sub.DivisionID,
			NumRequiredTimeslots: sub.NumRequiredTimeslots, IsWednesdayClass: sub.IsWednesdayClass,
			RequiredFeatureIDs: map[int]bool{},
		}
	}

	var subjectTeachers []subjectTeacherRow
	if err := s.db.SelectContext(ctx, &subjectTeachers, `SELECT subject_id, teacher_id FROM subject_candidate_teachers`); err != nil {
		return nil, fmt.Errorf("loading subject candidate teachers: %w", err)
	}
	for _, st := range subjectTeachers {
		if subj, ok := snap.Subjects[st.SubjectID]; ok {
			subj.CandidateTeacherIDs = append(subj.CandidateTeacherIDs, st.TeacherID)
		}
	}
	for _, subj := range snap.Subjects {
		sort.Ints(subj.CandidateTeacherIDs)
	}

	var subjectFeatures []subjectFeatureRow
	if err := s.db.SelectContext(ctx, &subjectFeatures, `SELECT subject_id, room_feature_id FROM subject_required_features`); err != nil {
		return nil, fmt.Errorf("loading subject required features: %w", err)
	}
	for _, sf := range subjectFeatures {
		if subj, ok := snap.Subjects[sf.SubjectID]; ok {
			subj.RequiredFeatureIDs[sf.RoomFeatureID] = true
		}
	}

	var classes []classRow
	if err := s.db.SelectContext(ctx, &classes, `SELECT id, subject_id, teacher_id, capacity, room_id, start_slot FROM classes`); err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	var classSlots []classSlotRow
	if err := s.db.SelectContext(ctx, &classSlots, `SELECT class_id, time_slot_id FROM class_slots`); err != nil {
		return nil, fmt.Errorf("loading class slots: %w", err)
	}
	slotsByClass := map[uuid.UUID][]int{}
	for _, cs := range classSlots {
		if slot, ok := slotByID[cs.TimeSlotID]; ok {
			slotsByClass[cs.ClassID] = append(slotsByClass[cs.ClassID], slot.Index)
		}
	}
	for _, c := range classes {
		class := &Class{
			ID: c.ID, SubjectID: c.SubjectID, Capacity: c.Capacity,
			StartSlot: -1,
		}
		if c.TeacherID != nil {
			class.TeacherID = *c.TeacherID
		}
		if c.RoomID != nil {
			class.RoomID = *c.RoomID
		}
		if c.StartSlot != nil {
			class.StartSlot = *c.StartSlot
		}
		slots := slotsByClass[c.ID]
		sort.Ints(slots)
		class.Slots = slots
		snap.Classes = append(snap.Classes, class)
		snap.ClassByID[class.ID] = class
	}
	sort.Slice(snap.Classes, func(i, j int) bool {
		return snap.Classes[i].ID.String() < snap.Classes[j].ID.String()
	})

	var studyPlans []studyPlanRow
	if err := s.db.SelectContext(ctx, &studyPlans, `SELECT id, course_id, year, followers FROM study_plans`); err != nil {
		return nil, fmt.Errorf("loading study plans: %w", err)
	}
	var studyPlanSubjects []studyPlanSubjectRow
	if err := s.db.SelectContext(ctx, &studyPlanSubjects, `SELECT study_plan_id, subject_id FROM study_plan_subjects`); err != nil {
		return nil, fmt.Errorf("loading study plan subjects: %w", err)
	}
	subjectsByPlan := map[int][]int{}
	for _, sp := range studyPlanSubjects {
		subjectsByPlan[sp.StudyPlanID] = append(subjectsByPlan[sp.StudyPlanID], sp.SubjectID)
	}
	for _, p := range studyPlans {
		ids := subjectsByPlan[p.ID]
		sort.Ints(ids)
		snap.StudyPlans = append(snap.StudyPlans, &StudyPlan{
			ID: p.ID, CourseID: p.CourseID, Year: p.Year, Followers: p.Followers, SubjectIDs: ids,
		})
	}

	if err := validateIntegrity(snap); err != nil {
		return nil, err
	}
	snap.Hash = contentHash(snap)
	return snap, nil
}

// validateIntegrity checks I4 (teacher candidacy): every subject has at
// least one candidate teacher, and every assigned teacher is one of its
// subject's candidates, so a broken catalog fails fast at load time.
// I3 (capacity coverage) is not checked here; conflict analysis reports
// a shortfall as an UNSCHEDULABLE error.
func validateIntegrity(snap *Snapshot) error {
	for _, subj := range snap.Subjects {
		candidates := map[int]bool{}
		for _, id := range subj.CandidateTeacherIDs {
			candidates[id] = true
		}
		if len(candidates) == 0 {
			return apperr.CatalogIntegrity(fmt.Sprintf("subject %q has no candidate teachers", subj.Name))
		}
	}
	for _, c := range snap.Classes {
		if c.TeacherID != 0 {
			subj := snap.Subjects[c.SubjectID]
			found := false
			for _, id := range subj.CandidateTeacherIDs {
				if id == c.TeacherID {
					found = true
					break
				}
			}
			if !found {
				return apperr.CatalogIntegrity(fmt.Sprintf("class %s has teacher not in subject %q's candidate set", c.ID, subj.Name))
			}
		}
	}
	return nil
}

// ResetSchedule clears teacher, room, and slot assignment for every
// class, leaving the rest of the catalog untouched.
func (s *Store) ResetSchedule(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_slots`); err != nil {
		return fmt.Errorf("clearing class slots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE classes SET teacher_id = NULL, room_id = NULL, start_slot = NULL`); err != nil {
		return fmt.Errorf("clearing class assignments: %w", err)
	}
	return tx.Commit()
}

// TeacherAssignment is one (class, teacher) pair written back by C3.
// A TeacherID of 0 clears the class's teacher (stored as NULL).
type TeacherAssignment struct {
	ClassID   uuid.UUID
	TeacherID int
}

// PersistTeachers writes the teacher allocator's result.
func (s *Store) PersistTeachers(ctx context.Context, assignments []TeacherAssignment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE classes SET teacher_id = $1 WHERE id = $2`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range assignments {
		var teacherID interface{}
		if a.TeacherID != 0 {
			teacherID = a.TeacherID
		}
		if _, err := stmt.ExecContext(ctx, teacherID, a.ClassID); err != nil {
			return fmt.Errorf("persisting teacher for class %s: %w", a.ClassID, err)
		}
	}
	return tx.Commit()
}

// Placement is one (class, room, slots) assignment produced by the GA.
type Placement struct {
	ClassID uuid.UUID
	RoomID  int
	Slots   []int // ordered, contiguous
}

// Persist writes the final schedule back to the catalog: for every
// placement, the class's room, starting slot, and slot list.
func (s *Store) Persist(ctx context.Context, placements []Placement, slotIDByIndex map[int]int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateStmt, err := tx.PreparexContext(ctx, `UPDATE classes SET room_id = $1, start_slot = $2 WHERE id = $3`)
	if err != nil {
		return err
	}
	defer updateStmt.Close()

	deleteStmt, err := tx.PreparexContext(ctx, `DELETE FROM class_slots WHERE class_id = $1`)
	if err != nil {
		return err
	}
	defer deleteStmt.Close()

	insertStmt, err := tx.PreparexContext(ctx, `INSERT INTO class_slots (class_id, time_slot_id) VALUES ($1, $2)`)
	if err != nil {
		return err
	}
	defer insertStmt.Close()

	for _, p := range placements {
		if len(p.Slots) == 0 {
			continue
		}
		if _, err := updateStmt.ExecContext(ctx, p.RoomID, p.Slots[0], p.ClassID); err != nil {
			return fmt.Errorf("persisting placement for class %s: %w", p.ClassID, err)
		}
		if _, err := deleteStmt.ExecContext(ctx, p.ClassID); err != nil {
			return fmt.Errorf("clearing old slots for class %s: %w", p.ClassID, err)
		}
		for _, idx := range p.Slots {
			slotID, ok := slotIDByIndex[idx]
			if !ok {
				return fmt.Errorf("no time slot row for grid index %d", idx)
			}
			if _, err := insertStmt.ExecContext(ctx, p.ClassID, slotID); err != nil {
				return fmt.Errorf("inserting slot for class %s: %w", p.ClassID, err)
			}
		}
	}
	return tx.Commit()
}

// SlotIDByIndex builds the grid-index -> row-id map Persist needs.
func (snap *Snapshot) SlotIDByIndex() map[int]int {
	out := make(map[int]int, len(snap.Slots))
	for _, s := range snap.Slots {
		out[s.Index] = s.ID
	}
	return out
}
