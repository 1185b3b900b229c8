package catalog

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewStore(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

// expectEmptyRows tells mock that the next SelectContext-driven query
// returns zero rows, for the tables Load reads that this test doesn't
// need populated.
func expectEmptyRows(mock sqlmock.Sqlmock, query string, cols ...string) {
	mock.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(sqlmock.NewRows(cols))
}

func TestStoreLoadBuildsAConsistentSnapshot(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	classID := uuid.New()
	teacherID := 7

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM divisions")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Engineering"))
	expectEmptyRows(mock, "SELECT id, name, division_id FROM courses", "id", "name", "division_id")
	expectEmptyRows(mock, "SELECT id, name FROM room_features", "id", "name")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, division_id FROM rooms")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "division_id"}).AddRow(1, "R1", nil))
	expectEmptyRows(mock, "SELECT room_id, room_feature_id FROM room_room_features", "room_id", "room_feature_id")

	slotRows := sqlmock.NewRows([]string{"id", "day", "start_minute", "end_minute", "grid_index"})
	for i := 0; i < TotalSlots; i++ {
		day := i / SlotsPerDay
		slotRows.AddRow(i+1, day, 420+(i%SlotsPerDay)*30, 420+(i%SlotsPerDay+1)*30, i)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day, start_minute, end_minute, grid_index FROM time_slots ORDER BY grid_index")).
		WillReturnRows(slotRows)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, last_name, division_id FROM teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "division_id"}).AddRow(teacherID, "Ada", "Lovelace", 1))
	expectEmptyRows(mock, "SELECT teacher_id, time_slot_id FROM teacher_unpreferred_slots", "teacher_id", "time_slot_id")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, units, division_id, num_required_timeslots, is_wednesday_class FROM subjects")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "units", "division_id", "num_required_timeslots", "is_wednesday_class"}).
			AddRow(1, "Algorithms", 4.0, 1, 2, false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_id, teacher_id FROM subject_candidate_teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "teacher_id"}).AddRow(1, teacherID))
	expectEmptyRows(mock, "SELECT subject_id, room_feature_id FROM subject_required_features", "subject_id", "room_feature_id")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_id, teacher_id, capacity, room_id, start_slot FROM classes")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject_id", "teacher_id", "capacity", "room_id", "start_slot"}).
			AddRow(classID, 1, teacherID, 30, nil, nil))
	expectEmptyRows(mock, "SELECT class_id, time_slot_id FROM class_slots", "class_id", "time_slot_id")

	expectEmptyRows(mock, "SELECT id, course_id, year, followers FROM study_plans", "id", "course_id", "year", "followers")
	expectEmptyRows(mock, "SELECT study_plan_id, subject_id FROM study_plan_subjects", "study_plan_id", "subject_id")

	snap, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Slots, TotalSlots)
	assert.Equal(t, "Algorithms", snap.Subjects[1].Name)
	assert.Contains(t, snap.Subjects[1].CandidateTeacherIDs, teacherID)
	require.Len(t, snap.Classes, 1)
	assert.Equal(t, classID, snap.Classes[0].ID)
	assert.Equal(t, teacherID, snap.Classes[0].TeacherID)
	assert.NotZero(t, snap.Hash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreLoadRejectsWrongSlotCount(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	expectEmptyRows(mock, "SELECT id, name FROM divisions", "id", "name")
	expectEmptyRows(mock, "SELECT id, name, division_id FROM courses", "id", "name", "division_id")
	expectEmptyRows(mock, "SELECT id, name FROM room_features", "id", "name")
	expectEmptyRows(mock, "SELECT id, name, division_id FROM rooms", "id", "name", "division_id")
	expectEmptyRows(mock, "SELECT room_id, room_feature_id FROM room_room_features", "room_id", "room_feature_id")
	expectEmptyRows(mock, "SELECT id, day, start_minute, end_minute, grid_index FROM time_slots ORDER BY grid_index",
		"id", "day", "start_minute", "end_minute", "grid_index")

	_, err := store.Load(context.Background())
	require.Error(t, err)
}

func TestPersistTeachersWritesEveryAssignment(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	classA, classB := uuid.New(), uuid.New()
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("UPDATE classes SET teacher_id = $1 WHERE id = $2"))
	prep.ExpectExec().WithArgs(7, classA).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(9, classB).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.PersistTeachers(context.Background(), []TeacherAssignment{
		{ClassID: classA, TeacherID: 7},
		{ClassID: classB, TeacherID: 9},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetScheduleClearsAssignmentsInOneTransaction(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_slots")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET teacher_id = NULL, room_id = NULL, start_slot = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, store.ResetSchedule(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
