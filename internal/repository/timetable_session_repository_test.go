package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestTimetableSessionRepositoryReplaceSessions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_sessions WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_sessions")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "C1", "T1", 1, 0, 0, "101", "theory", "Algebra", "MTH-1", "A", "Dr. Rao", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_sessions")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "L1", "T2", 1, 5, 6, "LAB-1", "lab", "Physics (Lab)", "PHY-1-L", "A", "Dr. Sen", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rows := []models.TimetableSession{
		{ClassID: "C1", TeacherID: "T1", DayOfWeek: 1, StartPeriod: 0, EndPeriod: 0, Room: "101", Kind: "theory", CourseName: "Algebra", CourseCode: "MTH-1", Section: "A", FacultyName: "Dr. Rao"},
		{ClassID: "L1", TeacherID: "T2", DayOfWeek: 1, StartPeriod: 5, EndPeriod: 6, Room: "LAB-1", Kind: "lab", CourseName: "Physics (Lab)", CourseCode: "PHY-1-L", Section: "A", FacultyName: "Dr. Sen"},
	}
	require.NoError(t, repo.ReplaceSessions(context.Background(), nil, "tt-1", rows))
	for _, row := range rows {
		assert.Equal(t, "tt-1", row.TimetableID)
		assert.NotEmpty(t, row.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSessionRepositoryReplaceSessionsStopsOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_sessions")).
		WithArgs("tt-1").
		WillReturnError(errors.New("boom"))

	err := repo.ReplaceSessions(context.Background(), nil, "tt-1", []models.TimetableSession{{ClassID: "C1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear timetable sessions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSessionRepositoryListByTimetable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSessionRepository(db)

	columns := []string{"id", "timetable_id", "class_id", "teacher_id", "day_of_week", "start_period", "end_period", "room", "kind", "course_name", "course_code", "section", "faculty_name", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_sessions WHERE timetable_id = $1 ORDER BY day_of_week ASC, start_period ASC, class_id ASC")).
		WithArgs("tt-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("s-1", "tt-1", "C1", "T1", 1, 0, 0, "101", "theory", "Algebra", "MTH-1", "A", "Dr. Rao", time.Now()))

	sessions, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "C1", sessions[0].ClassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSessionRepositoryListPublishedByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSessionRepository(db)

	columns := []string{"id", "timetable_id", "class_id", "teacher_id", "day_of_week", "start_period", "end_period", "room", "kind", "course_name", "course_code", "section", "faculty_name", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.term_id = $1 AND t.status = $2 AND t.section <> $3")).
		WithArgs("term-1", string(models.TimetableStatusPublished), "A").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("s-9", "tt-9", "C9", "T1", 2, 1, 1, "101", "theory", "Biology", "BIO-1", "B", "Dr. Rao", time.Now()))

	sessions, err := repo.ListPublishedByTerm(context.Background(), "term-1", "A")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "B", sessions[0].Section)
	assert.NoError(t, mock.ExpectationsWereMet())
}
