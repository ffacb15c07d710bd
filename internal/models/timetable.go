package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for stored timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// Timetable captures a versioned weekly timetable for a term-section pair.
type Timetable struct {
	ID        string          `db:"id" json:"id"`
	TermID    string          `db:"term_id" json:"term_id"`
	Section   string          `db:"section" json:"section"`
	Version   int             `db:"version" json:"version"`
	Status    TimetableStatus `db:"status" json:"status"`
	Meta      types.JSONText  `db:"meta" json:"meta"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableSession is one stored session row of a timetable version.
type TimetableSession struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartPeriod int       `db:"start_period" json:"start_period"`
	EndPeriod   int       `db:"end_period" json:"end_period"`
	Room        string    `db:"room" json:"room"`
	Kind        string    `db:"kind" json:"kind"`
	CourseName  string    `db:"course_name" json:"course_name"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	Section     string    `db:"section" json:"section"`
	FacultyName string    `db:"faculty_name" json:"faculty_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ClassOffering is a roster entry: one course taught to a section by one teacher, with its weekly
// theory and lab demand.
type ClassOffering struct {
	ID          string `db:"id" json:"id"`
	TermID      string `db:"term_id" json:"term_id"`
	Section     string `db:"section" json:"section"`
	CourseName  string `db:"course_name" json:"course_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	FacultyName string `db:"faculty_name" json:"faculty_name"`
	TheoryCount int    `db:"theory_count" json:"theory_count"`
	LabCount    int    `db:"lab_count" json:"lab_count"`
	Position    int    `db:"position" json:"position"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	TermID  string
	Section string
	Status  TimetableStatus
}
