package timetable

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Kind distinguishes single-period theory sessions from two-period labs.
type Kind string

const (
	KindTheory Kind = "theory"
	KindLab    Kind = "lab"
)

// Span is the number of periods a session of this kind occupies.
func (k Kind) Span() int {
	if k == KindLab {
		return 2
	}
	return 1
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k == KindTheory || k == KindLab }

// ParseKind normalises a kind name.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindTheory, "":
		return KindTheory, nil
	case KindLab:
		return KindLab, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown session kind %q", raw))
}

// Class is a teaching assignment supplied by the course registry. Only ID and TeacherID take part in
// conflict logic; the rest is copied onto sessions for display.
type Class struct {
	ID          string `json:"classId"`
	TeacherID   string `json:"teacherId"`
	CourseName  string `json:"courseName"`
	CourseCode  string `json:"courseCode"`
	Section     string `json:"section"`
	FacultyName string `json:"facultyName"`
}

// SessionKey identifies a session: the class it belongs to and where it starts.
type SessionKey struct {
	ClassID string `json:"classId"`
	Day     Day    `json:"day"`
	Start   int    `json:"start"`
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s@%s/%d", k.ClassID, k.Day, k.Start)
}

// Session is one scheduled occurrence of a class.
type Session struct {
	ClassID     string `json:"classId"`
	TeacherID   string `json:"teacherId"`
	Day         Day    `json:"day"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Room        string `json:"room"`
	Kind        Kind   `json:"kind"`
	Periods     []int  `json:"periods"`
	CourseName  string `json:"courseName"`
	CourseCode  string `json:"courseCode"`
	Section     string `json:"section"`
	FacultyName string `json:"facultyName"`
}

// Key returns the session identity.
func (s Session) Key() SessionKey {
	return SessionKey{ClassID: s.ClassID, Day: s.Day, Start: s.Start}
}

// Occupies reports whether the session holds period on day.
func (s Session) Occupies(day Day, period int) bool {
	if s.Day != day {
		return false
	}
	for _, p := range s.Periods {
		if p == period {
			return true
		}
	}
	return false
}

// Class rebuilds the roster reference the session was created from, display suffixes stripped.
func (s Session) Class() Class {
	name, code := s.CourseName, s.CourseCode
	if s.Kind == KindLab {
		name = strings.TrimSuffix(name, labNameSuffix)
		code = strings.TrimSuffix(code, labCodeSuffix)
	}
	return Class{
		ID:          s.ClassID,
		TeacherID:   s.TeacherID,
		CourseName:  name,
		CourseCode:  code,
		Section:     s.Section,
		FacultyName: s.FacultyName,
	}
}

const (
	labNameSuffix = " (Lab)"
	labCodeSuffix = "-L"
)

func newSession(class Class, kind Kind, day Day, periods []int, room string) Session {
	name, code := class.CourseName, class.CourseCode
	if kind == KindLab {
		name += labNameSuffix
		code += labCodeSuffix
	}
	return Session{
		ClassID:     class.ID,
		TeacherID:   class.TeacherID,
		Day:         day,
		Start:       periods[0],
		End:         periods[len(periods)-1],
		Room:        room,
		Kind:        kind,
		Periods:     append([]int(nil), periods...),
		CourseName:  name,
		CourseCode:  code,
		Section:     class.Section,
		FacultyName: class.FacultyName,
	}
}
