package timetable

import (
	"errors"
	"fmt"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// ConflictError carries the coordinates of a rejected placement so a user can pick an alternative.
type ConflictError struct {
	Code      string      `json:"code"`
	Day       Day         `json:"day"`
	Period    int         `json:"period"`
	Room      string      `json:"room,omitempty"`
	TeacherID string      `json:"teacherId,omitempty"`
	Holder    *SessionKey `json:"holder,omitempty"`
	Detail    string      `json:"detail"`
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Detail
}

// ConflictDetail extracts placement detail from an engine error.
func ConflictDetail(err error) (*ConflictError, bool) {
	var detail *ConflictError
	if errors.As(err, &detail) {
		return detail, true
	}
	return nil, false
}

func placementError(kind *appErrors.Error, detail *ConflictError) error {
	detail.Code = kind.Code
	return appErrors.Wrap(detail, kind.Code, kind.Status, fmt.Sprintf("%s: %s", kind.Message, detail.Detail))
}

func slotOccupied(day Day, period int, holder SessionKey) error {
	return placementError(appErrors.ErrSlotOccupied, &ConflictError{
		Day:    day,
		Period: period,
		Holder: &holder,
		Detail: fmt.Sprintf("%s period %d is held by %s", day, period, holder),
	})
}

func teacherConflict(day Day, period int, teacherID string, holder *SessionKey) error {
	detail := fmt.Sprintf("teacher %s is already teaching on %s period %d", teacherID, day, period)
	if holder != nil {
		detail = fmt.Sprintf("%s (%s)", detail, holder)
	}
	return placementError(appErrors.ErrTeacherConflict, &ConflictError{
		Day:       day,
		Period:    period,
		TeacherID: teacherID,
		Holder:    holder,
		Detail:    detail,
	})
}

func roomConflict(day Day, period int, room string, holder *SessionKey) error {
	detail := fmt.Sprintf("room %s is committed on %s period %d", room, day, period)
	if holder != nil {
		detail = fmt.Sprintf("%s to %s", detail, holder)
	}
	return placementError(appErrors.ErrRoomConflict, &ConflictError{
		Day:    day,
		Period: period,
		Room:   room,
		Holder: holder,
		Detail: detail,
	})
}

func invalidSpan(day Day, period int, reason string) error {
	return placementError(appErrors.ErrInvalidSpan, &ConflictError{
		Day:    day,
		Period: period,
		Detail: reason,
	})
}

func noLegalPlacement(day Day, kind Kind) error {
	return placementError(appErrors.ErrNoLegalPlacement, &ConflictError{
		Day:    day,
		Period: -1,
		Detail: fmt.Sprintf("no free %s start left on %s", kind, day),
	})
}

// ErrSessionNotFound is returned when an edit or lookup names a session the index does not hold.
var ErrSessionNotFound = appErrors.New("SESSION_NOT_FOUND", appErrors.ErrNotFound.Status, "session not found")
