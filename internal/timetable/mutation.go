package timetable

import (
	"fmt"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// checkPlacement validates placing class as kind at (day, start, room) and returns the periods it
// would occupy. The first failing check decides the error.
func (idx *Index) checkPlacement(class Class, kind Kind, day Day, start int, room string, exclude *SessionKey) ([]int, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown session kind %q", kind))
	}
	if class.ID == "" || class.TeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id and teacher id are required")
	}
	if _, err := idx.position(day, start); err != nil {
		return nil, err
	}
	if !idx.grid.InPool(kind, room) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q is not in the %s pool", room, kind))
	}

	if idx.grid.IsLunch(start) {
		return nil, invalidSpan(day, start, fmt.Sprintf("period %d is the lunch period", start))
	}
	periods, ok := idx.grid.Span(kind, start)
	if !ok {
		next := start + 1
		if !idx.grid.HasPeriod(next) {
			return nil, invalidSpan(day, start, fmt.Sprintf("lab starting at period %d needs period %d, which does not exist", start, next))
		}
		return nil, invalidSpan(day, start, fmt.Sprintf("lab starting at period %d would run into the lunch period %d", start, next))
	}

	if len(idx.LegalStarts(day, kind, exclude)) == 0 {
		return nil, noLegalPlacement(day, kind)
	}

	for _, p := range periods {
		held := idx.holder(day, p)
		if held == nil || (exclude != nil && held.Key() == *exclude) {
			continue
		}
		key := held.Key()
		if held.TeacherID == class.TeacherID {
			return nil, teacherConflict(day, p, class.TeacherID, &key)
		}
		return nil, slotOccupied(day, p, key)
	}
	for _, p := range periods {
		if holder, busy := idx.teacherHold(day, p, class.TeacherID, exclude); busy {
			return nil, teacherConflict(day, p, class.TeacherID, holder)
		}
	}
	for _, p := range periods {
		if holder, busy := idx.roomHold(day, p, room, exclude); busy {
			return nil, roomConflict(day, p, room, holder)
		}
	}
	return periods, nil
}

// Add places a new session of class. Nothing is written unless every check passes.
func (idx *Index) Add(class Class, kind Kind, day Day, start int, room string) (Session, error) {
	periods, err := idx.checkPlacement(class, kind, day, start, room, nil)
	if err != nil {
		return Session{}, err
	}
	session := newSession(class, kind, day, periods, room)
	if err := idx.place(session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Edit moves existing to (day, start, room), keeping its kind. The old cells are only released once
// the new placement has been validated, so a failed edit leaves existing in place.
func (idx *Index) Edit(existing Session, day Day, start int, room string) (Session, error) {
	current, ok := idx.Find(existing.Key())
	if !ok {
		return Session{}, appErrors.Clone(ErrSessionNotFound, fmt.Sprintf("session %s not found", existing.Key()))
	}
	if current.Day == day && current.Start == start && current.Room == room {
		return current, nil
	}

	key := current.Key()
	periods, err := idx.checkPlacement(current.Class(), current.Kind, day, start, room, &key)
	if err != nil {
		return Session{}, err
	}

	replacement := newSession(current.Class(), current.Kind, day, periods, room)
	idx.unplace(current)
	if err := idx.place(replacement); err != nil {
		if restoreErr := idx.place(current); restoreErr != nil {
			return Session{}, appErrors.Wrap(restoreErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore session after rejected edit")
		}
		return Session{}, err
	}
	return replacement, nil
}

// Remove clears every cell of session. It reports whether anything was removed; removing an absent
// session is a no-op.
func (idx *Index) Remove(session Session) bool {
	current, ok := idx.Find(session.Key())
	if !ok {
		return false
	}
	idx.unplace(current)
	return true
}
