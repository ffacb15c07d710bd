package timetable

import "github.com/samber/lo"

// LegalStarts returns, in period order, every period of day at which a session of kind could start.
// Cells held by the session identified by exclude count as free, so an edited session never blocks
// itself. Lunch is never a legal start and a lab never spans lunch or the end of the day.
func (idx *Index) LegalStarts(day Day, kind Kind, exclude *SessionKey) []int {
	if !idx.grid.HasDay(day) || !kind.Valid() {
		return []int{}
	}
	starts := make([]int, 0, len(idx.grid.periods))
	for i := range idx.grid.periods {
		if idx.grid.IsLunch(i) {
			continue
		}
		span, ok := idx.grid.Span(kind, i)
		if !ok {
			continue
		}
		if lo.EveryBy(span, func(p int) bool { return idx.cellFree(day, p, exclude) }) {
			starts = append(starts, i)
		}
	}
	return starts
}

func (idx *Index) cellFree(day Day, period int, exclude *SessionKey) bool {
	s := idx.holder(day, period)
	return s == nil || (exclude != nil && s.Key() == *exclude)
}

// roomHold reports who, if anyone other than exclude, has room at (day, period). A nil holder with
// busy set means an outside reservation.
func (idx *Index) roomHold(day Day, period int, room string, exclude *SessionKey) (*SessionKey, bool) {
	rc := roomCell{cell: Cell{Day: day, Period: period}, room: room}
	if key, ok := idx.rooms[rc]; ok && (exclude == nil || key != *exclude) {
		return &key, true
	}
	if _, ok := idx.reservedRooms[rc]; ok {
		return nil, true
	}
	return nil, false
}

func (idx *Index) teacherHold(day Day, period int, teacherID string, exclude *SessionKey) (*SessionKey, bool) {
	tc := teacherCell{cell: Cell{Day: day, Period: period}, teacherID: teacherID}
	if key, ok := idx.teachers[tc]; ok && (exclude == nil || key != *exclude) {
		return &key, true
	}
	if _, ok := idx.reservedTeachers[tc]; ok {
		return nil, true
	}
	return nil, false
}

// RoomFree reports whether room is uncommitted at every period of day, ignoring the session
// identified by exclude.
func (idx *Index) RoomFree(day Day, periods []int, room string, exclude *SessionKey) bool {
	return !lo.SomeBy(periods, func(p int) bool {
		_, busy := idx.roomHold(day, p, room, exclude)
		return busy
	})
}

// TeacherFree reports whether teacherID is uncommitted at every period of day, ignoring the
// session identified by exclude.
func (idx *Index) TeacherFree(day Day, periods []int, teacherID string, exclude *SessionKey) bool {
	return !lo.SomeBy(periods, func(p int) bool {
		_, busy := idx.teacherHold(day, p, teacherID, exclude)
		return busy
	})
}

// FreeRooms filters the pool for kind down to rooms free for a session starting at start on day.
// The result keeps pool order; an illegal span yields no rooms.
func (idx *Index) FreeRooms(day Day, start int, kind Kind, exclude *SessionKey) []string {
	span, ok := idx.grid.Span(kind, start)
	if !ok || !idx.grid.HasDay(day) {
		return []string{}
	}
	return lo.Filter(idx.grid.PoolFor(kind), func(room string, _ int) bool {
		return idx.RoomFree(day, span, room, exclude)
	})
}
