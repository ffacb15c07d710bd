package timetable

import (
	"fmt"
	"slices"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Cell addresses one period of one day.
type Cell struct {
	Day    Day `json:"day"`
	Period int `json:"period"`
}

// Reservation marks a room and/or teacher as committed by another timetable at a cell.
// Reservations never fill grid cells; they only feed the room and teacher checks.
type Reservation struct {
	Day       Day    `json:"day"`
	Period    int    `json:"period"`
	Room      string `json:"room,omitempty"`
	TeacherID string `json:"teacherId,omitempty"`
	Source    string `json:"source"`
}

type roomCell struct {
	cell Cell
	room string
}

type teacherCell struct {
	cell      Cell
	teacherID string
}

// Index is the occupancy index of one timetable: at most one session per (day, period), plus the
// room and teacher commitments derived from those sessions and from outside reservations.
// It is not safe for concurrent use; callers serialise writers.
type Index struct {
	grid  *Grid
	cells [][]*Session

	rooms    map[roomCell]SessionKey
	teachers map[teacherCell]SessionKey

	reservedRooms    map[roomCell]string
	reservedTeachers map[teacherCell]string
}

// NewIndex returns an empty index over grid.
func NewIndex(grid *Grid) *Index {
	cells := make([][]*Session, len(grid.days))
	for i := range cells {
		cells[i] = make([]*Session, len(grid.periods))
	}
	return &Index{
		grid:             grid,
		cells:            cells,
		rooms:            make(map[roomCell]SessionKey),
		teachers:         make(map[teacherCell]SessionKey),
		reservedRooms:    make(map[roomCell]string),
		reservedTeachers: make(map[teacherCell]string),
	}
}

// Grid returns the week definition the index was built on.
func (idx *Index) Grid() *Grid { return idx.grid }

func (idx *Index) position(day Day, period int) (int, error) {
	pos, ok := idx.grid.DayPosition(day)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %s is not part of the week", day))
	}
	if !idx.grid.HasPeriod(period) {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period %d does not exist", period))
	}
	return pos, nil
}

// Get returns the session holding (day, period).
func (idx *Index) Get(day Day, period int) (Session, bool) {
	pos, err := idx.position(day, period)
	if err != nil {
		return Session{}, false
	}
	if s := idx.cells[pos][period]; s != nil {
		return *s, true
	}
	return Session{}, false
}

func (idx *Index) holder(day Day, period int) *Session {
	pos, err := idx.position(day, period)
	if err != nil {
		return nil
	}
	return idx.cells[pos][period]
}

// Put stores session at (day, period), which must be one of the session's cells. The session is
// validated as a whole and every cell it covers is written, so a lab always holds both of its
// periods. A different session on any of those cells fails with a slot-occupied error; a session
// with the same identity is replaced.
func (idx *Index) Put(day Day, period int, session Session) error {
	if _, err := idx.position(day, period); err != nil {
		return err
	}
	if !session.Occupies(day, period) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session %s does not cover %s period %d", session.Key(), day, period))
	}
	if err := idx.checkShape(session); err != nil {
		return err
	}
	key := session.Key()
	for _, p := range session.Periods {
		if held := idx.holder(session.Day, p); held != nil && held.Key() != key {
			return slotOccupied(session.Day, p, held.Key())
		}
	}
	for _, p := range session.Periods {
		if holder, busy := idx.teacherHold(session.Day, p, session.TeacherID, &key); busy {
			return teacherConflict(session.Day, p, session.TeacherID, holder)
		}
	}
	for _, p := range session.Periods {
		if holder, busy := idx.roomHold(session.Day, p, session.Room, &key); busy {
			return roomConflict(session.Day, p, session.Room, holder)
		}
	}
	return idx.place(session)
}

// checkShape rejects sessions that could not have come out of Add: unknown kind, missing
// identity, a room outside the kind's pool, or periods other than the kind's span from Start.
func (idx *Index) checkShape(session Session) error {
	if !session.Kind.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown session kind %q", session.Kind))
	}
	if session.ClassID == "" || session.TeacherID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "class id and teacher id are required")
	}
	if !idx.grid.InPool(session.Kind, session.Room) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q is not in the %s pool", session.Room, session.Kind))
	}
	if idx.grid.IsLunch(session.Start) {
		return invalidSpan(session.Day, session.Start, fmt.Sprintf("period %d is the lunch period", session.Start))
	}
	span, ok := idx.grid.Span(session.Kind, session.Start)
	if !ok || !slices.Equal(span, session.Periods) {
		return invalidSpan(session.Day, session.Start, fmt.Sprintf("%s session starting at period %d cannot cover periods %v", session.Kind, session.Start, session.Periods))
	}
	return nil
}

// Clear empties every cell of the session holding (day, period). Absent cells are ignored.
func (idx *Index) Clear(day Day, period int) {
	if held := idx.holder(day, period); held != nil {
		idx.unplace(*held)
	}
}

func (idx *Index) write(pos, period int, s *Session) {
	idx.release(pos, period)
	idx.cells[pos][period] = s
	cell := Cell{Day: idx.grid.days[pos], Period: period}
	idx.rooms[roomCell{cell: cell, room: s.Room}] = s.Key()
	idx.teachers[teacherCell{cell: cell, teacherID: s.TeacherID}] = s.Key()
}

func (idx *Index) release(pos, period int) {
	s := idx.cells[pos][period]
	if s == nil {
		return
	}
	cell := Cell{Day: idx.grid.days[pos], Period: period}
	delete(idx.rooms, roomCell{cell: cell, room: s.Room})
	delete(idx.teachers, teacherCell{cell: cell, teacherID: s.TeacherID})
	idx.cells[pos][period] = nil
}

// AllOccupiedPeriodsOf lists the cells session covers.
func (idx *Index) AllOccupiedPeriodsOf(session Session) []Cell {
	cells := make([]Cell, 0, len(session.Periods))
	for _, p := range session.Periods {
		cells = append(cells, Cell{Day: session.Day, Period: p})
	}
	return cells
}

// place writes every cell of session or none of them. Callers have validated the placement; a
// different session on any cell still aborts before anything is written.
func (idx *Index) place(session Session) error {
	pos, err := idx.position(session.Day, session.Start)
	if err != nil {
		return err
	}
	key := session.Key()
	for _, p := range session.Periods {
		if !idx.grid.HasPeriod(p) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period %d does not exist", p))
		}
		if held := idx.cells[pos][p]; held != nil && held.Key() != key {
			return slotOccupied(session.Day, p, held.Key())
		}
	}
	if prior := idx.cells[pos][session.Start]; prior != nil {
		idx.unplace(*prior)
	}
	s := session
	for _, p := range s.Periods {
		idx.write(pos, p, &s)
	}
	return nil
}

// unplace clears the cells still held by session's identity.
func (idx *Index) unplace(session Session) {
	key := session.Key()
	for _, cell := range idx.AllOccupiedPeriodsOf(session) {
		if held := idx.holder(cell.Day, cell.Period); held != nil && held.Key() == key {
			pos, _ := idx.grid.DayPosition(cell.Day)
			idx.release(pos, cell.Period)
		}
	}
}

// Find looks a session up by identity.
func (idx *Index) Find(key SessionKey) (Session, bool) {
	s := idx.holder(key.Day, key.Start)
	if s == nil || s.Key() != key {
		return Session{}, false
	}
	return *s, true
}

// Sessions lists every session once, ordered by day, start period and class.
func (idx *Index) Sessions() []Session {
	var out []Session
	for pos, day := range idx.grid.days {
		for period, s := range idx.cells[pos] {
			if s == nil || s.Start != period || s.Day != day {
				continue
			}
			out = append(out, *s)
		}
	}
	return out
}

// Len returns the number of sessions held.
func (idx *Index) Len() int { return len(idx.Sessions()) }

// Reserve records an outside commitment. It fails when the room or teacher is already held by a
// session of this index at that cell.
func (idx *Index) Reserve(r Reservation) error {
	if _, err := idx.position(r.Day, r.Period); err != nil {
		return err
	}
	cell := Cell{Day: r.Day, Period: r.Period}
	rc := roomCell{cell: cell, room: r.Room}
	tc := teacherCell{cell: cell, teacherID: r.TeacherID}
	if r.Room != "" {
		if holder, ok := idx.rooms[rc]; ok {
			return roomConflict(r.Day, r.Period, r.Room, &holder)
		}
	}
	if r.TeacherID != "" {
		if holder, ok := idx.teachers[tc]; ok {
			return teacherConflict(r.Day, r.Period, r.TeacherID, &holder)
		}
	}
	if _, ok := idx.reservedRooms[rc]; r.Room != "" && !ok {
		idx.reservedRooms[rc] = r.Source
	}
	if _, ok := idx.reservedTeachers[tc]; r.TeacherID != "" && !ok {
		idx.reservedTeachers[tc] = r.Source
	}
	return nil
}

// Reservations returns the number of outside room and teacher commitments.
func (idx *Index) Reservations() int {
	return len(idx.reservedRooms) + len(idx.reservedTeachers)
}

// Clone returns an independent copy of the index.
func (idx *Index) Clone() *Index {
	out := NewIndex(idx.grid)
	for pos := range idx.cells {
		copy(out.cells[pos], idx.cells[pos])
	}
	for k, v := range idx.rooms {
		out.rooms[k] = v
	}
	for k, v := range idx.teachers {
		out.teachers[k] = v
	}
	for k, v := range idx.reservedRooms {
		out.reservedRooms[k] = v
	}
	for k, v := range idx.reservedTeachers {
		out.reservedTeachers[k] = v
	}
	return out
}

// Load places previously persisted sessions, validating each as an add. Either every session is
// placed or the index is left unchanged.
func (idx *Index) Load(sessions []Session) error {
	staged := idx.Clone()
	for _, s := range sessions {
		if _, err := staged.Add(s.Class(), s.Kind, s.Day, s.Start, s.Room); err != nil {
			return err
		}
	}
	*idx = *staged
	return nil
}
