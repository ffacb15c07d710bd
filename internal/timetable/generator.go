package timetable

import "fmt"

// Requirement is the weekly demand of one class as supplied by the course registry.
type Requirement struct {
	Class  Class `json:"class"`
	Theory int   `json:"theory"`
	Labs   int   `json:"labs"`
}

// Unplaced is a required session the generator could not fit anywhere in the week.
type Unplaced struct {
	Class  Class  `json:"class"`
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
}

// Result is the outcome of a generation run.
type Result struct {
	Index    *Index
	Placed   []Session
	Unplaced []Unplaced
}

// Generate builds a fresh timetable over grid for reqs.
func Generate(grid *Grid, reqs []Requirement) *Result {
	return GenerateInto(NewIndex(grid), reqs)
}

// GenerateInto places reqs on top of whatever idx already holds, including reservations.
//
// Classes are taken in input order and labs before theory within a class. Each session goes to the
// first day, in week order, that the class has not used yet and that offers a legal start with the
// teacher free and a room available; when every such day is exhausted the already-used days are
// tried. The first free room in pool order is taken. A session that fits nowhere is reported in
// Unplaced and the run carries on. Negative counts are treated as zero.
func GenerateInto(idx *Index, reqs []Requirement) *Result {
	result := &Result{Index: idx}
	for _, req := range reqs {
		used := make(map[Day]bool)
		for _, s := range idx.Sessions() {
			if s.ClassID == req.Class.ID {
				used[s.Day] = true
			}
		}

		labs, theory := max(req.Labs, 0), max(req.Theory, 0)
		demand := make([]Kind, 0, labs+theory)
		for i := 0; i < labs; i++ {
			demand = append(demand, KindLab)
		}
		for i := 0; i < theory; i++ {
			demand = append(demand, KindTheory)
		}

		for _, kind := range demand {
			if req.Class.ID == "" || req.Class.TeacherID == "" {
				result.Unplaced = append(result.Unplaced, Unplaced{Class: req.Class, Kind: kind, Reason: "class id and teacher id are required"})
				continue
			}
			session, ok := idx.firstFit(req.Class, kind, used)
			if !ok {
				result.Unplaced = append(result.Unplaced, Unplaced{
					Class:  req.Class,
					Kind:   kind,
					Reason: fmt.Sprintf("no legal %s placement left in the week", kind),
				})
				continue
			}
			used[session.Day] = true
			result.Placed = append(result.Placed, session)
		}
	}
	return result
}

func (idx *Index) firstFit(class Class, kind Kind, used map[Day]bool) (Session, bool) {
	for _, revisit := range []bool{false, true} {
		for _, day := range idx.grid.days {
			if used[day] != revisit {
				continue
			}
			for _, start := range idx.LegalStarts(day, kind, nil) {
				span, _ := idx.grid.Span(kind, start)
				if !idx.TeacherFree(day, span, class.TeacherID, nil) {
					continue
				}
				rooms := idx.FreeRooms(day, start, kind, nil)
				if len(rooms) == 0 {
					continue
				}
				session, err := idx.Add(class, kind, day, start, rooms[0])
				if err != nil {
					continue
				}
				return session, true
			}
		}
	}
	return Session{}, false
}
