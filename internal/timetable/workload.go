package timetable

import (
	"sort"

	"github.com/samber/lo"
)

// SessionDetail is one teaching block in a workload report.
type SessionDetail struct {
	ClassID    string `json:"classId"`
	CourseName string `json:"courseName"`
	CourseCode string `json:"courseCode"`
	Section    string `json:"section"`
	Kind       Kind   `json:"kind"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Room       string `json:"room"`
	Periods    int    `json:"periods"`
}

// DayWorkload aggregates one day of a teacher's week.
type DayWorkload struct {
	Day       Day             `json:"day"`
	Sessions  []SessionDetail `json:"sessions"`
	Morning   int             `json:"morningPeriods"`
	Afternoon int             `json:"afternoonPeriods"`
	Periods   int             `json:"periods"`
}

// Workload is the per-teacher projection consumed by reports.
type Workload struct {
	TeacherID     string        `json:"teacherId"`
	FacultyName   string        `json:"facultyName"`
	Days          []DayWorkload `json:"days"`
	Morning       int           `json:"morningPeriods"`
	Afternoon     int           `json:"afternoonPeriods"`
	TheoryPeriods int           `json:"theoryPeriods"`
	LabPeriods    int           `json:"labPeriods"`
	TotalPeriods  int           `json:"totalPeriods"`
	TotalSessions int           `json:"totalSessions"`
}

// WorkloadFor projects sessions onto teacherID's week. Every grid day is present, empty when the
// teacher has nothing that day; sessions on days outside the grid are ignored.
func WorkloadFor(grid *Grid, teacherID string, sessions []Session) Workload {
	days := make([]DayWorkload, len(grid.days))
	for i, day := range grid.days {
		days[i] = DayWorkload{Day: day, Sessions: []SessionDetail{}}
	}
	out := Workload{TeacherID: teacherID}

	for _, s := range sessions {
		if s.TeacherID != teacherID {
			continue
		}
		pos, ok := grid.DayPosition(s.Day)
		if !ok {
			continue
		}
		if out.FacultyName == "" {
			out.FacultyName = s.FacultyName
		}
		detail := SessionDetail{
			ClassID:    s.ClassID,
			CourseName: s.CourseName,
			CourseCode: s.CourseCode,
			Section:    s.Section,
			Kind:       s.Kind,
			Start:      s.Start,
			End:        s.End,
			Room:       s.Room,
			Periods:    len(s.Periods),
		}
		if p, ok := grid.Period(s.Start); ok {
			detail.StartTime = p.Start
		}
		if p, ok := grid.Period(s.End); ok {
			detail.EndTime = p.End
		}

		day := &days[pos]
		day.Sessions = append(day.Sessions, detail)
		for _, p := range s.Periods {
			if grid.IsMorning(p) {
				day.Morning++
			} else {
				day.Afternoon++
			}
		}
		day.Periods += len(s.Periods)
		if s.Kind == KindLab {
			out.LabPeriods += len(s.Periods)
		} else {
			out.TheoryPeriods += len(s.Periods)
		}
		out.TotalSessions++
	}

	for i := range days {
		sort.SliceStable(days[i].Sessions, func(a, b int) bool {
			if days[i].Sessions[a].Start == days[i].Sessions[b].Start {
				return days[i].Sessions[a].ClassID < days[i].Sessions[b].ClassID
			}
			return days[i].Sessions[a].Start < days[i].Sessions[b].Start
		})
		out.Morning += days[i].Morning
		out.Afternoon += days[i].Afternoon
		out.TotalPeriods += days[i].Periods
	}
	out.Days = days
	return out
}

// WorkloadFor projects the index onto teacherID's week.
func (idx *Index) WorkloadFor(teacherID string) Workload {
	return WorkloadFor(idx.grid, teacherID, idx.Sessions())
}

// Teachers lists the teacher ids appearing in sessions, in first-seen order.
func Teachers(sessions []Session) []string {
	return lo.Uniq(lo.Map(sessions, func(s Session, _ int) string { return s.TeacherID }))
}
