package timetable

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Day is a weekday, 1-based from Monday.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = map[Day]string{
	Monday:    "MONDAY",
	Tuesday:   "TUESDAY",
	Wednesday: "WEDNESDAY",
	Thursday:  "THURSDAY",
	Friday:    "FRIDAY",
	Saturday:  "SATURDAY",
	Sunday:    "SUNDAY",
}

func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DAY(%d)", int(d))
}

// Valid reports whether d is one of the seven weekdays.
func (d Day) Valid() bool {
	_, ok := dayNames[d]
	return ok
}

// MarshalText encodes the day by name.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts a day name or a 1-7 index.
func (d *Day) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	day, err := ParseDay(raw)
	if err != nil {
		return err
	}
	*d = day
	return nil
}

// ParseDay accepts a weekday name in any case, a three letter prefix or a 1-7 index.
func ParseDay(raw string) (Day, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "day is required")
	}
	for day, name := range dayNames {
		if value == name || (len(value) == 3 && strings.HasPrefix(name, value)) {
			return day, nil
		}
	}
	var idx int
	if _, err := fmt.Sscanf(value, "%d", &idx); err == nil && Day(idx).Valid() {
		return Day(idx), nil
	}
	return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", raw))
}

// Period is one fixed interval of the daily grid.
type Period struct {
	Index int    `json:"index"`
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
	Lunch bool   `json:"lunch"`
}

// Grid is the immutable week structure plus the room pools a timetable draws from.
type Grid struct {
	days    []Day
	periods []Period
	rooms   []string
	labs    []string

	dayPos map[Day]int
	lunch  int
}

// NewGrid validates and freezes a week definition.
func NewGrid(days []Day, periods []Period, rooms, labs []string) (*Grid, error) {
	if len(days) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid requires at least one day")
	}
	dayPos := make(map[Day]int, len(days))
	for i, day := range days {
		if !day.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid day %d", int(day)))
		}
		if _, dup := dayPos[day]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate day %s", day))
		}
		dayPos[day] = i
	}

	if len(periods) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid requires at least two periods")
	}
	lunch := -1
	for i, p := range periods {
		if p.Index != i {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period indices must be contiguous from 0, got %d at position %d", p.Index, i))
		}
		if p.Lunch {
			if lunch >= 0 {
				return nil, appErrors.Clone(appErrors.ErrValidation, "grid must have exactly one lunch period")
			}
			lunch = i
		}
	}
	if lunch < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grid must have exactly one lunch period")
	}

	if len(rooms) == 0 || len(labs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room and lab pools must not be empty")
	}
	if dups := lo.FindDuplicates(append(append([]string{}, rooms...), labs...)); len(dups) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("room %q listed twice or in both pools", dups[0]))
	}
	if lo.Contains(rooms, "") || lo.Contains(labs, "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room names must not be empty")
	}

	return &Grid{
		days:    append([]Day(nil), days...),
		periods: append([]Period(nil), periods...),
		rooms:   append([]string(nil), rooms...),
		labs:    append([]string(nil), labs...),
		dayPos:  dayPos,
		lunch:   lunch,
	}, nil
}

// DefaultGrid is the reference week: Monday to Saturday, eight 50 minute periods with lunch at index 4.
func DefaultGrid() *Grid {
	periods, err := BuildPeriods(8, 4, "09:00", 50*time.Minute)
	if err != nil {
		panic(err)
	}
	rooms := []string{"101", "102", "103", "104", "105", "106"}
	labs := []string{"LAB-1", "LAB-2", "LAB-3"}
	grid, err := NewGrid([]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}, periods, rooms, labs)
	if err != nil {
		panic(err)
	}
	return grid
}

// BuildPeriods lays out count back-to-back periods from dayStart ("HH:MM").
func BuildPeriods(count, lunchIndex int, dayStart string, length time.Duration) ([]Period, error) {
	if count <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period count must be positive, got %d", count))
	}
	if length <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period length must be positive, got %s", length))
	}
	start, err := time.Parse("15:04", strings.TrimSpace(dayStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("day start %q is not HH:MM", dayStart))
	}
	periods := make([]Period, 0, count)
	for i := 0; i < count; i++ {
		end := start.Add(length)
		label := fmt.Sprintf("Period %d", i+1)
		if i == lunchIndex {
			label = "Lunch"
		}
		periods = append(periods, Period{
			Index: i,
			Start: start.Format("15:04"),
			End:   end.Format("15:04"),
			Label: label,
			Lunch: i == lunchIndex,
		})
		start = end
	}
	return periods, nil
}

// Days returns the week in order.
func (g *Grid) Days() []Day { return append([]Day(nil), g.days...) }

// Periods returns the daily periods in order.
func (g *Grid) Periods() []Period { return append([]Period(nil), g.periods...) }

// OrdinaryRooms returns the theory room pool.
func (g *Grid) OrdinaryRooms() []string { return append([]string(nil), g.rooms...) }

// LabRooms returns the lab room pool.
func (g *Grid) LabRooms() []string { return append([]string(nil), g.labs...) }

// PeriodCount is the number of periods per day, lunch included.
func (g *Grid) PeriodCount() int { return len(g.periods) }

// LunchIndex returns the index of the lunch period.
func (g *Grid) LunchIndex() int { return g.lunch }

// DayPosition returns the position of day in the week, or false when the grid does not contain it.
func (g *Grid) DayPosition(day Day) (int, bool) {
	pos, ok := g.dayPos[day]
	return pos, ok
}

// HasDay reports whether day is part of the week.
func (g *Grid) HasDay(day Day) bool {
	_, ok := g.dayPos[day]
	return ok
}

// HasPeriod reports whether idx addresses a period.
func (g *Grid) HasPeriod(idx int) bool { return idx >= 0 && idx < len(g.periods) }

// IsLunch reports whether idx is the lunch period.
func (g *Grid) IsLunch(idx int) bool { return idx == g.lunch }

// IsMorning reports whether idx falls before lunch.
func (g *Grid) IsMorning(idx int) bool { return idx < g.lunch }

// Period returns the period at idx.
func (g *Grid) Period(idx int) (Period, bool) {
	if !g.HasPeriod(idx) {
		return Period{}, false
	}
	return g.periods[idx], true
}

// PoolFor returns the room pool matching kind.
func (g *Grid) PoolFor(kind Kind) []string {
	if kind == KindLab {
		return g.LabRooms()
	}
	return g.OrdinaryRooms()
}

// InPool reports whether room belongs to the pool matching kind.
func (g *Grid) InPool(kind Kind, room string) bool {
	if kind == KindLab {
		return lo.Contains(g.labs, room)
	}
	return lo.Contains(g.rooms, room)
}

// Span returns the periods a session of kind starting at start would occupy, or false when the
// span leaves the day or touches lunch.
func (g *Grid) Span(kind Kind, start int) ([]int, bool) {
	periods := make([]int, 0, kind.Span())
	for i := 0; i < kind.Span(); i++ {
		idx := start + i
		if !g.HasPeriod(idx) || g.IsLunch(idx) {
			return nil, false
		}
		periods = append(periods, idx)
	}
	return periods, true
}
