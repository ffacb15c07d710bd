package timetable

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestAddTheoryThenPeriodConflict(t *testing.T) {
	idx := NewIndex(DefaultGrid())

	s, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 0, "101")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, s.Periods)
	assert.Equal(t, 0, s.End)
	assert.Equal(t, "Course C1", s.CourseName)

	_, err = idx.Add(class("C2", "T2"), KindTheory, Monday, 0, "102")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSlotOccupied))
	detail, ok := ConflictDetail(err)
	require.True(t, ok)
	assert.Equal(t, Monday, detail.Day)
	assert.Equal(t, 0, detail.Period)
	require.NotNil(t, detail.Holder)
	assert.Equal(t, "C1", detail.Holder.ClassID)
	assertInvariants(t, idx)
}

func TestAddLabAcrossLunchRejected(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	lab := class("L1", "T4")

	_, err := idx.Add(lab, KindLab, Monday, 3, "LAB-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidSpan))
	assert.Equal(t, 0, idx.Len())

	s, err := idx.Add(lab, KindLab, Monday, 5, "LAB-1")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, s.Periods)
	assert.Equal(t, 6, s.End)
	assert.Equal(t, "Course L1 (Lab)", s.CourseName)
	assert.Equal(t, "CS-L1-L", s.CourseCode)
	assertInvariants(t, idx)
}

func TestAddSameTeacherDifferentRoomRejected(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	_, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 0, "101")
	require.NoError(t, err)

	_, err = idx.Add(class("C3", "T1"), KindTheory, Monday, 0, "103")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTeacherConflict))
	detail, ok := ConflictDetail(err)
	require.True(t, ok)
	assert.Equal(t, "T1", detail.TeacherID)
}

func TestAddSpanErrors(t *testing.T) {
	idx := NewIndex(DefaultGrid())

	_, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 4, "101")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidSpan), "theory on lunch")

	_, err = idx.Add(class("L1", "T1"), KindLab, Monday, 4, "LAB-1")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidSpan), "lab starting on lunch")

	_, err = idx.Add(class("L1", "T1"), KindLab, Monday, 7, "LAB-1")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidSpan), "lab past the last period")
	detail, ok := ConflictDetail(err)
	require.True(t, ok)
	assert.Contains(t, detail.Detail, "does not exist")
}

func TestAddValidation(t *testing.T) {
	idx := NewIndex(DefaultGrid())

	cases := map[string]func() error{
		"lab room for theory": func() error {
			_, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 0, "LAB-1")
			return err
		},
		"ordinary room for lab": func() error {
			_, err := idx.Add(class("L1", "T1"), KindLab, Monday, 0, "101")
			return err
		},
		"day outside week": func() error {
			_, err := idx.Add(class("C1", "T1"), KindTheory, Sunday, 0, "101")
			return err
		},
		"period outside day": func() error {
			_, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 8, "101")
			return err
		},
		"missing teacher": func() error {
			_, err := idx.Add(Class{ID: "C1"}, KindTheory, Monday, 0, "101")
			return err
		},
		"unknown kind": func() error {
			_, err := idx.Add(class("C1", "T1"), Kind("seminar"), Monday, 0, "101")
			return err
		},
	}
	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			err := run()
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}
	assert.Equal(t, 0, idx.Len())
}

func TestAddLabBlockedOnSecondPeriod(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	_, err := idx.Add(class("C2", "T2"), KindTheory, Monday, 6, "101")
	require.NoError(t, err)

	_, err = idx.Add(class("L1", "T1"), KindLab, Monday, 5, "LAB-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSlotOccupied))
	detail, _ := ConflictDetail(err)
	assert.Equal(t, 6, detail.Period)
	_, ok := idx.Get(Monday, 5)
	assert.False(t, ok)
}

func TestAddNoLegalPlacement(t *testing.T) {
	grid, err := NewGrid([]Day{Monday}, periodsOf(t, 3, 1, "08:00", time.Hour), []string{"R1", "R2"}, []string{"L1"})
	require.NoError(t, err)
	idx := NewIndex(grid)
	_, err = idx.Add(class("C1", "T1"), KindTheory, Monday, 0, "R1")
	require.NoError(t, err)
	_, err = idx.Add(class("C2", "T2"), KindTheory, Monday, 2, "R1")
	require.NoError(t, err)

	assert.Empty(t, idx.LegalStarts(Monday, KindTheory, nil))
	_, err = idx.Add(class("C3", "T3"), KindTheory, Monday, 0, "R2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNoLegalPlacement))
}

func TestAddHonoursReservations(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	require.NoError(t, idx.Reserve(Reservation{Day: Monday, Period: 1, Room: "101", Source: "other"}))
	require.NoError(t, idx.Reserve(Reservation{Day: Monday, Period: 2, TeacherID: "T1", Source: "other"}))

	_, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 1, "101")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRoomConflict))
	detail, _ := ConflictDetail(err)
	assert.Equal(t, "101", detail.Room)
	assert.Nil(t, detail.Holder)

	_, err = idx.Add(class("C1", "T1"), KindTheory, Monday, 2, "102")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTeacherConflict))

	_, err = idx.Add(class("C1", "T1"), KindTheory, Monday, 1, "102")
	require.NoError(t, err)
	assertInvariants(t, idx)
}

func TestEditMovesSession(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	s, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 0, "101")
	require.NoError(t, err)

	moved, err := idx.Edit(s, Tuesday, 0, "101")
	require.NoError(t, err)
	assert.Equal(t, Tuesday, moved.Day)
	assert.Equal(t, KindTheory, moved.Kind)
	assert.Equal(t, "Course C1", moved.CourseName)

	_, ok := idx.Get(Monday, 0)
	assert.False(t, ok)
	held, ok := idx.Get(Tuesday, 0)
	require.True(t, ok)
	assert.Equal(t, "C1", held.ClassID)
	assertInvariants(t, idx)
}

func TestEditFailureKeepsOriginal(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	s, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 0, "101")
	require.NoError(t, err)
	_, err = idx.Add(class("C2", "T2"), KindTheory, Tuesday, 0, "102")
	require.NoError(t, err)
	before := idx.Sessions()

	_, err = idx.Edit(s, Tuesday, 0, "101")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSlotOccupied))

	assert.Equal(t, before, idx.Sessions())
	kept, ok := idx.Find(s.Key())
	require.True(t, ok)
	assert.Equal(t, Monday, kept.Day)
	assert.False(t, idx.RoomFree(Monday, []int{0}, "101", nil))
}

func TestEditSamePlacementIsNoop(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	s, err := idx.Add(class("L1", "T1"), KindLab, Friday, 5, "LAB-2")
	require.NoError(t, err)
	before := idx.Sessions()

	same, err := idx.Edit(s, Friday, 5, "LAB-2")
	require.NoError(t, err)
	assert.Equal(t, s, same)
	assert.Equal(t, before, idx.Sessions())
}

func TestEditLabOverlappingItself(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	s, err := idx.Add(class("L1", "T1"), KindLab, Monday, 5, "LAB-1")
	require.NoError(t, err)

	moved, err := idx.Edit(s, Monday, 6, "LAB-1")
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7}, moved.Periods)
	assert.Equal(t, KindLab, moved.Kind)
	assert.Equal(t, "Course L1 (Lab)", moved.CourseName)
	_, ok := idx.Get(Monday, 5)
	assert.False(t, ok)
	assert.Equal(t, 1, idx.Len())
	assertInvariants(t, idx)

	_, err = idx.Edit(moved, Monday, 3, "LAB-1")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidSpan))
	_, ok = idx.Find(moved.Key())
	assert.True(t, ok)
}

func TestEditChangesRoomOnly(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	s, err := idx.Add(class("C1", "T1"), KindTheory, Monday, 0, "101")
	require.NoError(t, err)
	require.NoError(t, idx.Reserve(Reservation{Day: Monday, Period: 0, Room: "103", Source: "other"}))

	_, err = idx.Edit(s, Monday, 0, "103")
	assert.True(t, errors.Is(err, appErrors.ErrRoomConflict))

	updated, err := idx.Edit(s, Monday, 0, "102")
	require.NoError(t, err)
	assert.Equal(t, "102", updated.Room)
	assert.True(t, idx.RoomFree(Monday, []int{0}, "101", nil))
	assert.Equal(t, []string{"101", "102", "104", "105", "106"}, idx.FreeRooms(Monday, 0, KindTheory, &SessionKey{ClassID: "C1", Day: Monday, Start: 0}))
}

func TestEditUnknownSession(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	ghost := newSession(class("C1", "T1"), KindTheory, Monday, []int{0}, "101")

	_, err := idx.Edit(ghost, Tuesday, 0, "101")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Equal(t, 0, idx.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	idx := NewIndex(DefaultGrid())
	keep, err := idx.Add(class("C2", "T2"), KindTheory, Monday, 1, "101")
	require.NoError(t, err)
	lab, err := idx.Add(class("L1", "T1"), KindLab, Monday, 5, "LAB-1")
	require.NoError(t, err)

	assert.True(t, idx.Remove(lab))
	once := idx.Sessions()
	assert.False(t, idx.Remove(lab))
	assert.Equal(t, once, idx.Sessions())
	assert.Equal(t, []Session{keep}, once)
	assert.Equal(t, []int{0, 2, 3, 5, 6, 7}, idx.LegalStarts(Monday, KindTheory, nil))
}
