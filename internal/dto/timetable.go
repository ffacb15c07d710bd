package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

// ClassRequirementRequest captures the weekly demand of one class supplied inline.
type ClassRequirementRequest struct {
	ClassID     string `json:"classId" validate:"required"`
	TeacherID   string `json:"teacherId" validate:"required"`
	CourseName  string `json:"courseName" validate:"required"`
	CourseCode  string `json:"courseCode"`
	FacultyName string `json:"facultyName"`
	Theory      int    `json:"theory" validate:"min=0,max=42"`
	Labs        int    `json:"labs" validate:"min=0,max=21"`
}

// GenerateTimetableRequest asks the generator for a fresh draft. When Classes is empty the roster
// stored for the term and section is used.
type GenerateTimetableRequest struct {
	TermID             string                    `json:"termId" validate:"required"`
	Section            string                    `json:"section" validate:"required"`
	Classes            []ClassRequirementRequest `json:"classes" validate:"omitempty,dive"`
	IgnoreReservations bool                      `json:"ignoreReservations"`
}

// GridResponse describes the week structure and room pools.
type GridResponse struct {
	Days       []timetable.Day    `json:"days"`
	Periods    []timetable.Period `json:"periods"`
	LunchIndex int                `json:"lunchIndex"`
	Rooms      []string           `json:"rooms"`
	Labs       []string           `json:"labs"`
}

// DraftResponse is the working copy of a timetable held in memory.
type DraftResponse struct {
	DraftID      string               `json:"draftId"`
	SourceID     string               `json:"sourceId,omitempty"`
	TermID       string               `json:"termId"`
	Section      string               `json:"section"`
	Revision     int                  `json:"revision"`
	Grid         GridResponse         `json:"grid"`
	Sessions     []timetable.Session  `json:"sessions"`
	Unplaced     []timetable.Unplaced `json:"unplaced"`
	Reservations int                  `json:"reservations"`
	ExpiresAt    time.Time            `json:"expiresAt"`
}

// AvailabilityQuery selects the day and kind to list placements for. The exclude fields name a
// session being edited, whose own cells then count as free. When TeacherID is set, starts at which
// the teacher is busy are dropped from the options.
type AvailabilityQuery struct {
	Day            string `form:"day" validate:"required"`
	Kind           string `form:"kind" validate:"omitempty,oneof=theory lab THEORY LAB"`
	Start          *int   `form:"start" validate:"omitempty,min=0"`
	TeacherID      string `form:"teacherId"`
	ExcludeClassID string `form:"excludeClassId"`
	ExcludeDay     string `form:"excludeDay"`
	ExcludeStart   *int   `form:"excludeStart" validate:"omitempty,min=0"`
}

// StartOption is one legal start together with the rooms free for it.
type StartOption struct {
	Start     int      `json:"start"`
	End       int      `json:"end"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Rooms     []string `json:"rooms"`
}

// AvailabilityResponse lists legal placements for a day.
type AvailabilityResponse struct {
	Day     timetable.Day  `json:"day"`
	Kind    timetable.Kind `json:"kind"`
	Starts  []int          `json:"starts"`
	Options []StartOption  `json:"options"`
}

// AddSlotRequest places a new session in a draft.
type AddSlotRequest struct {
	ClassID     string `json:"classId" validate:"required"`
	TeacherID   string `json:"teacherId" validate:"required"`
	CourseName  string `json:"courseName" validate:"required"`
	CourseCode  string `json:"courseCode"`
	FacultyName string `json:"facultyName"`
	Kind        string `json:"kind" validate:"omitempty,oneof=theory lab THEORY LAB"`
	Day         string `json:"day" validate:"required"`
	Start       *int   `json:"start" validate:"required,min=0"`
	Room        string `json:"room" validate:"required"`
	Revision    *int   `json:"revision" validate:"omitempty,min=0"`
}

// SessionRef identifies an existing session of a draft.
type SessionRef struct {
	ClassID string `json:"classId" validate:"required"`
	Day     string `json:"day" validate:"required"`
	Start   *int   `json:"start" validate:"required,min=0"`
}

// EditSlotRequest moves a session to a new day, start period and room.
type EditSlotRequest struct {
	Session  SessionRef `json:"session"`
	Day      string     `json:"day" validate:"required"`
	Start    *int       `json:"start" validate:"required,min=0"`
	Room     string     `json:"room" validate:"required"`
	Revision *int       `json:"revision" validate:"omitempty,min=0"`
}

// RemoveSlotRequest deletes a session from a draft.
type RemoveSlotRequest struct {
	SessionRef
	Revision *int `json:"revision" validate:"omitempty,min=0"`
}

// SlotMutationResponse reports the outcome of a mutation together with the new draft revision.
type SlotMutationResponse struct {
	Session  *timetable.Session `json:"session,omitempty"`
	Removed  bool               `json:"removed,omitempty"`
	Revision int                `json:"revision"`
}

// SaveTimetableRequest persists a draft as a new stored version.
type SaveTimetableRequest struct {
	DraftID string `json:"draftId" validate:"required"`
	Publish bool   `json:"publish"`
	Note    string `json:"note" validate:"max=500"`
}

// SaveTimetableResponse returns the stored version.
type SaveTimetableResponse struct {
	Timetable models.Timetable `json:"timetable"`
	Sessions  int              `json:"sessions"`
}

// TimetableQuery filters stored timetables.
type TimetableQuery struct {
	TermID  string `form:"termId"`
	Section string `form:"section"`
	Status  string `form:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// WorkloadSummaryResponse lists the workload of every teacher in a draft.
type WorkloadSummaryResponse struct {
	DraftID   string               `json:"draftId"`
	Revision  int                  `json:"revision"`
	Workloads []timetable.Workload `json:"workloads"`
}
