package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

// Export formats.
const (
	ExportFormatPDF = "pdf"
	ExportFormatCSV = "csv"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

type workloadReader interface {
	ForTeacher(ctx context.Context, draftID, teacherID string) (*timetable.Workload, bool, error)
}

// ExportResult is a rendered file ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders drafts and workloads as printable files.
type ExportService struct {
	drafts    draftReader
	workloads workloadReader
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(drafts draftReader, workloads workloadReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{drafts: drafts, workloads: workloads, csv: csv, pdf: pdf, logger: logger}
}

// Timetable renders a draft in the requested format.
func (s *ExportService) Timetable(ctx context.Context, draftID, format string) (*ExportResult, error) {
	switch strings.ToLower(format) {
	case "", ExportFormatPDF:
		return s.TimetablePDF(ctx, draftID)
	case ExportFormatCSV:
		return s.TimetableCSV(ctx, draftID)
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}

// TimetablePDF renders the weekly grid of a draft: one row per period, one column per day.
func (s *ExportService) TimetablePDF(ctx context.Context, draftID string) (*ExportResult, error) {
	snap, err := s.drafts.Snapshot(ctx, draftID)
	if err != nil {
		return nil, err
	}
	doc := export.Document{
		Title:     fmt.Sprintf("Timetable %s", snap.Section),
		Subtitle:  fmt.Sprintf("Term %s, revision %d", snap.TermID, snap.Revision),
		Landscape: true,
		Sections:  []export.Dataset{gridDataset(snap)},
	}
	if len(snap.Unplaced) > 0 {
		doc.Sections = append(doc.Sections, unplacedDataset(snap.Unplaced))
	}
	payload, err := s.pdf.Render(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
	}
	return &ExportResult{
		Filename:    buildFilename("timetable", snap.TermID, snap.Section, ExportFormatPDF),
		ContentType: "application/pdf",
		Payload:     payload,
	}, nil
}

// TimetableCSV renders a draft as one row per session.
func (s *ExportService) TimetableCSV(ctx context.Context, draftID string) (*ExportResult, error) {
	snap, err := s.drafts.Snapshot(ctx, draftID)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(sessionDataset(snap))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable csv")
	}
	return &ExportResult{
		Filename:    buildFilename("timetable", snap.TermID, snap.Section, ExportFormatCSV),
		ContentType: "text/csv",
		Payload:     payload,
	}, nil
}

// WorkloadPDF renders one teacher's week with per-day and weekly totals.
func (s *ExportService) WorkloadPDF(ctx context.Context, draftID, teacherID string) (*ExportResult, error) {
	snap, err := s.drafts.Snapshot(ctx, draftID)
	if err != nil {
		return nil, err
	}
	workload, _, err := s.workloads.ForTeacher(ctx, draftID, teacherID)
	if err != nil {
		return nil, err
	}

	subtitle := fmt.Sprintf("Teacher %s", workload.TeacherID)
	if workload.FacultyName != "" {
		subtitle = fmt.Sprintf("%s (%s)", subtitle, workload.FacultyName)
	}
	doc := export.Document{
		Title:    "Teacher workload",
		Subtitle: subtitle,
		Sections: append(workloadDayDatasets(*workload), workloadTotalsDataset(*workload)),
	}
	payload, err := s.pdf.Render(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workload pdf")
	}
	s.logger.Debug("workload exported", zap.String("draft_id", draftID), zap.String("teacher_id", teacherID))
	return &ExportResult{
		Filename:    buildFilename("workload", snap.TermID, teacherID, ExportFormatPDF),
		ContentType: "application/pdf",
		Payload:     payload,
	}, nil
}

func gridDataset(snap *DraftSnapshot) export.Dataset {
	grid := snap.Grid
	headers := []string{"Period"}
	for _, day := range grid.Days() {
		headers = append(headers, day.String())
	}

	byCell := make(map[timetable.Cell]timetable.Session)
	for _, session := range snap.Sessions {
		for _, p := range session.Periods {
			byCell[timetable.Cell{Day: session.Day, Period: p}] = session
		}
	}

	rows := make([]map[string]string, 0, grid.PeriodCount())
	for _, period := range grid.Periods() {
		row := map[string]string{"Period": fmt.Sprintf("%s-%s", period.Start, period.End)}
		if period.Lunch {
			row["Period"] = fmt.Sprintf("%s\n%s", row["Period"], period.Label)
			rows = append(rows, row)
			continue
		}
		for _, day := range grid.Days() {
			session, ok := byCell[timetable.Cell{Day: day, Period: period.Index}]
			if !ok {
				continue
			}
			row[day.String()] = fmt.Sprintf("%s\n%s\n%s", session.CourseCode, session.CourseName, session.Room)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Caption: fmt.Sprintf("Section %s", snap.Section), Headers: headers, Rows: rows}
}

func unplacedDataset(unplaced []timetable.Unplaced) export.Dataset {
	rows := make([]map[string]string, 0, len(unplaced))
	for _, item := range unplaced {
		rows = append(rows, map[string]string{
			"Class":   item.Class.ID,
			"Course":  item.Class.CourseName,
			"Teacher": item.Class.TeacherID,
			"Kind":    string(item.Kind),
			"Reason":  item.Reason,
		})
	}
	return export.Dataset{
		Caption: "Unplaced sessions",
		Headers: []string{"Class", "Course", "Teacher", "Kind", "Reason"},
		Rows:    rows,
	}
}

func sessionDataset(snap *DraftSnapshot) export.Dataset {
	headers := []string{"Day", "Start", "End", "Start Time", "End Time", "Class ID", "Course Code", "Course Name", "Kind", "Room", "Teacher ID", "Faculty"}
	rows := make([]map[string]string, 0, len(snap.Sessions))
	for _, session := range snap.Sessions {
		row := map[string]string{
			"Day":         session.Day.String(),
			"Start":       strconv.Itoa(session.Start),
			"End":         strconv.Itoa(session.End),
			"Class ID":    session.ClassID,
			"Course Code": session.CourseCode,
			"Course Name": session.CourseName,
			"Kind":        string(session.Kind),
			"Room":        session.Room,
			"Teacher ID":  session.TeacherID,
			"Faculty":     session.FacultyName,
		}
		if p, ok := snap.Grid.Period(session.Start); ok {
			row["Start Time"] = p.Start
		}
		if p, ok := snap.Grid.Period(session.End); ok {
			row["End Time"] = p.End
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func workloadDayDatasets(workload timetable.Workload) []export.Dataset {
	headers := []string{"Time", "Course", "Section", "Kind", "Room", "Periods"}
	out := make([]export.Dataset, 0, len(workload.Days))
	for _, day := range workload.Days {
		rows := make([]map[string]string, 0, len(day.Sessions))
		for _, session := range day.Sessions {
			rows = append(rows, map[string]string{
				"Time":    fmt.Sprintf("%s-%s", session.StartTime, session.EndTime),
				"Course":  fmt.Sprintf("%s %s", session.CourseCode, session.CourseName),
				"Section": session.Section,
				"Kind":    string(session.Kind),
				"Room":    session.Room,
				"Periods": strconv.Itoa(session.Periods),
			})
		}
		out = append(out, export.Dataset{
			Caption: fmt.Sprintf("%s: %d periods (%d morning, %d afternoon)", day.Day, day.Periods, day.Morning, day.Afternoon),
			Headers: headers,
			Rows:    rows,
		})
	}
	return out
}

func workloadTotalsDataset(workload timetable.Workload) export.Dataset {
	return export.Dataset{
		Caption: "Weekly totals",
		Headers: []string{"Metric", "Value"},
		Rows: []map[string]string{
			{"Metric": "Sessions", "Value": strconv.Itoa(workload.TotalSessions)},
			{"Metric": "Theory periods", "Value": strconv.Itoa(workload.TheoryPeriods)},
			{"Metric": "Lab periods", "Value": strconv.Itoa(workload.LabPeriods)},
			{"Metric": "Morning periods", "Value": strconv.Itoa(workload.Morning)},
			{"Metric": "Afternoon periods", "Value": strconv.Itoa(workload.Afternoon)},
			{"Metric": "Total periods", "Value": strconv.Itoa(workload.TotalPeriods)},
		},
	}
}

func buildFilename(kind, termID, subject, ext string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s_%s.%s", kind, sanitizeFilename(termID), sanitizeFilename(subject), timestamp, ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
