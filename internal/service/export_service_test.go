package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

func newExportServiceForTest(t *testing.T) (*ExportService, string) {
	t.Helper()
	fx := newTimetableServiceFixture(t, nil)
	resp, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		TermID:  "term-1",
		Section: "A",
		Classes: []dto.ClassRequirementRequest{
			{ClassID: "C1", TeacherID: "T1", CourseName: "Physics", CourseCode: "PHY", FacultyName: "Dr. Rahman", Theory: 2, Labs: 1},
		},
	})
	require.NoError(t, err)
	workloads := NewWorkloadService(fx.svc, fx.cacheSvc, time.Minute, zap.NewNop())
	svc := NewExportService(fx.svc, workloads, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, resp.DraftID
}

func TestExportServiceTimetableCSV(t *testing.T) {
	svc, draftID := newExportServiceForTest(t)

	result, err := svc.Timetable(context.Background(), draftID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "timetable_term-1_A_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Day,Start,End,Start Time,End Time,Class ID,Course Code,Course Name,Kind,Room,Teacher ID,Faculty", lines[0])
	assert.Equal(t, "MONDAY,0,1,09:00,10:40,C1,PHY-L,Physics (Lab),lab,LAB-1,T1,Dr. Rahman", lines[1])
	assert.Equal(t, "TUESDAY,0,0,09:00,09:50,C1,PHY,Physics,theory,101,T1,Dr. Rahman", lines[2])
}

func TestExportServiceTimetablePDF(t *testing.T) {
	svc, draftID := newExportServiceForTest(t)

	result, err := svc.Timetable(context.Background(), draftID, "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF")))

	_, err = svc.Timetable(context.Background(), draftID, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.Timetable(context.Background(), "missing", "pdf")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestExportServiceWorkloadPDF(t *testing.T) {
	svc, draftID := newExportServiceForTest(t)

	result, err := svc.WorkloadPDF(context.Background(), draftID, "T1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF")))
	assert.True(t, strings.HasPrefix(result.Filename, "workload_term-1_T1_"))
}

func TestGridDatasetLayout(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	draftID := fx.emptyDraft(t)
	_, err := fx.svc.AddSlot(context.Background(), draftID, dto.AddSlotRequest{
		ClassID: "C1", TeacherID: "T1", CourseName: "Physics", CourseCode: "PHY", Kind: "lab", Day: "WEDNESDAY", Start: intPtr(5), Room: "LAB-2",
	})
	require.NoError(t, err)
	snap, err := fx.svc.Snapshot(context.Background(), draftID)
	require.NoError(t, err)

	data := gridDataset(snap)
	assert.Equal(t, []string{"Period", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}, data.Headers)
	require.Len(t, data.Rows, 8)
	assert.Equal(t, "12:20-13:10\nLunch", data.Rows[4]["Period"])
	assert.Equal(t, "PHY-L\nPhysics (Lab)\nLAB-2", data.Rows[5]["WEDNESDAY"])
	assert.Equal(t, data.Rows[5]["WEDNESDAY"], data.Rows[6]["WEDNESDAY"])
	assert.Empty(t, data.Rows[7]["WEDNESDAY"])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "2024-25_Term_1", sanitizeFilename("2024/25 Term 1"))
}
