package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestTimetableServiceGenerateFromRoster(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	fx.offerings.items = []models.ClassOffering{
		{ID: "PHY", TermID: "term-1", Section: "A", CourseName: "Physics", CourseCode: "PHY", TeacherID: "T1", TheoryCount: 2, LabCount: 1},
		{ID: "MTH", TermID: "term-1", Section: "A", CourseName: "Mathematics", CourseCode: "MTH", TeacherID: "T2", TheoryCount: 3},
	}

	resp, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1", Section: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.DraftID)
	assert.Equal(t, 0, resp.Revision)
	assert.Len(t, resp.Sessions, 6)
	assert.Empty(t, resp.Unplaced)
	assert.Equal(t, 4, resp.Grid.LunchIndex)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	snap := fx.metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.GeneratorRuns)
	assert.Equal(t, uint64(6), snap.SessionsPlaced)
	assert.Equal(t, int64(1), snap.ActiveDrafts)
}

func TestTimetableServiceGenerateRequiresRoster(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{TermID: "term-1", Section: "A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{Section: "A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateRejectsDuplicateClasses(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		TermID:  "term-1",
		Section: "A",
		Classes: []dto.ClassRequirementRequest{
			{ClassID: "C1", TeacherID: "T1", CourseName: "Physics", Theory: 1},
			{ClassID: "C1", TeacherID: "T2", CourseName: "Chemistry", Theory: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTimetableServiceGenerateHonoursPublishedReservations(t *testing.T) {
	periods, err := timetable.BuildPeriods(3, 1, "08:00", time.Hour)
	require.NoError(t, err)
	grid, err := timetable.NewGrid([]timetable.Day{timetable.Monday}, periods, []string{"R1"}, []string{"L1"})
	require.NoError(t, err)
	fx := newTimetableServiceFixture(t, grid)
	fx.sessions.published = []models.TimetableSession{
		{TimetableID: "tt-b", ClassID: "X", TeacherID: "T9", DayOfWeek: 1, StartPeriod: 0, EndPeriod: 0, Room: "R1", Kind: "theory", Section: "B"},
	}
	req := dto.GenerateTimetableRequest{
		TermID:  "term-1",
		Section: "A",
		Classes: []dto.ClassRequirementRequest{{ClassID: "C1", TeacherID: "T1", CourseName: "Physics", Theory: 2}},
	}

	resp, err := fx.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, 2, resp.Sessions[0].Start)
	assert.Len(t, resp.Unplaced, 1)
	assert.Equal(t, 2, resp.Reservations)

	req.IgnoreReservations = true
	resp, err = fx.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Sessions, 2)
	assert.Zero(t, resp.Reservations)
}

func TestTimetableServiceSlotMutations(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	draftID := fx.emptyDraft(t)
	ctx := context.Background()

	added, err := fx.svc.AddSlot(ctx, draftID, dto.AddSlotRequest{
		ClassID: "C1", TeacherID: "T1", CourseName: "Physics", CourseCode: "PHY", Day: "monday", Start: intPtr(0), Room: "101",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added.Revision)
	assert.Equal(t, timetable.Monday, added.Session.Day)
	assert.Equal(t, "A", added.Session.Section)

	_, err = fx.svc.AddSlot(ctx, draftID, dto.AddSlotRequest{
		ClassID: "C2", TeacherID: "T2", CourseName: "Chemistry", Day: "MONDAY", Start: intPtr(0), Room: "102",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSlotOccupied))
	detail, ok := timetable.ConflictDetail(err)
	require.True(t, ok)
	require.NotNil(t, detail.Holder)
	assert.Equal(t, "C1", detail.Holder.ClassID)

	moved, err := fx.svc.EditSlot(ctx, draftID, dto.EditSlotRequest{
		Session:  dto.SessionRef{ClassID: "C1", Day: "MONDAY", Start: intPtr(0)},
		Day:      "tuesday",
		Start:    intPtr(1),
		Room:     "102",
		Revision: intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Revision)
	assert.Equal(t, timetable.Tuesday, moved.Session.Day)
	assert.Equal(t, "102", moved.Session.Room)

	_, err = fx.svc.EditSlot(ctx, draftID, dto.EditSlotRequest{
		Session:  dto.SessionRef{ClassID: "C1", Day: "TUESDAY", Start: intPtr(1)},
		Day:      "WEDNESDAY",
		Start:    intPtr(0),
		Room:     "101",
		Revision: intPtr(1),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))

	_, err = fx.svc.EditSlot(ctx, draftID, dto.EditSlotRequest{
		Session: dto.SessionRef{ClassID: "C1", Day: "TUESDAY", Start: intPtr(1)},
		Day:     "TUESDAY",
		Start:   intPtr(4),
		Room:    "101",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidSpan))

	unchanged, err := fx.svc.EditSlot(ctx, draftID, dto.EditSlotRequest{
		Session: dto.SessionRef{ClassID: "C1", Day: "TUESDAY", Start: intPtr(1)},
		Day:     "TUESDAY",
		Start:   intPtr(1),
		Room:    "102",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, unchanged.Revision)

	removed, err := fx.svc.RemoveSlot(ctx, draftID, dto.RemoveSlotRequest{SessionRef: dto.SessionRef{ClassID: "C1", Day: "TUESDAY", Start: intPtr(1)}})
	require.NoError(t, err)
	assert.True(t, removed.Removed)
	assert.Equal(t, 3, removed.Revision)

	again, err := fx.svc.RemoveSlot(ctx, draftID, dto.RemoveSlotRequest{SessionRef: dto.SessionRef{ClassID: "C1", Day: "TUESDAY", Start: intPtr(1)}})
	require.NoError(t, err)
	assert.False(t, again.Removed)
	assert.Equal(t, 3, again.Revision)

	_, err = fx.svc.EditSlot(ctx, draftID, dto.EditSlotRequest{
		Session: dto.SessionRef{ClassID: "C1", Day: "TUESDAY", Start: intPtr(1)},
		Day:     "MONDAY",
		Start:   intPtr(0),
		Room:    "101",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, timetable.ErrSessionNotFound))

	snap := fx.metrics.Snapshot()
	assert.Equal(t, uint64(5), snap.MutationsAccepted)
	assert.Equal(t, uint64(4), snap.MutationsRejected)
	assert.Equal(t, []string{workloadCachePattern(draftID), workloadCachePattern(draftID), workloadCachePattern(draftID)}, fx.cache.invalidated())
}

func TestTimetableServiceMutationsOnUnknownDraft(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)

	_, err := fx.svc.AddSlot(context.Background(), "missing", dto.AddSlotRequest{
		ClassID: "C1", TeacherID: "T1", CourseName: "Physics", Day: "MONDAY", Start: intPtr(0), Room: "101",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = fx.svc.AddSlot(context.Background(), "missing", dto.AddSlotRequest{ClassID: "C1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTimetableServiceAvailability(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	fx.sessions.published = []models.TimetableSession{
		{TimetableID: "tt-b", ClassID: "X", TeacherID: "T2", DayOfWeek: 1, StartPeriod: 1, EndPeriod: 1, Room: "LAB-3", Kind: "theory", Section: "B"},
	}
	draftID := fx.emptyDraft(t)
	ctx := context.Background()

	_, err := fx.svc.AddSlot(ctx, draftID, dto.AddSlotRequest{
		ClassID: "C1", TeacherID: "T1", CourseName: "Physics", Kind: "lab", Day: "MONDAY", Start: intPtr(5), Room: "LAB-1",
	})
	require.NoError(t, err)

	labs, err := fx.svc.Availability(ctx, draftID, dto.AvailabilityQuery{Day: "MONDAY", Kind: "lab"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, labs.Starts)

	self, err := fx.svc.Availability(ctx, draftID, dto.AvailabilityQuery{
		Day: "MONDAY", Kind: "lab", Start: intPtr(5), ExcludeClassID: "C1", ExcludeStart: intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 5, 6}, self.Starts)
	require.Len(t, self.Options, 1)
	assert.Equal(t, 6, self.Options[0].End)
	assert.Equal(t, "13:10", self.Options[0].StartTime)
	assert.Equal(t, "14:50", self.Options[0].EndTime)
	assert.Equal(t, []string{"LAB-1", "LAB-2", "LAB-3"}, self.Options[0].Rooms)

	theory, err := fx.svc.Availability(ctx, draftID, dto.AvailabilityQuery{Day: "MONDAY"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 7}, theory.Starts)
	assert.Len(t, theory.Options, 5)

	busy, err := fx.svc.Availability(ctx, draftID, dto.AvailabilityQuery{Day: "MONDAY", TeacherID: "T2"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 7}, busy.Starts)
	require.Len(t, busy.Options, 4)
	for _, opt := range busy.Options {
		assert.NotEqual(t, 1, opt.Start)
	}

	_, err = fx.svc.Availability(ctx, draftID, dto.AvailabilityQuery{Day: "SUNDAY"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = fx.svc.Availability(ctx, draftID, dto.AvailabilityQuery{Day: "MONDAY", ExcludeClassID: "C1"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTimetableServiceSaveAndPublish(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	resp, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		TermID:  "term-1",
		Section: "A",
		Classes: []dto.ClassRequirementRequest{{ClassID: "C1", TeacherID: "T1", CourseName: "Physics", CourseCode: "PHY", Theory: 2, Labs: 1}},
	})
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	saved, err := fx.svc.Save(context.Background(), dto.SaveTimetableRequest{DraftID: resp.DraftID, Note: "first pass"})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Timetable.Version)
	assert.Equal(t, models.TimetableStatusDraft, saved.Timetable.Status)
	assert.Equal(t, 3, saved.Sessions)

	rows := fx.sessions.rows[saved.Timetable.ID]
	require.Len(t, rows, 3)
	assert.Equal(t, "lab", rows[0].Kind)
	assert.Equal(t, 1, rows[0].DayOfWeek)
	assert.Equal(t, 0, rows[0].StartPeriod)
	assert.Equal(t, 1, rows[0].EndPeriod)
	assert.Equal(t, "PHY-L", rows[0].CourseCode)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(saved.Timetable.Meta, &meta))
	assert.Equal(t, "first pass", meta["note"])

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	published, err := fx.svc.Save(context.Background(), dto.SaveTimetableRequest{DraftID: resp.DraftID, Publish: true})
	require.NoError(t, err)
	assert.Equal(t, 2, published.Timetable.Version)
	assert.Equal(t, models.TimetableStatusPublished, published.Timetable.Status)
	assert.Equal(t, []string{published.Timetable.ID}, fx.timetables.archiveCalls)

	draft, err := fx.svc.Get(context.Background(), resp.DraftID)
	require.NoError(t, err)
	assert.Equal(t, published.Timetable.ID, draft.SourceID)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTimetableServiceSaveRollsBackOnFailure(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	draftID := fx.emptyDraft(t)
	fx.sessions.replaceErr = fmt.Errorf("disk full")

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	_, err := fx.svc.Save(context.Background(), dto.SaveTimetableRequest{DraftID: draftID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTimetableServiceOpen(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	fx.timetables.put(models.Timetable{ID: "tt-9", TermID: "term-1", Section: "A", Version: 3, Status: models.TimetableStatusPublished})
	fx.sessions.rows["tt-9"] = []models.TimetableSession{
		{TimetableID: "tt-9", ClassID: "C1", TeacherID: "T1", DayOfWeek: 2, StartPeriod: 5, EndPeriod: 6, Room: "LAB-2", Kind: "lab", CourseName: "Physics (Lab)", CourseCode: "PHY-L", Section: "A"},
		{TimetableID: "tt-9", ClassID: "C1", TeacherID: "T1", DayOfWeek: 1, StartPeriod: 0, EndPeriod: 0, Room: "101", Kind: "theory", CourseName: "Physics", CourseCode: "PHY", Section: "A"},
	}

	draft, err := fx.svc.Open(context.Background(), "tt-9")
	require.NoError(t, err)
	assert.Equal(t, "tt-9", draft.SourceID)
	assert.Equal(t, "A", draft.Section)
	require.Len(t, draft.Sessions, 2)
	assert.Equal(t, timetable.Monday, draft.Sessions[0].Day)
	assert.Equal(t, []int{5, 6}, draft.Sessions[1].Periods)
	assert.Equal(t, "Physics (Lab)", draft.Sessions[1].CourseName)

	_, err = fx.svc.Open(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServicePublish(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	fx.timetables.put(models.Timetable{ID: "tt-1", TermID: "term-1", Section: "A", Version: 1, Status: models.TimetableStatusDraft})
	fx.sessions.rows["tt-1"] = []models.TimetableSession{
		{TimetableID: "tt-1", ClassID: "C1", TeacherID: "T1", DayOfWeek: 1, StartPeriod: 0, EndPeriod: 0, Room: "101", Kind: "theory", Section: "A"},
	}
	fx.sessions.published = []models.TimetableSession{
		{TimetableID: "tt-b", ClassID: "X", TeacherID: "T1", DayOfWeek: 1, StartPeriod: 0, EndPeriod: 0, Room: "102", Kind: "theory", Section: "B"},
	}

	_, err := fx.svc.Publish(context.Background(), "tt-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrTeacherConflict))

	fx.sessions.published = nil
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	record, err := fx.svc.Publish(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, models.TimetableStatusPublished, record.Status)

	again, err := fx.svc.Publish(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, models.TimetableStatusPublished, again.Status)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTimetableServiceDeleteOnlyDrafts(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	fx.timetables.put(models.Timetable{ID: "tt-1", TermID: "term-1", Section: "A", Status: models.TimetableStatusPublished})
	fx.timetables.put(models.Timetable{ID: "tt-2", TermID: "term-1", Section: "A", Status: models.TimetableStatusDraft})

	err := fx.svc.Delete(context.Background(), "tt-1")
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	require.NoError(t, fx.svc.Delete(context.Background(), "tt-2"))
	err = fx.svc.Delete(context.Background(), "tt-2")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	list, err := fx.svc.List(context.Background(), dto.TimetableQuery{TermID: "term-1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = fx.svc.List(context.Background(), dto.TimetableQuery{Status: "LIVE"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTimetableServiceDraftExpiry(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	draftID := fx.emptyDraft(t)

	fx.svc.store.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	_, err := fx.svc.Get(context.Background(), draftID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableServiceDiscard(t *testing.T) {
	fx := newTimetableServiceFixture(t, nil)
	draftID := fx.emptyDraft(t)

	require.NoError(t, fx.svc.Discard(context.Background(), draftID))
	_, err := fx.svc.Get(context.Background(), draftID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.True(t, errors.Is(fx.svc.Discard(context.Background(), draftID), appErrors.ErrNotFound))
}

// --- Fixtures ---

type timetableServiceFixture struct {
	svc        *TimetableService
	timetables *timetableRepoStub
	sessions   *sessionRepoStub
	offerings  *offeringRepoStub
	cache      *cacheRepoStub
	cacheSvc   *CacheService
	metrics    *MetricsService
	mock       sqlmock.Sqlmock
}

func newTimetableServiceFixture(t *testing.T, grid *timetable.Grid) *timetableServiceFixture {
	t.Helper()
	tx, mock := newTxProviderMock(t)
	fx := &timetableServiceFixture{
		timetables: &timetableRepoStub{items: make(map[string]*models.Timetable)},
		sessions:   &sessionRepoStub{rows: make(map[string][]models.TimetableSession)},
		offerings:  &offeringRepoStub{},
		cache:      newCacheRepoStub(),
		metrics:    NewMetricsService(),
		mock:       mock,
	}
	fx.cacheSvc = NewCacheService(fx.cache, fx.metrics, time.Minute, zap.NewNop(), true)
	fx.svc = NewTimetableService(
		grid,
		fx.timetables,
		fx.sessions,
		fx.offerings,
		tx,
		fx.cacheSvc,
		fx.metrics,
		validator.New(),
		zap.NewNop(),
		TimetableServiceConfig{DraftTTL: 2 * time.Hour},
	)
	return fx
}

func (fx *timetableServiceFixture) emptyDraft(t *testing.T) string {
	t.Helper()
	resp, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		TermID:  "term-1",
		Section: "A",
		Classes: []dto.ClassRequirementRequest{{ClassID: "C0", TeacherID: "T0", CourseName: "Placeholder"}},
	})
	require.NoError(t, err)
	require.Empty(t, resp.Sessions)
	return resp.DraftID
}

func intPtr(v int) *int { return &v }

type timetableRepoStub struct {
	items        map[string]*models.Timetable
	seq          int
	archiveCalls []string
}

func (s *timetableRepoStub) put(record models.Timetable) {
	copied := record
	s.items[record.ID] = &copied
}

func (s *timetableRepoStub) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, record *models.Timetable) error {
	s.seq++
	version := 1
	for _, item := range s.items {
		if item.TermID == record.TermID && item.Section == record.Section && item.Version >= version {
			version = item.Version + 1
		}
	}
	record.ID = fmt.Sprintf("tt-%d", s.seq)
	record.Version = version
	s.put(*record)
	return nil
}

func (s *timetableRepoStub) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, error) {
	var out []models.Timetable
	for _, item := range s.items {
		if filter.TermID != "" && item.TermID != filter.TermID {
			continue
		}
		if filter.Section != "" && item.Section != filter.Section {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *timetableRepoStub) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (s *timetableRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *timetableRepoStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error {
	item, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	return nil
}

func (s *timetableRepoStub) ArchivePublished(ctx context.Context, exec sqlx.ExtContext, termID, section, keepID string) error {
	s.archiveCalls = append(s.archiveCalls, keepID)
	for id, item := range s.items {
		if id != keepID && item.TermID == termID && item.Section == section && item.Status == models.TimetableStatusPublished {
			item.Status = models.TimetableStatusArchived
		}
	}
	return nil
}

type sessionRepoStub struct {
	rows       map[string][]models.TimetableSession
	published  []models.TimetableSession
	replaceErr error
}

func (s *sessionRepoStub) ReplaceSessions(ctx context.Context, exec sqlx.ExtContext, timetableID string, sessions []models.TimetableSession) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.rows[timetableID] = sessions
	return nil
}

func (s *sessionRepoStub) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSession, error) {
	return s.rows[timetableID], nil
}

func (s *sessionRepoStub) ListPublishedByTerm(ctx context.Context, termID, excludeSection string) ([]models.TimetableSession, error) {
	var out []models.TimetableSession
	for _, row := range s.published {
		if row.Section != excludeSection {
			out = append(out, row)
		}
	}
	return out, nil
}

type offeringRepoStub struct {
	items []models.ClassOffering
}

func (s *offeringRepoStub) ListByTermSection(ctx context.Context, termID, section string) ([]models.ClassOffering, error) {
	return s.items, nil
}

type cacheRepoStub struct {
	mu       sync.Mutex
	items    map[string][]byte
	patterns []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{items: make(map[string][]byte)}
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = raw
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
		}
	}
	return nil
}

func (s *cacheRepoStub) invalidated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.patterns...)
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
