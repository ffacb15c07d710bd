package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error
	ArchivePublished(ctx context.Context, exec sqlx.ExtContext, termID, section, keepID string) error
}

type timetableSessionRepository interface {
	ReplaceSessions(ctx context.Context, exec sqlx.ExtContext, timetableID string, sessions []models.TimetableSession) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSession, error)
	ListPublishedByTerm(ctx context.Context, termID, excludeSection string) ([]models.TimetableSession, error)
}

type classOfferingReader interface {
	ListByTermSection(ctx context.Context, termID, section string) ([]models.ClassOffering, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableServiceConfig governs draft behaviour.
type TimetableServiceConfig struct {
	DraftTTL time.Duration
}

// TimetableService generates drafts, applies manual slot edits to them and persists them as
// versioned timetables.
type TimetableService struct {
	grid       *timetable.Grid
	timetables timetableRepository
	sessions   timetableSessionRepository
	offerings  classOfferingReader
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	store      *draftStore
	cfg        TimetableServiceConfig
}

// NewTimetableService wires timetable dependencies. A nil grid falls back to the default week.
func NewTimetableService(
	grid *timetable.Grid,
	timetables timetableRepository,
	sessions timetableSessionRepository,
	offerings classOfferingReader,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if grid == nil {
		grid = timetable.DefaultGrid()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = 2 * time.Hour
	}
	return &TimetableService{
		grid:       grid,
		timetables: timetables,
		sessions:   sessions,
		offerings:  offerings,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		store:      newDraftStore(cfg.DraftTTL),
		cfg:        cfg,
	}
}

// Grid describes the week every draft is built on.
func (s *TimetableService) Grid() dto.GridResponse {
	return gridResponse(s.grid)
}

// Generate runs the generator for a term and section and keeps the result as a new draft.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.DraftResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	reqs, err := s.requirements(ctx, req)
	if err != nil {
		return nil, err
	}

	idx := timetable.NewIndex(s.grid)
	if !req.IgnoreReservations {
		if _, err := s.applyReservations(ctx, idx, req.TermID, req.Section, false); err != nil {
			return nil, err
		}
	}

	started := time.Now()
	result := timetable.GenerateInto(idx, reqs)
	s.metrics.ObserveGeneration(len(result.Placed), len(result.Unplaced), time.Since(started))

	d := &draft{
		id:       uuid.NewString(),
		termID:   req.TermID,
		section:  req.Section,
		index:    result.Index,
		unplaced: result.Unplaced,
	}
	s.metrics.SetActiveDrafts(s.store.Save(d))
	s.logger.Info("timetable draft generated",
		zap.String("draft_id", d.id),
		zap.String("term_id", req.TermID),
		zap.String("section", req.Section),
		zap.Int("placed", len(result.Placed)),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Int("reservations", idx.Reservations()),
	)
	return s.respond(d), nil
}

func (s *TimetableService) requirements(ctx context.Context, req dto.GenerateTimetableRequest) ([]timetable.Requirement, error) {
	if len(req.Classes) > 0 {
		ids := lo.Map(req.Classes, func(c dto.ClassRequirementRequest, _ int) string { return c.ClassID })
		if dups := lo.FindDuplicates(ids); len(dups) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class %s is listed more than once", dups[0]))
		}
		return lo.Map(req.Classes, func(c dto.ClassRequirementRequest, _ int) timetable.Requirement {
			return timetable.Requirement{
				Class: timetable.Class{
					ID:          c.ClassID,
					TeacherID:   c.TeacherID,
					CourseName:  c.CourseName,
					CourseCode:  c.CourseCode,
					Section:     req.Section,
					FacultyName: c.FacultyName,
				},
				Theory: c.Theory,
				Labs:   c.Labs,
			}
		}), nil
	}

	if s.offerings == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "class roster unavailable, supply classes inline")
	}
	offerings, err := s.offerings.ListByTermSection(ctx, req.TermID, req.Section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class offerings")
	}
	if len(offerings) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no class offerings defined for this term and section")
	}
	return lo.Map(offerings, func(o models.ClassOffering, _ int) timetable.Requirement {
		return timetable.Requirement{
			Class: timetable.Class{
				ID:          o.ID,
				TeacherID:   o.TeacherID,
				CourseName:  o.CourseName,
				CourseCode:  o.CourseCode,
				Section:     o.Section,
				FacultyName: o.FacultyName,
			},
			Theory: o.TheoryCount,
			Labs:   o.LabCount,
		}
	}), nil
}

// applyReservations blocks the rooms and teachers committed by the published timetables of the
// other sections of the term. In strict mode a clash with a session already in idx is returned;
// otherwise clashing reservations are skipped and counted.
func (s *TimetableService) applyReservations(ctx context.Context, idx *timetable.Index, termID, section string, strict bool) (int, error) {
	if s.sessions == nil {
		return 0, nil
	}
	published, err := s.sessions.ListPublishedByTerm(ctx, termID, section)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published timetables")
	}
	skipped := 0
	for _, row := range published {
		for period := row.StartPeriod; period <= row.EndPeriod; period++ {
			err := idx.Reserve(timetable.Reservation{
				Day:       timetable.Day(row.DayOfWeek),
				Period:    period,
				Room:      row.Room,
				TeacherID: row.TeacherID,
				Source:    fmt.Sprintf("%s/%s", row.Section, row.ClassID),
			})
			if err == nil {
				continue
			}
			if strict && (errors.Is(err, appErrors.ErrRoomConflict) || errors.Is(err, appErrors.ErrTeacherConflict)) {
				return skipped, err
			}
			skipped++
			s.logger.Warn("reservation skipped",
				zap.String("term_id", termID),
				zap.String("source_section", row.Section),
				zap.String("class_id", row.ClassID),
				zap.Error(err),
			)
		}
	}
	return skipped, nil
}

func (s *TimetableService) draft(id string) (*draft, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "draft id is required")
	}
	d, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "draft not found or expired")
	}
	return d, nil
}

// Snapshot returns a consistent copy of a draft.
func (s *TimetableService) Snapshot(ctx context.Context, draftID string) (*DraftSnapshot, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot(s.cfg.DraftTTL), nil
}

// Get returns the current state of a draft.
func (s *TimetableService) Get(ctx context.Context, draftID string) (*dto.DraftResponse, error) {
	snap, err := s.Snapshot(ctx, draftID)
	if err != nil {
		return nil, err
	}
	resp := draftResponse(snap)
	return &resp, nil
}

// Discard drops a draft without saving it.
func (s *TimetableService) Discard(ctx context.Context, draftID string) error {
	if _, err := s.draft(draftID); err != nil {
		return err
	}
	s.metrics.SetActiveDrafts(s.store.Delete(draftID))
	s.invalidateWorkloads(ctx, draftID)
	return nil
}

func (s *TimetableService) respond(d *draft) *dto.DraftResponse {
	d.mu.Lock()
	snap := d.snapshot(s.cfg.DraftTTL)
	d.mu.Unlock()
	resp := draftResponse(snap)
	return &resp
}

// Availability lists the legal starts of a kind on a day together with the rooms free at each.
func (s *TimetableService) Availability(ctx context.Context, draftID string, query dto.AvailabilityQuery) (*dto.AvailabilityResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	day, err := timetable.ParseDay(query.Day)
	if err != nil {
		return nil, err
	}
	if !s.grid.HasDay(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %s is not part of the week", day))
	}
	kind, err := timetable.ParseKind(query.Kind)
	if err != nil {
		return nil, err
	}
	exclude, err := excludeKey(query, day)
	if err != nil {
		return nil, err
	}
	d, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	grid := d.index.Grid()
	starts := d.index.LegalStarts(day, kind, exclude)
	candidates := starts
	if query.Start != nil {
		candidates = lo.Filter(starts, func(p int, _ int) bool { return p == *query.Start })
	}

	options := make([]dto.StartOption, 0, len(candidates))
	for _, start := range candidates {
		span, _ := grid.Span(kind, start)
		if query.TeacherID != "" && !d.index.TeacherFree(day, span, query.TeacherID, exclude) {
			continue
		}
		opt := dto.StartOption{
			Start: start,
			End:   span[len(span)-1],
			Rooms: d.index.FreeRooms(day, start, kind, exclude),
		}
		if p, ok := grid.Period(opt.Start); ok {
			opt.StartTime = p.Start
		}
		if p, ok := grid.Period(opt.End); ok {
			opt.EndTime = p.End
		}
		options = append(options, opt)
	}
	return &dto.AvailabilityResponse{Day: day, Kind: kind, Starts: starts, Options: options}, nil
}

func excludeKey(query dto.AvailabilityQuery, day timetable.Day) (*timetable.SessionKey, error) {
	if query.ExcludeClassID == "" {
		return nil, nil
	}
	if query.ExcludeStart == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "excludeStart is required with excludeClassId")
	}
	exDay := day
	if query.ExcludeDay != "" {
		parsed, err := timetable.ParseDay(query.ExcludeDay)
		if err != nil {
			return nil, err
		}
		exDay = parsed
	}
	return &timetable.SessionKey{ClassID: query.ExcludeClassID, Day: exDay, Start: *query.ExcludeStart}, nil
}

// AddSlot places a new session in a draft.
func (s *TimetableService) AddSlot(ctx context.Context, draftID string, req dto.AddSlotRequest) (*dto.SlotMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	kind, err := timetable.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	day, err := timetable.ParseDay(req.Day)
	if err != nil {
		return nil, err
	}

	var placed timetable.Session
	revision, err := s.mutate(ctx, draftID, "add", req.Revision, func(d *draft) (bool, error) {
		class := timetable.Class{
			ID:          req.ClassID,
			TeacherID:   req.TeacherID,
			CourseName:  req.CourseName,
			CourseCode:  req.CourseCode,
			Section:     d.section,
			FacultyName: req.FacultyName,
		}
		session, err := d.index.Add(class, kind, day, *req.Start, req.Room)
		if err != nil {
			return false, err
		}
		placed = session
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.SlotMutationResponse{Session: &placed, Revision: revision}, nil
}

// EditSlot moves an existing session. A failed edit leaves the draft untouched.
func (s *TimetableService) EditSlot(ctx context.Context, draftID string, req dto.EditSlotRequest) (*dto.SlotMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	key, err := sessionKey(req.Session)
	if err != nil {
		return nil, err
	}
	day, err := timetable.ParseDay(req.Day)
	if err != nil {
		return nil, err
	}

	var moved timetable.Session
	revision, err := s.mutate(ctx, draftID, "edit", req.Revision, func(d *draft) (bool, error) {
		current, ok := d.index.Find(key)
		if !ok {
			return false, appErrors.Clone(timetable.ErrSessionNotFound, fmt.Sprintf("session %s not found", key))
		}
		session, err := d.index.Edit(current, day, *req.Start, req.Room)
		if err != nil {
			return false, err
		}
		moved = session
		return session.Day != current.Day || session.Start != current.Start || session.Room != current.Room, nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.SlotMutationResponse{Session: &moved, Revision: revision}, nil
}

// RemoveSlot deletes a session from a draft. Removing an absent session succeeds without change.
func (s *TimetableService) RemoveSlot(ctx context.Context, draftID string, req dto.RemoveSlotRequest) (*dto.SlotMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	key, err := sessionKey(req.SessionRef)
	if err != nil {
		return nil, err
	}

	removed := false
	revision, err := s.mutate(ctx, draftID, "remove", req.Revision, func(d *draft) (bool, error) {
		current, ok := d.index.Find(key)
		if !ok {
			return false, nil
		}
		removed = d.index.Remove(current)
		return removed, nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.SlotMutationResponse{Removed: removed, Revision: revision}, nil
}

func sessionKey(ref dto.SessionRef) (timetable.SessionKey, error) {
	day, err := timetable.ParseDay(ref.Day)
	if err != nil {
		return timetable.SessionKey{}, err
	}
	return timetable.SessionKey{ClassID: ref.ClassID, Day: day, Start: *ref.Start}, nil
}

// mutate applies one change under the draft lock. A non-nil expected revision must match the
// draft's current revision. The revision is bumped only when apply reports a change.
func (s *TimetableService) mutate(ctx context.Context, draftID, operation string, expected *int, apply func(d *draft) (bool, error)) (int, error) {
	d, err := s.draft(draftID)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	if expected != nil && *expected != d.revision {
		current := d.revision
		d.mu.Unlock()
		s.metrics.RecordMutation(operation, appErrors.ErrPreconditionFailed.Code)
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("draft is at revision %d, not %d", current, *expected))
	}
	changed, err := apply(d)
	if err != nil {
		d.mu.Unlock()
		code := appErrors.FromError(err).Code
		s.metrics.RecordMutation(operation, code)
		s.logger.Info("slot mutation rejected",
			zap.String("draft_id", draftID),
			zap.String("operation", operation),
			zap.String("code", code),
			zap.Error(err),
		)
		return 0, err
	}
	if changed {
		d.revision++
	}
	revision := d.revision
	d.mu.Unlock()

	s.metrics.RecordMutation(operation, "")
	if changed {
		s.invalidateWorkloads(ctx, draftID)
	}
	return revision, nil
}

func (s *TimetableService) invalidateWorkloads(ctx context.Context, draftID string) {
	_ = s.cache.Invalidate(ctx, workloadCachePattern(draftID))
}

// Save persists the draft as a new timetable version, publishing it when asked.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (*dto.SaveTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	d, err := s.draft(req.DraftID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	snap := d.snapshot(s.cfg.DraftTTL)
	d.mu.Unlock()

	if req.Publish {
		if err := s.verifyAgainstPublished(ctx, snap.TermID, snap.Section, snap.Sessions); err != nil {
			return nil, err
		}
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	metaBytes, marshalErr := json.Marshal(map[string]any{
		"draftId":  snap.ID,
		"revision": snap.Revision,
		"sourceId": snap.SourceID,
		"unplaced": len(snap.Unplaced),
		"note":     req.Note,
		"savedAt":  time.Now().UTC(),
	})
	if marshalErr != nil {
		return nil, appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	record := &models.Timetable{
		TermID:  snap.TermID,
		Section: snap.Section,
		Status:  models.TimetableStatusDraft,
		Meta:    types.JSONText(metaBytes),
	}
	if err = s.timetables.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
		return nil, err
	}

	rows := lo.Map(snap.Sessions, func(session timetable.Session, _ int) models.TimetableSession {
		return toSessionModel(session)
	})
	if err = s.sessions.ReplaceSessions(ctx, tx, record.ID, rows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable sessions")
		return nil, err
	}

	if req.Publish {
		if err = s.publish(ctx, tx, record); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return nil, err
	}

	d.mu.Lock()
	d.sourceID = record.ID
	d.mu.Unlock()

	s.logger.Info("timetable saved",
		zap.String("draft_id", snap.ID),
		zap.String("timetable_id", record.ID),
		zap.Int("version", record.Version),
		zap.String("status", string(record.Status)),
		zap.Int("sessions", len(rows)),
	)
	return &dto.SaveTimetableResponse{Timetable: *record, Sessions: len(rows)}, nil
}

func (s *TimetableService) publish(ctx context.Context, exec sqlx.ExtContext, record *models.Timetable) error {
	if err := s.timetables.UpdateStatus(ctx, exec, record.ID, models.TimetableStatusPublished); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable status")
	}
	if err := s.timetables.ArchivePublished(ctx, exec, record.TermID, record.Section, record.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive previous timetable")
	}
	record.Status = models.TimetableStatusPublished
	return nil
}

// verifyAgainstPublished rejects sessions that clash with a room or teacher committed by another
// section's published timetable.
func (s *TimetableService) verifyAgainstPublished(ctx context.Context, termID, section string, sessions []timetable.Session) error {
	idx := timetable.NewIndex(s.grid)
	if err := idx.Load(sessions); err != nil {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "timetable does not fit the current grid")
	}
	_, err := s.applyReservations(ctx, idx, termID, section, true)
	return err
}

func (s *TimetableService) findTimetable(ctx context.Context, id string) (*models.Timetable, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return record, nil
}

func (s *TimetableService) storedSessions(ctx context.Context, id string) ([]timetable.Session, error) {
	rows, err := s.sessions.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable sessions")
	}
	sessions, err := fromSessionModels(rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored timetable session is malformed")
	}
	return sessions, nil
}

// Open loads a stored version into a new draft.
func (s *TimetableService) Open(ctx context.Context, timetableID string) (*dto.DraftResponse, error) {
	record, err := s.findTimetable(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.storedSessions(ctx, timetableID)
	if err != nil {
		return nil, err
	}

	idx := timetable.NewIndex(s.grid)
	if err := idx.Load(sessions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "stored timetable does not fit the current grid")
	}
	skipped, err := s.applyReservations(ctx, idx, record.TermID, record.Section, false)
	if err != nil {
		return nil, err
	}

	d := &draft{
		id:       uuid.NewString(),
		sourceID: record.ID,
		termID:   record.TermID,
		section:  record.Section,
		index:    idx,
	}
	s.metrics.SetActiveDrafts(s.store.Save(d))
	s.logger.Info("timetable opened as draft",
		zap.String("draft_id", d.id),
		zap.String("timetable_id", record.ID),
		zap.Int("sessions", len(sessions)),
		zap.Int("skipped_reservations", skipped),
	)
	return s.respond(d), nil
}

// List returns stored timetables matching the query, newest version first per section.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	list, err := s.timetables.List(ctx, models.TimetableFilter{
		TermID:  query.TermID,
		Section: query.Section,
		Status:  models.TimetableStatus(query.Status),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, nil
}

// Delete removes a stored version that was never published.
func (s *TimetableService) Delete(ctx context.Context, timetableID string) error {
	record, err := s.findTimetable(ctx, timetableID)
	if err != nil {
		return err
	}
	if record.Status != models.TimetableStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.timetables.Delete(ctx, timetableID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	return nil
}

// Publish makes a stored version the published timetable of its section, archiving the previous
// one. It refuses versions that clash with other sections' published timetables.
func (s *TimetableService) Publish(ctx context.Context, timetableID string) (*models.Timetable, error) {
	record, err := s.findTimetable(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	if record.Status == models.TimetableStatusPublished {
		return record, nil
	}
	sessions, err := s.storedSessions(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	if err := s.verifyAgainstPublished(ctx, record.TermID, record.Section, sessions); err != nil {
		return nil, err
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.publish(ctx, tx, record); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return nil, err
	}
	s.logger.Info("timetable published", zap.String("timetable_id", record.ID), zap.Int("version", record.Version))
	return record, nil
}

func gridResponse(g *timetable.Grid) dto.GridResponse {
	return dto.GridResponse{
		Days:       g.Days(),
		Periods:    g.Periods(),
		LunchIndex: g.LunchIndex(),
		Rooms:      g.OrdinaryRooms(),
		Labs:       g.LabRooms(),
	}
}

func draftResponse(snap *DraftSnapshot) dto.DraftResponse {
	return dto.DraftResponse{
		DraftID:      snap.ID,
		SourceID:     snap.SourceID,
		TermID:       snap.TermID,
		Section:      snap.Section,
		Revision:     snap.Revision,
		Grid:         gridResponse(snap.Grid),
		Sessions:     snap.Sessions,
		Unplaced:     snap.Unplaced,
		Reservations: snap.Reservations,
		ExpiresAt:    snap.ExpiresAt,
	}
}

func toSessionModel(session timetable.Session) models.TimetableSession {
	return models.TimetableSession{
		ClassID:     session.ClassID,
		TeacherID:   session.TeacherID,
		DayOfWeek:   int(session.Day),
		StartPeriod: session.Start,
		EndPeriod:   session.End,
		Room:        session.Room,
		Kind:        string(session.Kind),
		CourseName:  session.CourseName,
		CourseCode:  session.CourseCode,
		Section:     session.Section,
		FacultyName: session.FacultyName,
	}
}

func fromSessionModels(rows []models.TimetableSession) ([]timetable.Session, error) {
	sessions := make([]timetable.Session, 0, len(rows))
	for _, row := range rows {
		kind, err := timetable.ParseKind(row.Kind)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, timetable.Session{
			ClassID:     row.ClassID,
			TeacherID:   row.TeacherID,
			Day:         timetable.Day(row.DayOfWeek),
			Start:       row.StartPeriod,
			End:         row.EndPeriod,
			Room:        row.Room,
			Kind:        kind,
			CourseName:  row.CourseName,
			CourseCode:  row.CourseCode,
			Section:     row.Section,
			FacultyName: row.FacultyName,
		})
	}
	return sessions, nil
}
