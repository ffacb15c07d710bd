package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type draftReader interface {
	Snapshot(ctx context.Context, draftID string) (*DraftSnapshot, error)
}

func workloadCacheKey(draftID string, revision int, teacherID string) string {
	return fmt.Sprintf("workload:%s:%d:teacher:%s", draftID, revision, teacherID)
}

func workloadSummaryKey(draftID string, revision int) string {
	return fmt.Sprintf("workload:%s:%d:summary", draftID, revision)
}

func workloadCachePattern(draftID string) string {
	return fmt.Sprintf("workload:%s:*", draftID)
}

// WorkloadService projects drafts onto per-teacher weekly workloads. Reports are cached per draft
// revision, so a mutation never serves a stale report even before invalidation runs.
type WorkloadService struct {
	drafts draftReader
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewWorkloadService constructs the workload service.
func NewWorkloadService(drafts draftReader, cache *CacheService, ttl time.Duration, logger *zap.Logger) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkloadService{drafts: drafts, cache: cache, ttl: ttl, logger: logger}
}

// ForTeacher returns the weekly workload of one teacher in a draft and whether it came from cache.
// A teacher with no sessions gets an empty week.
func (s *WorkloadService) ForTeacher(ctx context.Context, draftID, teacherID string) (*timetable.Workload, bool, error) {
	if teacherID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	snap, err := s.drafts.Snapshot(ctx, draftID)
	if err != nil {
		return nil, false, err
	}

	workload, hit, err := Remember(ctx, s.cache, workloadCacheKey(snap.ID, snap.Revision, teacherID), s.ttl, func() (timetable.Workload, error) {
		return timetable.WorkloadFor(snap.Grid, teacherID, snap.Sessions), nil
	})
	if err != nil {
		return nil, false, err
	}
	return &workload, hit, nil
}

// ForAll returns the workload of every teacher scheduled in a draft, in order of first appearance,
// and whether it came from cache.
func (s *WorkloadService) ForAll(ctx context.Context, draftID string) (*dto.WorkloadSummaryResponse, bool, error) {
	snap, err := s.drafts.Snapshot(ctx, draftID)
	if err != nil {
		return nil, false, err
	}

	summary, hit, err := Remember(ctx, s.cache, workloadSummaryKey(snap.ID, snap.Revision), s.ttl, func() (dto.WorkloadSummaryResponse, error) {
		teachers := timetable.Teachers(snap.Sessions)
		summary := dto.WorkloadSummaryResponse{
			DraftID:   snap.ID,
			Revision:  snap.Revision,
			Workloads: make([]timetable.Workload, 0, len(teachers)),
		}
		for _, teacherID := range teachers {
			summary.Workloads = append(summary.Workloads, timetable.WorkloadFor(snap.Grid, teacherID, snap.Sessions))
		}
		s.logger.Debug("workload summary computed", zap.String("draft_id", snap.ID), zap.Int("teachers", len(teachers)))
		return summary, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &summary, hit, nil
}
