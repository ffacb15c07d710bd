package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const timetableSessionColumns = `id, timetable_id, class_id, teacher_id, day_of_week, start_period, end_period, room, kind,
course_name, course_code, section, faculty_name, created_at`

// TimetableSessionRepository manages the session rows of stored timetables.
type TimetableSessionRepository struct {
	db *sqlx.DB
}

// NewTimetableSessionRepository builds repository.
func NewTimetableSessionRepository(db *sqlx.DB) *TimetableSessionRepository {
	return &TimetableSessionRepository{db: db}
}

func (r *TimetableSessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceSessions swaps the stored sessions of timetableID for sessions.
func (r *TimetableSessionRepository) ReplaceSessions(ctx context.Context, exec sqlx.ExtContext, timetableID string, sessions []models.TimetableSession) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM timetable_sessions WHERE timetable_id = $1`, timetableID); err != nil {
		return fmt.Errorf("clear timetable sessions: %w", err)
	}

	const query = `
INSERT INTO timetable_sessions (id, timetable_id, class_id, teacher_id, day_of_week, start_period, end_period, room, kind,
course_name, course_code, section, faculty_name, created_at)
VALUES (:id, :timetable_id, :class_id, :teacher_id, :day_of_week, :start_period, :end_period, :room, :kind,
:course_name, :course_code, :section, :faculty_name, :created_at)`

	now := time.Now().UTC()
	for i := range sessions {
		row := &sessions[i]
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		row.TimetableID = timetableID
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, row); err != nil {
			return fmt.Errorf("insert timetable session: %w", err)
		}
	}
	return nil
}

// ListByTimetable returns sessions ordered by day and start period.
func (r *TimetableSessionRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSession, error) {
	query := `SELECT ` + timetableSessionColumns + `
FROM timetable_sessions WHERE timetable_id = $1 ORDER BY day_of_week ASC, start_period ASC, class_id ASC`
	var sessions []models.TimetableSession
	if err := r.db.SelectContext(ctx, &sessions, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable sessions: %w", err)
	}
	return sessions, nil
}

// ListPublishedByTerm returns the sessions of every published timetable of the term except the
// given section's. They become outside reservations when another section is scheduled.
func (r *TimetableSessionRepository) ListPublishedByTerm(ctx context.Context, termID, excludeSection string) ([]models.TimetableSession, error) {
	const query = `SELECT s.id, s.timetable_id, s.class_id, s.teacher_id, s.day_of_week, s.start_period, s.end_period, s.room, s.kind,
s.course_name, s.course_code, s.section, s.faculty_name, s.created_at
FROM timetable_sessions s
JOIN timetables t ON t.id = s.timetable_id
WHERE t.term_id = $1 AND t.status = $2 AND t.section <> $3
ORDER BY s.day_of_week ASC, s.start_period ASC`
	var sessions []models.TimetableSession
	if err := r.db.SelectContext(ctx, &sessions, query, termID, models.TimetableStatusPublished, excludeSection); err != nil {
		return nil, fmt.Errorf("list published timetable sessions: %w", err)
	}
	return sessions, nil
}
