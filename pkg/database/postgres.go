package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Schema creates the timetable tables when they do not exist yet.
const Schema = `
CREATE TABLE IF NOT EXISTS class_offerings (
	id           TEXT PRIMARY KEY,
	term_id      TEXT NOT NULL,
	section      TEXT NOT NULL,
	course_name  TEXT NOT NULL,
	course_code  TEXT NOT NULL,
	teacher_id   TEXT NOT NULL,
	faculty_name TEXT NOT NULL DEFAULT '',
	theory_count INTEGER NOT NULL DEFAULT 0 CHECK (theory_count >= 0),
	lab_count    INTEGER NOT NULL DEFAULT 0 CHECK (lab_count >= 0),
	position     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_class_offerings_term_section ON class_offerings (term_id, section, position);

CREATE TABLE IF NOT EXISTS timetables (
	id         TEXT PRIMARY KEY,
	term_id    TEXT NOT NULL,
	section    TEXT NOT NULL,
	version    INTEGER NOT NULL,
	status     TEXT NOT NULL,
	meta       JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (term_id, section, version)
);

CREATE TABLE IF NOT EXISTS timetable_sessions (
	id           TEXT PRIMARY KEY,
	timetable_id TEXT NOT NULL REFERENCES timetables (id) ON DELETE CASCADE,
	class_id     TEXT NOT NULL,
	teacher_id   TEXT NOT NULL,
	day_of_week  INTEGER NOT NULL,
	start_period INTEGER NOT NULL,
	end_period   INTEGER NOT NULL,
	room         TEXT NOT NULL,
	kind         TEXT NOT NULL,
	course_name  TEXT NOT NULL,
	course_code  TEXT NOT NULL,
	section      TEXT NOT NULL,
	faculty_name TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	UNIQUE (timetable_id, day_of_week, start_period)
);`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply timetable schema: %w", err)
	}
	return nil
}
