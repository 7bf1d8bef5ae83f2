// Package storage persists acquisition history in sqlite: which missing
// scenes were handed to the backend, when, and with what outcome, plus one
// run record per performer. The queue workflow uses it to skip scenes it
// already tried before the lookback cutoff.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Attempt statuses recorded per scene.
const (
	StatusQueued          = "queued"
	StatusSeriesNotFound  = "series_not_found"
	StatusEpisodeNotFound = "episode_not_found"
	StatusSkipped         = "skipped"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scene_attempts (
  scene_id      TEXT PRIMARY KEY,
  performer_id  TEXT NOT NULL,
  last_tried_at TEXT NOT NULL,
  last_status   TEXT NOT NULL,
  attempts      INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_attempts_performer ON scene_attempts(performer_id);
CREATE TABLE IF NOT EXISTS performer_runs (
  performer_id TEXT PRIMARY KEY,
  last_run_at  TEXT NOT NULL,
  runs         INTEGER NOT NULL DEFAULT 1
);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// AttemptRecord is the stored history for one scene.
type AttemptRecord struct {
	SceneID     string
	PerformerID string
	LastTriedAt time.Time
	LastStatus  string
	Attempts    int
}

// MarkAttempt upserts the attempt record for a scene, bumping the counter.
func (d *DB) MarkAttempt(ctx context.Context, performerID, sceneID, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO scene_attempts(scene_id, performer_id, last_tried_at, last_status, attempts)
VALUES(?, ?, ?, ?, 1)
ON CONFLICT(scene_id) DO UPDATE SET
  performer_id  = excluded.performer_id,
  last_tried_at = excluded.last_tried_at,
  last_status   = excluded.last_status,
  attempts      = attempts + 1`,
		sceneID, performerID, now, status)
	return err
}

// Attempt returns the stored record for a scene, or nil if never tried.
func (d *DB) Attempt(ctx context.Context, sceneID string) (*AttemptRecord, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT scene_id, performer_id, last_tried_at, last_status, attempts FROM scene_attempts WHERE scene_id = ?`,
		sceneID)
	var rec AttemptRecord
	var triedAt string
	if err := row.Scan(&rec.SceneID, &rec.PerformerID, &triedAt, &rec.LastStatus, &rec.Attempts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.LastTriedAt = parseStoredTime(triedAt)
	return &rec, nil
}

// RecordRun bumps the run record for a performer.
func (d *DB) RecordRun(ctx context.Context, performerID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO performer_runs(performer_id, last_run_at, runs)
VALUES(?, ?, 1)
ON CONFLICT(performer_id) DO UPDATE SET
  last_run_at = excluded.last_run_at,
  runs        = runs + 1`,
		performerID, now)
	return err
}

// LastRun returns when the performer was last processed, if ever.
func (d *DB) LastRun(ctx context.Context, performerID string) (time.Time, bool, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT last_run_at FROM performer_runs WHERE performer_id = ?`, performerID)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return parseStoredTime(raw), true, nil
}

// PerformerStats summarizes attempt history per performer.
type PerformerStats struct {
	PerformerID string
	Scenes      int
	Queued      int
	LastRunAt   time.Time
}

func (d *DB) Stats(ctx context.Context) ([]PerformerStats, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT
  a.performer_id,
  COUNT(*),
  SUM(CASE WHEN a.last_status = ? THEN 1 ELSE 0 END),
  COALESCE(r.last_run_at, '')
FROM scene_attempts a
LEFT JOIN performer_runs r ON r.performer_id = a.performer_id
GROUP BY a.performer_id
ORDER BY a.performer_id`, StatusQueued)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []PerformerStats
	for rows.Next() {
		var s PerformerStats
		var lastRun string
		if err := rows.Scan(&s.PerformerID, &s.Scenes, &s.Queued, &lastRun); err != nil {
			return nil, err
		}
		if lastRun != "" {
			s.LastRunAt = parseStoredTime(lastRun)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func parseStoredTime(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return t
	}
	return time.Time{}
}
