// Package sqlite provides a SQLite-backed implementation of the schedule
// and history stores.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/raold/second-brain-sub005/pkg/storage"
)

// Client implements storage.ScheduleStore and storage.HistoryStore on a
// SQLite database file. Upserts rely on ON CONFLICT over the
// (item_id, user_id) primary key, which SQLite applies atomically.
type Client struct {
	db *sql.DB
}

// Config contains configuration for creating a SQLite client.
type Config struct {
	// DBPath is the path to the SQLite database file. ":memory:" works
	// for throwaway stores.
	DBPath string
}

// Compile-time interface checks.
var (
	_ storage.ScheduleStore = (*Client)(nil)
	_ storage.HistoryStore  = (*Client)(nil)
)

// New opens (creating if needed) the database and ensures the schema.
func New(cfg *Config) (*Client, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c := &Client{db: db}
	if err := c.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// initSchema creates the schedule and history tables and their indexes.
func (c *Client) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS review_schedules (
			item_id        TEXT NOT NULL,
			user_id        TEXT NOT NULL,
			scheduled_date TIMESTAMP NOT NULL,
			algorithm      TEXT NOT NULL,
			ease_factor    REAL NOT NULL,
			interval_days  INTEGER NOT NULL,
			repetitions    INTEGER NOT NULL,
			lapses         INTEGER NOT NULL DEFAULT 0,
			retention_rate REAL NOT NULL,
			stability      REAL NOT NULL,
			last_review    TIMESTAMP,
			archived       INTEGER NOT NULL DEFAULT 0,
			updated_at     TIMESTAMP NOT NULL,
			PRIMARY KEY (item_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_schedules_due
			ON review_schedules(user_id, scheduled_date)`,
		`CREATE TABLE IF NOT EXISTS review_history (
			id                 INTEGER PRIMARY KEY,
			item_id            TEXT NOT NULL,
			user_id            TEXT NOT NULL,
			session_id         TEXT,
			algorithm          TEXT NOT NULL,
			difficulty         TEXT NOT NULL,
			time_taken_seconds REAL,
			confidence         REAL,
			reviewed_at        TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_history_user
			ON review_history(user_id, reviewed_at)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// GetSchedule implements storage.ScheduleStore.
func (c *Client) GetSchedule(ctx context.Context, itemID, userID string) (*storage.Schedule, error) {
	query := `
		SELECT item_id, user_id, scheduled_date, algorithm, ease_factor,
		       interval_days, repetitions, lapses, retention_rate, stability,
		       last_review, archived, updated_at
		FROM review_schedules
		WHERE item_id = ? AND user_id = ?
	`
	row := c.db.QueryRowContext(ctx, query, itemID, userID)
	sched, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return sched, nil
}

// PutSchedule implements storage.ScheduleStore.
func (c *Client) PutSchedule(ctx context.Context, sched *storage.Schedule) error {
	query := `
		INSERT INTO review_schedules (
			item_id, user_id, scheduled_date, algorithm, ease_factor,
			interval_days, repetitions, lapses, retention_rate, stability,
			last_review, archived, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id, user_id) DO UPDATE SET
			scheduled_date = excluded.scheduled_date,
			algorithm      = excluded.algorithm,
			ease_factor    = excluded.ease_factor,
			interval_days  = excluded.interval_days,
			repetitions    = excluded.repetitions,
			lapses         = excluded.lapses,
			retention_rate = excluded.retention_rate,
			stability      = excluded.stability,
			last_review    = excluded.last_review,
			archived       = excluded.archived,
			updated_at     = excluded.updated_at
	`
	_, err := c.db.ExecContext(ctx, query,
		sched.ItemID,
		sched.UserID,
		sched.ScheduledDate,
		sched.Algorithm,
		sched.EaseFactor,
		sched.IntervalDays,
		sched.Repetitions,
		sched.Lapses,
		sched.RetentionRate,
		sched.Stability,
		nullTime(sched.LastReview),
		boolToInt(sched.Archived),
		sched.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}
	return nil
}

// ListDue implements storage.ScheduleStore.
func (c *Client) ListDue(ctx context.Context, userID string, asOf time.Time, limit int) ([]*storage.Schedule, error) {
	query := `
		SELECT item_id, user_id, scheduled_date, algorithm, ease_factor,
		       interval_days, repetitions, lapses, retention_rate, stability,
		       last_review, archived, updated_at
		FROM review_schedules
		WHERE user_id = ? AND archived = 0 AND scheduled_date <= ?
		ORDER BY scheduled_date ASC, item_id ASC
	`
	args := []interface{}{userID, asOf}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}
	defer rows.Close()

	var due []*storage.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		due = append(due, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}
	return due, nil
}

// ArchiveSchedule implements storage.ScheduleStore.
func (c *Client) ArchiveSchedule(ctx context.Context, itemID, userID string) error {
	query := `
		UPDATE review_schedules
		SET archived = 1, updated_at = ?
		WHERE item_id = ? AND user_id = ?
	`
	result, err := c.db.ExecContext(ctx, query, time.Now().UTC(), itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to archive schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendHistory implements storage.HistoryStore.
func (c *Client) AppendHistory(ctx context.Context, rec *storage.HistoryRecord) error {
	query := `
		INSERT INTO review_history (
			id, item_id, user_id, session_id, algorithm, difficulty,
			time_taken_seconds, confidence, reviewed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.ExecContext(ctx, query,
		rec.ID,
		rec.ItemID,
		rec.UserID,
		nullString(rec.SessionID),
		rec.Algorithm,
		rec.Difficulty,
		nullFloat(rec.TimeTakenSeconds),
		nullFloat(rec.Confidence),
		rec.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// ListHistory implements storage.HistoryStore.
func (c *Client) ListHistory(ctx context.Context, userID string, since, until time.Time) ([]*storage.HistoryRecord, error) {
	query := `
		SELECT id, item_id, user_id, session_id, algorithm, difficulty,
		       time_taken_seconds, confidence, reviewed_at
		FROM review_history
		WHERE user_id = ?
	`
	args := []interface{}{userID}
	if !since.IsZero() {
		query += " AND reviewed_at >= ?"
		args = append(args, since)
	}
	if !until.IsZero() {
		query += " AND reviewed_at < ?"
		args = append(args, until)
	}
	query += " ORDER BY reviewed_at ASC, id ASC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var out []*storage.HistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (c *Client) Close() error {
	return c.db.Close()
}
