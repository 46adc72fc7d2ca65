// Package postgres provides a PostgreSQL-backed implementation of the
// schedule and history stores.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/raold/second-brain-sub005/pkg/storage"
)

// Client implements storage.ScheduleStore and storage.HistoryStore on
// PostgreSQL. Upserts use INSERT ... ON CONFLICT over the
// (item_id, user_id) primary key, which PostgreSQL executes atomically
// with row-level locking.
type Client struct {
	db *sql.DB
}

// Config contains configuration for creating a PostgreSQL client.
type Config struct {
	// DSN is a lib/pq connection string, e.g.
	// "host=localhost port=5432 user=srs password=srs dbname=srs sslmode=disable".
	DSN string
}

// Compile-time interface checks.
var (
	_ storage.ScheduleStore = (*Client)(nil)
	_ storage.HistoryStore  = (*Client)(nil)
)

// New connects to the database and ensures the schema.
func New(cfg *Config) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
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
			scheduled_date TIMESTAMPTZ NOT NULL,
			algorithm      TEXT NOT NULL,
			ease_factor    DOUBLE PRECISION NOT NULL,
			interval_days  INTEGER NOT NULL,
			repetitions    INTEGER NOT NULL,
			lapses         INTEGER NOT NULL DEFAULT 0,
			retention_rate DOUBLE PRECISION NOT NULL,
			stability      DOUBLE PRECISION NOT NULL,
			last_review    TIMESTAMPTZ,
			archived       BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at     TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (item_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_schedules_due
			ON review_schedules(user_id, scheduled_date)`,
		`CREATE TABLE IF NOT EXISTS review_history (
			id                 BIGINT PRIMARY KEY,
			item_id            TEXT NOT NULL,
			user_id            TEXT NOT NULL,
			session_id         TEXT,
			algorithm          TEXT NOT NULL,
			difficulty         TEXT NOT NULL,
			time_taken_seconds DOUBLE PRECISION,
			confidence         DOUBLE PRECISION,
			reviewed_at        TIMESTAMPTZ NOT NULL
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
		WHERE item_id = $1 AND user_id = $2
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (item_id, user_id) DO UPDATE SET
			scheduled_date = EXCLUDED.scheduled_date,
			algorithm      = EXCLUDED.algorithm,
			ease_factor    = EXCLUDED.ease_factor,
			interval_days  = EXCLUDED.interval_days,
			repetitions    = EXCLUDED.repetitions,
			lapses         = EXCLUDED.lapses,
			retention_rate = EXCLUDED.retention_rate,
			stability      = EXCLUDED.stability,
			last_review    = EXCLUDED.last_review,
			archived       = EXCLUDED.archived,
			updated_at     = EXCLUDED.updated_at
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
		sched.Archived,
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
		WHERE user_id = $1 AND archived = FALSE AND scheduled_date <= $2
		ORDER BY scheduled_date ASC, item_id ASC
	`
	args := []interface{}{userID, asOf}
	if limit > 0 {
		query += " LIMIT $3"
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
		SET archived = TRUE, updated_at = $1
		WHERE item_id = $2 AND user_id = $3
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
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
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(" AND reviewed_at >= $%d", len(args))
	}
	if !until.IsZero() {
		args = append(args, until)
		query += fmt.Sprintf(" AND reviewed_at < $%d", len(args))
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
