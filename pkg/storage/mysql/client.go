// Package mysql provides a MySQL-backed implementation of the schedule
// and history stores. Any MySQL-protocol-compatible database works.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/raold/second-brain-sub005/pkg/storage"
)

// Client implements storage.ScheduleStore and storage.HistoryStore on
// MySQL. Upserts use INSERT ... ON DUPLICATE KEY UPDATE over the
// (item_id, user_id) primary key.
type Client struct {
	db *sql.DB
}

// Config contains configuration for creating a MySQL client.
type Config struct {
	// DSN is a go-sql-driver DSN, e.g.
	// "user:pass@tcp(localhost:3306)/srs?parseTime=true".
	// parseTime=true is required so timestamps scan into time.Time.
	DSN string
}

// Compile-time interface checks.
var (
	_ storage.ScheduleStore = (*Client)(nil)
	_ storage.HistoryStore  = (*Client)(nil)
)

// New connects to the database and ensures the schema.
func New(cfg *Config) (*Client, error) {
	db, err := sql.Open("mysql", cfg.DSN)
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

// initSchema creates the schedule and history tables.
func (c *Client) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS review_schedules (
			item_id        VARCHAR(255) NOT NULL,
			user_id        VARCHAR(255) NOT NULL,
			scheduled_date DATETIME(6) NOT NULL,
			algorithm      VARCHAR(32) NOT NULL,
			ease_factor    DOUBLE NOT NULL,
			interval_days  INT NOT NULL,
			repetitions    INT NOT NULL,
			lapses         INT NOT NULL DEFAULT 0,
			retention_rate DOUBLE NOT NULL,
			stability      DOUBLE NOT NULL,
			last_review    DATETIME(6) NULL,
			archived       TINYINT(1) NOT NULL DEFAULT 0,
			updated_at     DATETIME(6) NOT NULL,
			PRIMARY KEY (item_id, user_id),
			KEY idx_review_schedules_due (user_id, scheduled_date)
		)`,
		`CREATE TABLE IF NOT EXISTS review_history (
			id                 BIGINT PRIMARY KEY,
			item_id            VARCHAR(255) NOT NULL,
			user_id            VARCHAR(255) NOT NULL,
			session_id         VARCHAR(64) NULL,
			algorithm          VARCHAR(32) NOT NULL,
			difficulty         VARCHAR(16) NOT NULL,
			time_taken_seconds DOUBLE NULL,
			confidence         DOUBLE NULL,
			reviewed_at        DATETIME(6) NOT NULL,
			KEY idx_review_history_user (user_id, reviewed_at)
		)`,
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
		ON DUPLICATE KEY UPDATE
			scheduled_date = VALUES(scheduled_date),
			algorithm      = VALUES(algorithm),
			ease_factor    = VALUES(ease_factor),
			interval_days  = VALUES(interval_days),
			repetitions    = VALUES(repetitions),
			lapses         = VALUES(lapses),
			retention_rate = VALUES(retention_rate),
			stability      = VALUES(stability),
			last_review    = VALUES(last_review),
			archived       = VALUES(archived),
			updated_at     = VALUES(updated_at)
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
