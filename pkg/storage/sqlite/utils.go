package sqlite

import (
	"database/sql"
	"time"

	"github.com/raold/second-brain-sub005/pkg/storage"
)

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSchedule reads one review_schedules row.
func scanSchedule(row rowScanner) (*storage.Schedule, error) {
	var (
		sched      storage.Schedule
		lastReview sql.NullTime
		archived   int
	)
	err := row.Scan(
		&sched.ItemID,
		&sched.UserID,
		&sched.ScheduledDate,
		&sched.Algorithm,
		&sched.EaseFactor,
		&sched.IntervalDays,
		&sched.Repetitions,
		&sched.Lapses,
		&sched.RetentionRate,
		&sched.Stability,
		&lastReview,
		&archived,
		&sched.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastReview.Valid {
		t := lastReview.Time
		sched.LastReview = &t
	}
	sched.Archived = archived != 0
	return &sched, nil
}

// scanHistory reads one review_history row.
func scanHistory(row rowScanner) (*storage.HistoryRecord, error) {
	var (
		rec        storage.HistoryRecord
		sessionID  sql.NullString
		timeTaken  sql.NullFloat64
		confidence sql.NullFloat64
	)
	err := row.Scan(
		&rec.ID,
		&rec.ItemID,
		&rec.UserID,
		&sessionID,
		&rec.Algorithm,
		&rec.Difficulty,
		&timeTaken,
		&confidence,
		&rec.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.SessionID = sessionID.String
	if timeTaken.Valid {
		v := timeTaken.Float64
		rec.TimeTakenSeconds = &v
	}
	if confidence.Valid {
		v := confidence.Float64
		rec.Confidence = &v
	}
	return &rec, nil
}

// nullTime converts an optional time to its SQL representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts "" to SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullFloat converts an optional float to its SQL representation.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
