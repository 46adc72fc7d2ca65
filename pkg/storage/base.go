// Package storage defines the logical persistence contract the scheduling
// engine requires, along with the flat record types stores exchange.
//
// The types here mirror the engine's richer types to avoid circular
// dependencies; the engine converts at the boundary. Implementations must
// make PutSchedule atomic per (item_id, user_id) key — the engine relies
// on read-then-write being safe to retry from a fresh read.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that no schedule exists for the requested key.
var ErrNotFound = errors.New("storage: schedule not found")

// Schedule is the persisted form of a review schedule, one row per
// (item_id, user_id) pair with the memory strength flattened in.
type Schedule struct {
	// ItemID identifies the reviewable item.
	ItemID string

	// UserID identifies the user the schedule belongs to.
	UserID string

	// ScheduledDate is when the next review is due.
	ScheduledDate time.Time

	// Algorithm is the scheduling algorithm name ("sm2", "anki", ...).
	Algorithm string

	// EaseFactor is the interval-growth multiplier.
	EaseFactor float64

	// IntervalDays is the current review interval in days.
	IntervalDays int

	// Repetitions counts consecutive successful reviews.
	Repetitions int

	// Lapses counts consecutive failed reviews.
	Lapses int

	// RetentionRate is the estimated recall probability at due time.
	RetentionRate float64

	// Stability is the forgetting-curve stability in days.
	Stability float64

	// LastReview is when the item was last reviewed (nil if never).
	LastReview *time.Time

	// Archived marks schedules whose owning item was deleted. Archived
	// rows are kept for audit but excluded from due queries.
	Archived bool

	// UpdatedAt is when the row was last written.
	UpdatedAt time.Time
}

// HistoryRecord is one append-only review event.
type HistoryRecord struct {
	// ID is the unique record identifier (engine-assigned snowflake).
	ID int64

	// ItemID identifies the reviewed item.
	ItemID string

	// UserID identifies the reviewing user.
	UserID string

	// SessionID is the owning review session ("" when sessionless).
	SessionID string

	// Algorithm is the algorithm that processed the review.
	Algorithm string

	// Difficulty is the review outcome ("again", "hard", "good", "easy").
	Difficulty string

	// TimeTakenSeconds is how long the review took (nil if unknown).
	TimeTakenSeconds *float64

	// Confidence is the user's self-reported confidence (nil if absent).
	Confidence *float64

	// ReviewedAt is when the review happened.
	ReviewedAt time.Time
}

// ScheduleStore persists review schedules keyed by (item_id, user_id).
type ScheduleStore interface {
	// GetSchedule returns the schedule for the key, or ErrNotFound.
	GetSchedule(ctx context.Context, itemID, userID string) (*Schedule, error)

	// PutSchedule upserts the schedule. The upsert must be atomic per
	// key: re-scheduling replaces the row, it never duplicates it.
	PutSchedule(ctx context.Context, sched *Schedule) error

	// ListDue returns non-archived schedules with ScheduledDate <= asOf.
	// A limit of 0 means unlimited. Ordering is unspecified; the engine
	// applies its own priority ordering.
	ListDue(ctx context.Context, userID string, asOf time.Time, limit int) ([]*Schedule, error)

	// ArchiveSchedule flags the schedule as archived, keeping the row.
	// Archiving a missing key returns ErrNotFound.
	ArchiveSchedule(ctx context.Context, itemID, userID string) error

	// Close releases store resources.
	Close() error
}

// HistoryStore persists the append-only review log.
type HistoryStore interface {
	// AppendHistory appends one review event. Appends never conflict:
	// duplicate content is stored as separate records.
	AppendHistory(ctx context.Context, rec *HistoryRecord) error

	// ListHistory returns a user's events with since <= ReviewedAt < until,
	// ordered by ReviewedAt ascending. A zero since means all history.
	ListHistory(ctx context.Context, userID string, since, until time.Time) ([]*HistoryRecord, error)

	// Close releases store resources.
	Close() error
}

// ContentStore answers whether a reviewable item exists. The content
// system owning the items is external to the engine.
type ContentStore interface {
	ItemExists(ctx context.Context, itemID string) (bool, error)
}

// EventSink receives engine events. Delivery is fire-and-forget: the
// engine never blocks on a sink and ignores its failures.
type EventSink interface {
	Emit(eventType string, payload map[string]interface{})
}

// EmitterFunc adapts a function to the EventSink interface.
type EmitterFunc func(eventType string, payload map[string]interface{})

// Emit implements EventSink.
func (f EmitterFunc) Emit(eventType string, payload map[string]interface{}) {
	f(eventType, payload)
}
