package engine

import (
	"time"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
)

// Priority weights for ordering due items: one point per overdue day plus
// up to ten points for low estimated retention.
const (
	overdueWeight   = 1.0
	retentionWeight = 10.0
)

// ReviewSchedule is the active schedule for one (item, user) pair.
//
// Exactly one active schedule exists per pair; re-scheduling replaces it.
// Schedules are archived, never deleted, when the owning item goes away.
type ReviewSchedule struct {
	// ItemID identifies the reviewable item.
	ItemID string `json:"item_id"`

	// UserID identifies the user the schedule belongs to.
	UserID string `json:"user_id"`

	// ScheduledDate is when the next review is due.
	ScheduledDate time.Time `json:"scheduled_date"`

	// Algorithm is the strategy that will process the next review.
	Algorithm algorithm.Algorithm `json:"algorithm"`

	// Strength is the item's current memorization state.
	Strength algorithm.MemoryStrength `json:"strength"`

	// Archived marks schedules whose owning item was deleted.
	Archived bool `json:"archived,omitempty"`

	// UpdatedAt is when the schedule was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// OverdueDays returns how many whole days past due the schedule is at
// asOf, never negative.
func (s *ReviewSchedule) OverdueDays(asOf time.Time) int {
	if !asOf.After(s.ScheduledDate) {
		return 0
	}
	return int(asOf.Sub(s.ScheduledDate).Hours() / 24)
}

// PriorityScore ranks due items: overdue items and items with low
// estimated retention surface first.
func (s *ReviewSchedule) PriorityScore(asOf time.Time) float64 {
	return float64(s.OverdueDays(asOf))*overdueWeight +
		(1-s.Strength.RetentionRate)*retentionWeight
}

// ReviewOutcome is what ScheduleReview returns: the replacement schedule
// plus the leech flag surfaced from the algorithm.
type ReviewOutcome struct {
	// Schedule is the new active schedule for the item.
	Schedule ReviewSchedule `json:"schedule"`

	// IsLeech reports that the item crossed the configured failure
	// threshold and may deserve special handling by the caller.
	IsLeech bool `json:"is_leech,omitempty"`
}

// ReviewHistory is one immutable review event from the append-only log.
type ReviewHistory struct {
	// ID is the unique record identifier.
	ID int64 `json:"id"`

	// ItemID identifies the reviewed item.
	ItemID string `json:"item_id"`

	// UserID identifies the reviewing user.
	UserID string `json:"user_id"`

	// SessionID is the owning review session ("" when sessionless).
	SessionID string `json:"session_id,omitempty"`

	// Algorithm is the strategy that processed the review.
	Algorithm algorithm.Algorithm `json:"algorithm"`

	// Difficulty is the review outcome.
	Difficulty algorithm.Difficulty `json:"difficulty"`

	// TimeTakenSeconds is how long the review took (nil if unknown).
	TimeTakenSeconds *float64 `json:"time_taken_seconds,omitempty"`

	// Confidence is the user's self-reported confidence in [0, 1]
	// (nil if absent).
	Confidence *float64 `json:"confidence,omitempty"`

	// ReviewedAt is when the review happened.
	ReviewedAt time.Time `json:"reviewed_at"`
}

// SessionSummary is the finalized result of an ended review session.
// EndSession returns the identical summary on repeated calls.
type SessionSummary struct {
	// SessionID identifies the session.
	SessionID string `json:"session_id"`

	// UserID identifies the session's user.
	UserID string `json:"user_id"`

	// StartedAt is when the session was opened.
	StartedAt time.Time `json:"started_at"`

	// EndedAt is when the session was closed.
	EndedAt time.Time `json:"ended_at"`

	// ItemsReviewed lists reviewed item IDs in review order.
	ItemsReviewed []string `json:"items_reviewed"`

	// ReviewedCount is the total number of reviews in the session.
	ReviewedCount int `json:"reviewed_count"`

	// CountsByDifficulty breaks ReviewedCount down per outcome.
	CountsByDifficulty map[algorithm.Difficulty]int `json:"counts_by_difficulty"`

	// AvgConfidence averages the confidences that were reported (0 when
	// none were).
	AvgConfidence float64 `json:"avg_confidence"`

	// AvgTimeSeconds averages the review durations that were reported.
	AvgTimeSeconds float64 `json:"avg_time_seconds"`

	// DurationSeconds is the session's wall-clock length.
	DurationSeconds float64 `json:"duration_seconds"`
}

// Statistics aggregates a user's review history over a time window.
type Statistics struct {
	// ReviewedCount is the number of reviews in the window.
	ReviewedCount int `json:"reviewed_count"`

	// RetentionRateAvg is the fraction of reviews rated Good or Easy.
	RetentionRateAvg float64 `json:"retention_rate_avg"`

	// AlgorithmDistribution counts reviews per algorithm.
	AlgorithmDistribution map[algorithm.Algorithm]int `json:"algorithm_distribution"`

	// StreakDays is the current run of consecutive calendar days (UTC)
	// with at least one review, anchored at today or yesterday.
	StreakDays int `json:"streak_days"`
}

// BulkReport is the per-item outcome of a bulk scheduling call. A failure
// on one item never aborts the rest of the batch.
type BulkReport struct {
	// Scheduled lists item IDs that received a new schedule.
	Scheduled []string `json:"scheduled"`

	// Skipped lists item IDs that already had an active schedule and
	// were left untouched.
	Skipped []string `json:"skipped"`

	// Failed maps item IDs to the error that stopped them.
	Failed map[string]error `json:"-"`
}
