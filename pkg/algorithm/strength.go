package algorithm

import (
	"fmt"
	"math"
	"time"
)

// Default and boundary values for MemoryStrength fields.
const (
	// DefaultEaseFactor is the starting ease multiplier for new items.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor the ease factor can never drop below.
	MinEaseFactor = 1.3

	// DefaultRetentionRate is the starting recall-probability estimate.
	DefaultRetentionRate = 0.9

	// DefaultStability is the starting forgetting-curve stability in days.
	DefaultStability = 1.0

	// MaxIntervalDays caps every computed interval (roughly ten years),
	// preventing overflow from repeated ease multiplication.
	MaxIntervalDays = 3650
)

// MemoryStrength is the per-item, per-user memorization state.
//
// It is a pure value type: strategies take the current strength and return
// a new one, never mutating shared state. A zero MemoryStrength is not
// valid; use DefaultStrength for new items.
type MemoryStrength struct {
	// EaseFactor is the multiplier controlling interval growth.
	// Invariant: EaseFactor >= MinEaseFactor. Unbounded above.
	EaseFactor float64 `json:"ease_factor"`

	// IntervalDays is the current review interval. Invariant: >= 1.
	IntervalDays int `json:"interval_days"`

	// Repetitions counts consecutive successful reviews since the last lapse.
	Repetitions int `json:"repetitions"`

	// Lapses counts consecutive Again reviews since the last Good or Easy.
	// Feeds leech detection for the Anki strategy.
	Lapses int `json:"lapses"`

	// RetentionRate is the estimated recall probability at due time, in [0, 1].
	RetentionRate float64 `json:"retention_rate"`

	// Stability is the forgetting-curve stability in days. Invariant: > 0.
	Stability float64 `json:"stability"`

	// LastReview is when the item was last reviewed (nil if never).
	LastReview *time.Time `json:"last_review,omitempty"`
}

// DefaultStrength returns the initial strength for an item entering
// scheduling for the first time.
func DefaultStrength() MemoryStrength {
	return MemoryStrength{
		EaseFactor:    DefaultEaseFactor,
		IntervalDays:  1,
		RetentionRate: DefaultRetentionRate,
		Stability:     DefaultStability,
	}
}

// Validate checks field invariants, returning an error wrapping
// ErrInvalidState on the first violation.
func (s MemoryStrength) Validate() error {
	switch {
	case math.IsNaN(s.EaseFactor) || s.EaseFactor < MinEaseFactor:
		return fmt.Errorf("%w: ease_factor %v below %v", ErrInvalidState, s.EaseFactor, MinEaseFactor)
	case s.IntervalDays < 1:
		return fmt.Errorf("%w: interval_days %d below 1", ErrInvalidState, s.IntervalDays)
	case s.Repetitions < 0:
		return fmt.Errorf("%w: negative repetitions %d", ErrInvalidState, s.Repetitions)
	case s.Lapses < 0:
		return fmt.Errorf("%w: negative lapses %d", ErrInvalidState, s.Lapses)
	case math.IsNaN(s.RetentionRate) || s.RetentionRate < 0 || s.RetentionRate > 1:
		return fmt.Errorf("%w: retention_rate %v outside [0, 1]", ErrInvalidState, s.RetentionRate)
	case math.IsNaN(s.Stability) || s.Stability <= 0:
		return fmt.Errorf("%w: stability %v not positive", ErrInvalidState, s.Stability)
	}
	return nil
}

// clampEase enforces the MinEaseFactor floor. There is no upper bound.
func clampEase(e float64) float64 {
	if e < MinEaseFactor {
		return MinEaseFactor
	}
	return e
}

// clampInterval keeps an interval within [1, MaxIntervalDays].
func clampInterval(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxIntervalDays {
		return MaxIntervalDays
	}
	return days
}
