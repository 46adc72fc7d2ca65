package algorithm

import (
	"math"
	"time"
)

// SM2 implements the SuperMemo-2 schedule.
//
// Transition table per difficulty:
//
//	Again: interval = 1, ease -= 0.2, repetitions = 0
//	Hard:  interval = max(1, floor(interval * 0.6)), ease -= 0.15
//	Good:  interval = 1 / 6 / floor(interval * ease) for the 1st / 2nd /
//	       later success, ease unchanged, repetitions++
//	Easy:  interval = floor(interval * ease * 1.3), ease += 0.15,
//	       repetitions++
//
// Ease never drops below MinEaseFactor and intervals are clamped to
// MaxIntervalDays.
type SM2 struct {
	// MaxIntervalDays caps computed intervals. Defaults to the package
	// ceiling when zero.
	MaxIntervalDays int
}

// NewSM2 returns an SM2 strategy with the default interval ceiling.
func NewSM2() *SM2 {
	return &SM2{MaxIntervalDays: MaxIntervalDays}
}

// Apply implements Strategy.
func (a *SM2) Apply(current MemoryStrength, difficulty Difficulty, now time.Time) (Result, error) {
	if err := checkApply(current, difficulty); err != nil {
		return Result{}, err
	}

	next := current
	switch difficulty {
	case Again:
		next.IntervalDays = 1
		next.EaseFactor = clampEase(current.EaseFactor - 0.2)
		next.Repetitions = 0
		next.Lapses = current.Lapses + 1
	case Hard:
		next.IntervalDays = int(math.Floor(float64(current.IntervalDays) * 0.6))
		next.EaseFactor = clampEase(current.EaseFactor - 0.15)
	case Good:
		switch current.Repetitions {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Floor(float64(current.IntervalDays) * current.EaseFactor))
		}
		next.Repetitions = current.Repetitions + 1
		next.Lapses = 0
	case Easy:
		next.IntervalDays = int(math.Floor(float64(current.IntervalDays) * current.EaseFactor * 1.3))
		next.EaseFactor = current.EaseFactor + 0.15
		next.Repetitions = current.Repetitions + 1
		next.Lapses = 0
	}

	next.IntervalDays = clampInterval(next.IntervalDays)
	if a.MaxIntervalDays > 0 && next.IntervalDays > a.MaxIntervalDays {
		next.IntervalDays = a.MaxIntervalDays
	}
	reviseCurve(&next, difficulty)
	next.LastReview = &now

	return Result{
		Strength: next,
		NextDue:  now.AddDate(0, 0, next.IntervalDays),
	}, nil
}
