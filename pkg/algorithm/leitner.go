package algorithm

import "time"

// LeitnerConfig holds the box intervals of the Leitner schedule.
type LeitnerConfig struct {
	// BoxIntervalDays lists the review interval for each box, box 1 first.
	BoxIntervalDays []int
}

// DefaultLeitnerConfig returns the stock five boxes: 1, 2, 4, 8, 16 days.
func DefaultLeitnerConfig() LeitnerConfig {
	return LeitnerConfig{BoxIntervalDays: []int{1, 2, 4, 8, 16}}
}

// Leitner implements the classic box schedule: Good or Easy promotes an
// item one box, Again or Hard demotes it to box 1, and the interval is
// read straight from the box table. The ease factor is not used and is
// held at its default.
//
// The box is derived from Repetitions: box n holds items with n-1
// consecutive successes, capped at the last box.
type Leitner struct {
	cfg LeitnerConfig
}

// NewLeitner returns a Leitner strategy, defaulting to five boxes when
// cfg has none.
func NewLeitner(cfg LeitnerConfig) *Leitner {
	if len(cfg.BoxIntervalDays) == 0 {
		cfg = DefaultLeitnerConfig()
	}
	return &Leitner{cfg: cfg}
}

// Boxes returns the number of configured boxes.
func (a *Leitner) Boxes() int { return len(a.cfg.BoxIntervalDays) }

// Box returns the 1-based box an item currently sits in.
func (a *Leitner) Box(s MemoryStrength) int {
	box := s.Repetitions + 1
	if box > len(a.cfg.BoxIntervalDays) {
		box = len(a.cfg.BoxIntervalDays)
	}
	return box
}

// Apply implements Strategy.
func (a *Leitner) Apply(current MemoryStrength, difficulty Difficulty, now time.Time) (Result, error) {
	if err := checkApply(current, difficulty); err != nil {
		return Result{}, err
	}

	next := current
	if difficulty.Success() {
		next.Repetitions = current.Repetitions + 1
		next.Lapses = 0
	} else {
		next.Repetitions = 0
		if difficulty == Again {
			next.Lapses = current.Lapses + 1
		}
	}

	next.IntervalDays = clampInterval(a.cfg.BoxIntervalDays[a.Box(next)-1])
	reviseCurve(&next, difficulty)
	next.LastReview = &now

	return Result{
		Strength: next,
		NextDue:  now.AddDate(0, 0, next.IntervalDays),
	}, nil
}
