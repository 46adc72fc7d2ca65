package engine

import (
	"context"
	"time"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
	"github.com/raold/second-brain-sub005/pkg/storage"
)

// GetStatistics aggregates a user's review history over [since, until).
// A zero since or until leaves that bound open. An empty window yields
// zeroed statistics, not an error.
//
// RetentionRateAvg is the fraction of reviews rated Good or Easy. The
// streak counts consecutive UTC calendar days with at least one review
// and is anchored at today or yesterday; an older last review means the
// streak is broken and reads zero.
func (s *Scheduler) GetStatistics(ctx context.Context, userID string, since, until time.Time) (*Statistics, error) {
	const op = "GetStatistics"

	var records []*storage.HistoryRecord
	err := s.withRetry(ctx, op, func() error {
		var lerr error
		records, lerr = s.history.ListHistory(ctx, userID, since, until)
		return lerr
	})
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}

	stats := &Statistics{
		AlgorithmDistribution: make(map[algorithm.Algorithm]int),
	}
	if len(records) == 0 {
		return stats, nil
	}

	successes := 0
	reviewDays := make(map[string]bool)
	for _, row := range records {
		rec, err := historyFromStorage(row)
		if err != nil {
			return nil, NewSchedulerError(op, err)
		}
		stats.ReviewedCount++
		stats.AlgorithmDistribution[rec.Algorithm]++
		if rec.Difficulty.Success() {
			successes++
		}
		reviewDays[rec.ReviewedAt.UTC().Format("2006-01-02")] = true
	}
	stats.RetentionRateAvg = float64(successes) / float64(stats.ReviewedCount)
	stats.StreakDays = streakDays(reviewDays, s.now())
	return stats, nil
}

// streakDays counts the run of consecutive UTC days with reviews ending
// at today or yesterday.
func streakDays(reviewDays map[string]bool, now time.Time) int {
	day := now.UTC().Truncate(24 * time.Hour)
	if !reviewDays[day.Format("2006-01-02")] {
		// No review yet today: a streak may still be alive through
		// yesterday.
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for reviewDays[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// GetHistory returns the user's review events in [since, until) ordered
// by review time ascending.
func (s *Scheduler) GetHistory(ctx context.Context, userID string, since, until time.Time) ([]ReviewHistory, error) {
	const op = "GetHistory"

	var records []*storage.HistoryRecord
	err := s.withRetry(ctx, op, func() error {
		var lerr error
		records, lerr = s.history.ListHistory(ctx, userID, since, until)
		return lerr
	})
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}

	out := make([]ReviewHistory, 0, len(records))
	for _, row := range records {
		rec, err := historyFromStorage(row)
		if err != nil {
			return nil, NewSchedulerError(op, err)
		}
		out = append(out, *rec)
	}
	return out, nil
}
