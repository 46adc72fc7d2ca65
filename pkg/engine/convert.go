package engine

import (
	"fmt"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
	"github.com/raold/second-brain-sub005/pkg/storage"
)

// scheduleToStorage flattens an engine schedule into its storage form.
func scheduleToStorage(s *ReviewSchedule) *storage.Schedule {
	return &storage.Schedule{
		ItemID:        s.ItemID,
		UserID:        s.UserID,
		ScheduledDate: s.ScheduledDate,
		Algorithm:     string(s.Algorithm),
		EaseFactor:    s.Strength.EaseFactor,
		IntervalDays:  s.Strength.IntervalDays,
		Repetitions:   s.Strength.Repetitions,
		Lapses:        s.Strength.Lapses,
		RetentionRate: s.Strength.RetentionRate,
		Stability:     s.Strength.Stability,
		LastReview:    s.Strength.LastReview,
		Archived:      s.Archived,
		UpdatedAt:     s.UpdatedAt,
	}
}

// scheduleFromStorage rebuilds an engine schedule from its storage form,
// failing when the persisted algorithm name is unknown.
func scheduleFromStorage(s *storage.Schedule) (*ReviewSchedule, error) {
	alg, err := algorithm.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("schedule %s/%s: %w", s.ItemID, s.UserID, err)
	}
	return &ReviewSchedule{
		ItemID:        s.ItemID,
		UserID:        s.UserID,
		ScheduledDate: s.ScheduledDate,
		Algorithm:     alg,
		Strength: algorithm.MemoryStrength{
			EaseFactor:    s.EaseFactor,
			IntervalDays:  s.IntervalDays,
			Repetitions:   s.Repetitions,
			Lapses:        s.Lapses,
			RetentionRate: s.RetentionRate,
			Stability:     s.Stability,
			LastReview:    s.LastReview,
		},
		Archived:  s.Archived,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

// historyToStorage flattens a history event into its storage form.
func historyToStorage(h *ReviewHistory) *storage.HistoryRecord {
	return &storage.HistoryRecord{
		ID:               h.ID,
		ItemID:           h.ItemID,
		UserID:           h.UserID,
		SessionID:        h.SessionID,
		Algorithm:        string(h.Algorithm),
		Difficulty:       h.Difficulty.String(),
		TimeTakenSeconds: h.TimeTakenSeconds,
		Confidence:       h.Confidence,
		ReviewedAt:       h.ReviewedAt,
	}
}

// historyFromStorage rebuilds a history event from its storage form.
func historyFromStorage(h *storage.HistoryRecord) (*ReviewHistory, error) {
	var difficulty algorithm.Difficulty
	if err := difficulty.UnmarshalText([]byte(h.Difficulty)); err != nil {
		return nil, fmt.Errorf("history record %d: %w", h.ID, err)
	}
	alg, err := algorithm.ParseAlgorithm(h.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("history record %d: %w", h.ID, err)
	}
	return &ReviewHistory{
		ID:               h.ID,
		ItemID:           h.ItemID,
		UserID:           h.UserID,
		SessionID:        h.SessionID,
		Algorithm:        alg,
		Difficulty:       difficulty,
		TimeTakenSeconds: h.TimeTakenSeconds,
		Confidence:       h.Confidence,
		ReviewedAt:       h.ReviewedAt,
	}, nil
}
