package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
	"github.com/raold/second-brain-sub005/pkg/storage"
)

// BulkSchedule creates initial schedules for a batch of items, e.g. a
// freshly imported deck. Items that already carry an active schedule are
// skipped; a failure on one item is recorded and the rest of the batch
// continues.
//
// Cancellation is honored between items: the context error is returned
// alongside a report covering everything completed so far, and completed
// schedules stay persisted.
//
// An empty alg selects the configured default algorithm.
func (s *Scheduler) BulkSchedule(ctx context.Context, userID string, itemIDs []string, alg algorithm.Algorithm, opts ...BulkOption) (*BulkReport, error) {
	const op = "BulkSchedule"
	if userID == "" {
		return nil, NewSchedulerError(op, fmt.Errorf("%w: empty user id", algorithm.ErrInvalidState))
	}
	if alg == "" {
		alg = s.cfg.DefaultAlgorithm
	}
	if _, err := s.strategyFor(alg); err != nil {
		return nil, NewSchedulerError(op, err)
	}
	options := applyBulkOptions(opts)

	strength := algorithm.DefaultStrength()
	if options.InitialStrength != nil {
		strength = *options.InitialStrength
		if err := strength.Validate(); err != nil {
			return nil, NewSchedulerError(op, err)
		}
	}

	report := &BulkReport{Failed: make(map[string]error)}
	now := s.now()
	dueAt := now.Add(options.ScheduleOffset)

	for _, itemID := range itemIDs {
		if err := ctx.Err(); err != nil {
			return report, NewSchedulerError(op, err)
		}
		if err := s.bulkScheduleOne(ctx, itemID, userID, alg, strength, dueAt, report); err != nil {
			report.Failed[itemID] = err
		}
	}

	s.logger.Info("bulk scheduling finished",
		zap.String("user_id", userID),
		zap.String("algorithm", string(alg)),
		zap.Int("scheduled", len(report.Scheduled)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

// bulkScheduleOne creates the schedule for a single batch item, appending
// it to the report's Scheduled or Skipped list.
func (s *Scheduler) bulkScheduleOne(ctx context.Context, itemID, userID string, alg algorithm.Algorithm, strength algorithm.MemoryStrength, dueAt time.Time, report *BulkReport) error {
	const op = "BulkSchedule"
	if itemID == "" {
		return fmt.Errorf("%w: empty item id", algorithm.ErrInvalidState)
	}
	if err := s.checkItemExists(ctx, op, itemID); err != nil {
		return err
	}

	key := scheduleKey(itemID, userID)
	s.locks.lock(key)
	defer s.locks.unlock(key)

	err := s.withRetry(ctx, op+"/get", func() error {
		_, gerr := s.schedules.GetSchedule(ctx, itemID, userID)
		return gerr
	})
	switch {
	case err == nil:
		report.Skipped = append(report.Skipped, itemID)
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	sched := ReviewSchedule{
		ItemID:        itemID,
		UserID:        userID,
		ScheduledDate: dueAt,
		Algorithm:     alg,
		Strength:      strength,
		UpdatedAt:     s.now(),
	}
	if err := s.withRetry(ctx, op+"/put", func() error {
		return s.schedules.PutSchedule(ctx, scheduleToStorage(&sched))
	}); err != nil {
		return err
	}
	report.Scheduled = append(report.Scheduled, itemID)
	return nil
}
