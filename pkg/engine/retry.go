package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/raold/second-brain-sub005/pkg/storage"
)

// withRetry runs fn, retrying transient store failures with exponential
// backoff per the configured retry policy. The read-modify-write cycle
// is idempotent when restarted from a fresh read, so retrying a failed
// store call is safe.
//
// Non-transient errors (ErrNotFound, context cancellation) pass through
// untouched. Once attempts are exhausted the last error is surfaced
// wrapped in ErrStoreUnavailable.
func (s *Scheduler) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	delay := s.cfg.Retry.BaseDelay
	for attempt := 1; attempt <= s.cfg.Retry.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		if attempt == s.cfg.Retry.MaxAttempts {
			break
		}
		s.logger.Warn("store call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// isTransient reports whether a store error is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
