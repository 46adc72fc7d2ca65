// Package memstore provides an in-memory implementation of the storage
// contract, suitable for tests, examples, and embedded single-process use.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/raold/second-brain-sub005/pkg/storage"
)

// Store keeps schedules and history in process memory. All methods are
// safe for concurrent use, and PutSchedule is atomic per key under the
// store mutex, satisfying the engine's read-then-write contract.
type Store struct {
	mu        sync.RWMutex
	schedules map[scheduleKey]*storage.Schedule
	history   []*storage.HistoryRecord
}

type scheduleKey struct {
	itemID string
	userID string
}

// Compile-time interface checks.
var (
	_ storage.ScheduleStore = (*Store)(nil)
	_ storage.HistoryStore  = (*Store)(nil)
)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{schedules: make(map[scheduleKey]*storage.Schedule)}
}

// GetSchedule implements storage.ScheduleStore.
func (s *Store) GetSchedule(ctx context.Context, itemID, userID string) (*storage.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[scheduleKey{itemID, userID}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *sched
	return &cp, nil
}

// PutSchedule implements storage.ScheduleStore.
func (s *Store) PutSchedule(ctx context.Context, sched *storage.Schedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sched
	s.schedules[scheduleKey{sched.ItemID, sched.UserID}] = &cp
	return nil
}

// ListDue implements storage.ScheduleStore. Results are ordered by
// ScheduledDate ascending for stable iteration.
func (s *Store) ListDue(ctx context.Context, userID string, asOf time.Time, limit int) ([]*storage.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*storage.Schedule
	for _, sched := range s.schedules {
		if sched.UserID != userID || sched.Archived || sched.ScheduledDate.After(asOf) {
			continue
		}
		cp := *sched
		due = append(due, &cp)
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].ScheduledDate.Equal(due[j].ScheduledDate) {
			return due[i].ScheduledDate.Before(due[j].ScheduledDate)
		}
		return due[i].ItemID < due[j].ItemID
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// ArchiveSchedule implements storage.ScheduleStore.
func (s *Store) ArchiveSchedule(ctx context.Context, itemID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[scheduleKey{itemID, userID}]
	if !ok {
		return storage.ErrNotFound
	}
	sched.Archived = true
	return nil
}

// AppendHistory implements storage.HistoryStore.
func (s *Store) AppendHistory(ctx context.Context, rec *storage.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.history = append(s.history, &cp)
	return nil
}

// ListHistory implements storage.HistoryStore.
func (s *Store) ListHistory(ctx context.Context, userID string, since, until time.Time) ([]*storage.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.HistoryRecord
	for _, rec := range s.history {
		if rec.UserID != userID {
			continue
		}
		if !since.IsZero() && rec.ReviewedAt.Before(since) {
			continue
		}
		if !until.IsZero() && !rec.ReviewedAt.Before(until) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReviewedAt.Before(out[j].ReviewedAt)
	})
	return out, nil
}

// Close implements both store interfaces; it is a no-op.
func (s *Store) Close() error { return nil }
