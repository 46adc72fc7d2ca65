package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
	"github.com/raold/second-brain-sub005/pkg/storage"
	"github.com/raold/second-brain-sub005/pkg/storage/memstore"
	mysqlstore "github.com/raold/second-brain-sub005/pkg/storage/mysql"
	postgresstore "github.com/raold/second-brain-sub005/pkg/storage/postgres"
	sqlitestore "github.com/raold/second-brain-sub005/pkg/storage/sqlite"
)

// Scheduler is the spaced-repetition scheduling engine.
//
// It orchestrates a review: load the item's current memory strength,
// apply the selected algorithm strategy, persist the replacement
// schedule, append a history record, and emit an event. It also answers
// priority-ordered due queries and carries the bulk scheduler, session
// manager, and statistics aggregator.
//
// The Scheduler holds no durable state of its own — everything lives in
// the schedule and history stores. Reviews of the same (item, user) pair
// are serialized through a per-key lock; everything else runs in
// parallel. It is safe for concurrent use.
//
// Example:
//
//	cfg := engine.DefaultConfig()
//	sched, _ := engine.New(cfg)
//	defer sched.Close()
//
//	outcome, _ := sched.ScheduleReview(ctx, "item-1", "user-1",
//	    algorithm.AlgorithmSM2, algorithm.Good)
type Scheduler struct {
	cfg *Config

	// schedules and history are the durable stores.
	schedules storage.ScheduleStore
	history   storage.HistoryStore

	// content is the external item-existence oracle (nil = allow all).
	content storage.ContentStore

	// events receives fire-and-forget engine events (nil = disabled).
	events storage.EventSink

	// strategies maps algorithm identifiers to their implementations.
	strategies map[algorithm.Algorithm]algorithm.Strategy

	// node generates history record IDs.
	node *snowflake.Node

	// locks serializes reviews per (item, user) key.
	locks *keyLock

	// sessionMgr is the shared session manager, built on first use.
	sessionsOnce sync.Once
	sessionMgr   *SessionManager

	logger *zap.Logger
	now    func() time.Time
}

// New creates a Scheduler from cfg.
//
// The store backend is built from cfg.Storage unless WithStores
// overrides it. Built-in strategies are configured from cfg.Anki and
// cfg.Leitner; WithStrategy can replace them or add a custom one.
func New(cfg *Config, opts ...Option) (*Scheduler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewSchedulerError("New", err)
	}

	s := &Scheduler{
		cfg: cfg,
		strategies: map[algorithm.Algorithm]algorithm.Strategy{
			algorithm.AlgorithmSM2:     algorithm.NewSM2(),
			algorithm.AlgorithmAnki:    algorithm.NewAnki(cfg.Anki),
			algorithm.AlgorithmLeitner: algorithm.NewLeitner(cfg.Leitner),
		},
		node:   node,
		locks:  newKeyLock(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.schedules == nil || s.history == nil {
		schedules, history, err := initStores(cfg.Storage)
		if err != nil {
			return nil, err
		}
		if s.schedules == nil {
			s.schedules = schedules
		}
		if s.history == nil {
			s.history = history
		}
	}
	return s, nil
}

// initStores builds the configured store backend. Every built-in backend
// serves both the schedule and the history store from one client.
func initStores(cfg StorageConfig) (storage.ScheduleStore, storage.HistoryStore, error) {
	switch cfg.Provider {
	case ProviderMemory:
		st := memstore.New()
		return st, st, nil
	case ProviderSQLite:
		c, err := sqlitestore.New(&sqlitestore.Config{DBPath: cfg.DSN})
		if err != nil {
			return nil, nil, NewSchedulerError("New", err)
		}
		return c, c, nil
	case ProviderPostgres:
		c, err := postgresstore.New(&postgresstore.Config{DSN: cfg.DSN})
		if err != nil {
			return nil, nil, NewSchedulerError("New", err)
		}
		return c, c, nil
	case ProviderMySQL:
		c, err := mysqlstore.New(&mysqlstore.Config{DSN: cfg.DSN})
		if err != nil {
			return nil, nil, NewSchedulerError("New", err)
		}
		return c, c, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown storage provider %q", ErrInvalidConfig, cfg.Provider)
}

// Close releases the underlying stores.
func (s *Scheduler) Close() error {
	err := s.schedules.Close()
	if herr := s.history.Close(); err == nil {
		err = herr
	}
	return err
}

// strategyFor resolves the strategy registered for alg.
func (s *Scheduler) strategyFor(alg algorithm.Algorithm) (algorithm.Strategy, error) {
	strategy, ok := s.strategies[alg]
	if !ok || strategy == nil {
		return nil, fmt.Errorf("%w: %q", algorithm.ErrUnknownAlgorithm, alg)
	}
	return strategy, nil
}

// ScheduleReview records one review outcome for an item.
//
// The method loads the item's current strength (creating the default for
// first-time scheduling), applies the chosen algorithm, persists the
// replacement schedule, appends a history record, and emits a
// review.completed event.
//
// An empty alg selects the configured default algorithm.
//
// Errors: ErrItemNotFound when the content store does not know the item
// or the item's schedule is archived; algorithm.ErrInvalidDifficulty /
// algorithm.ErrInvalidState for malformed input; ErrStoreUnavailable
// after store retries exhaust.
//
// The schedule upsert and the history append are two store writes, not
// one transaction. When the history append fails after the schedule was
// written, the call errors but the new schedule stays persisted; the
// caller can retry the review, which appends a fresh history record
// against the already-updated state.
func (s *Scheduler) ScheduleReview(ctx context.Context, itemID, userID string, alg algorithm.Algorithm, difficulty algorithm.Difficulty, opts ...ReviewOption) (*ReviewOutcome, error) {
	const op = "ScheduleReview"

	if itemID == "" || userID == "" {
		return nil, NewSchedulerError(op, fmt.Errorf("%w: empty item or user id", algorithm.ErrInvalidState))
	}
	if !difficulty.IsValid() {
		return nil, NewSchedulerError(op, fmt.Errorf("%w: %d", algorithm.ErrInvalidDifficulty, int(difficulty)))
	}
	if alg == "" {
		alg = s.cfg.DefaultAlgorithm
	}
	strategy, err := s.strategyFor(alg)
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}
	options := applyReviewOptions(opts)

	if err := s.checkItemExists(ctx, op, itemID); err != nil {
		return nil, err
	}

	key := scheduleKey(itemID, userID)
	s.locks.lock(key)
	defer s.locks.unlock(key)

	existing, err := s.loadSchedule(ctx, op, itemID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Archived {
		return nil, NewSchedulerError(op, fmt.Errorf("%w: %s is archived", ErrItemNotFound, itemID))
	}
	current := algorithm.DefaultStrength()
	if existing != nil {
		current = existing.Strength
	}

	reviewedAt := options.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = s.now()
	}

	result, err := strategy.Apply(current, difficulty, reviewedAt)
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}

	sched := ReviewSchedule{
		ItemID:        itemID,
		UserID:        userID,
		ScheduledDate: result.NextDue,
		Algorithm:     alg,
		Strength:      result.Strength,
		UpdatedAt:     s.now(),
	}
	if err := s.withRetry(ctx, op+"/put", func() error {
		return s.schedules.PutSchedule(ctx, scheduleToStorage(&sched))
	}); err != nil {
		return nil, NewSchedulerError(op, err)
	}

	rec := &ReviewHistory{
		ID:               s.node.Generate().Int64(),
		ItemID:           itemID,
		UserID:           userID,
		SessionID:        options.SessionID,
		Algorithm:        alg,
		Difficulty:       difficulty,
		TimeTakenSeconds: options.TimeTakenSeconds,
		Confidence:       options.Confidence,
		ReviewedAt:       reviewedAt,
	}
	if err := s.withRetry(ctx, op+"/history", func() error {
		return s.history.AppendHistory(ctx, historyToStorage(rec))
	}); err != nil {
		return nil, NewSchedulerError(op, err)
	}

	s.logger.Debug("review scheduled",
		zap.String("item_id", itemID),
		zap.String("user_id", userID),
		zap.String("algorithm", string(alg)),
		zap.String("difficulty", difficulty.String()),
		zap.Time("next_due", result.NextDue),
		zap.Bool("is_leech", result.IsLeech))
	s.emit(EventReviewCompleted, map[string]interface{}{
		"item_id":    itemID,
		"user_id":    userID,
		"session_id": options.SessionID,
		"algorithm":  string(alg),
		"difficulty": difficulty.String(),
		"next_due":   result.NextDue,
		"is_leech":   result.IsLeech,
	})

	return &ReviewOutcome{Schedule: sched, IsLeech: result.IsLeech}, nil
}

// checkItemExists consults the external content store, mapping a missing
// item to ErrItemNotFound.
func (s *Scheduler) checkItemExists(ctx context.Context, op, itemID string) error {
	if s.content == nil {
		return nil
	}
	var exists bool
	err := s.withRetry(ctx, op+"/item_exists", func() error {
		var ierr error
		exists, ierr = s.content.ItemExists(ctx, itemID)
		return ierr
	})
	if err != nil {
		return NewSchedulerError(op, err)
	}
	if !exists {
		return NewSchedulerError(op, fmt.Errorf("%w: %s", ErrItemNotFound, itemID))
	}
	return nil
}

// loadSchedule returns the item's current schedule, or nil for
// first-time scheduling.
func (s *Scheduler) loadSchedule(ctx context.Context, op, itemID, userID string) (*ReviewSchedule, error) {
	var stored *storage.Schedule
	err := s.withRetry(ctx, op+"/get", func() error {
		var gerr error
		stored, gerr = s.schedules.GetSchedule(ctx, itemID, userID)
		return gerr
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}
	sched, err := scheduleFromStorage(stored)
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}
	return sched, nil
}

// GetSchedule returns the active schedule for an (item, user) pair, or
// ErrItemNotFound when none exists.
func (s *Scheduler) GetSchedule(ctx context.Context, itemID, userID string) (*ReviewSchedule, error) {
	const op = "GetSchedule"
	var stored *storage.Schedule
	err := s.withRetry(ctx, op, func() error {
		var gerr error
		stored, gerr = s.schedules.GetSchedule(ctx, itemID, userID)
		return gerr
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, NewSchedulerError(op, fmt.Errorf("%w: %s", ErrItemNotFound, itemID))
	}
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}
	sched, err := scheduleFromStorage(stored)
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}
	return sched, nil
}

// GetDueItems returns the user's due schedules ordered by priority score
// descending. Ties break by scheduled date ascending (oldest due first),
// then item ID, so a fixed input set always yields the same order.
func (s *Scheduler) GetDueItems(ctx context.Context, userID string, opts ...DueOption) ([]ReviewSchedule, error) {
	const op = "GetDueItems"
	options := applyDueOptions(opts)
	asOf := options.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}

	var stored []*storage.Schedule
	err := s.withRetry(ctx, op, func() error {
		var lerr error
		stored, lerr = s.schedules.ListDue(ctx, userID, asOf, 0)
		return lerr
	})
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}

	due := make([]ReviewSchedule, 0, len(stored))
	for _, row := range stored {
		sched, err := scheduleFromStorage(row)
		if err != nil {
			return nil, NewSchedulerError(op, err)
		}
		due = append(due, *sched)
	}

	sort.SliceStable(due, func(i, j int) bool {
		pi, pj := due[i].PriorityScore(asOf), due[j].PriorityScore(asOf)
		if pi != pj {
			return pi > pj
		}
		if !due[i].ScheduledDate.Equal(due[j].ScheduledDate) {
			return due[i].ScheduledDate.Before(due[j].ScheduledDate)
		}
		return due[i].ItemID < due[j].ItemID
	})

	if options.Limit > 0 && len(due) > options.Limit {
		due = due[:options.Limit]
	}
	return due, nil
}

// Reschedule switches an existing schedule to a different algorithm
// without touching the accumulated strength: the next review simply runs
// the new algorithm's formula on the existing state.
func (s *Scheduler) Reschedule(ctx context.Context, itemID, userID string, newAlg algorithm.Algorithm) (*ReviewSchedule, error) {
	const op = "Reschedule"
	if _, err := s.strategyFor(newAlg); err != nil {
		return nil, NewSchedulerError(op, err)
	}

	key := scheduleKey(itemID, userID)
	s.locks.lock(key)
	defer s.locks.unlock(key)

	sched, err := s.GetSchedule(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if sched.Archived {
		return nil, NewSchedulerError(op, fmt.Errorf("%w: %s is archived", ErrItemNotFound, itemID))
	}
	sched.Algorithm = newAlg
	sched.UpdatedAt = s.now()
	if err := s.withRetry(ctx, op, func() error {
		return s.schedules.PutSchedule(ctx, scheduleToStorage(sched))
	}); err != nil {
		return nil, NewSchedulerError(op, err)
	}
	return sched, nil
}

// ArchiveItem archives the schedule when the owning item is deleted. The
// row is flagged, never removed, so history keeps its context. The write
// takes the same per-key lock as reviews, so an in-flight review cannot
// overwrite the flag.
func (s *Scheduler) ArchiveItem(ctx context.Context, itemID, userID string) error {
	const op = "ArchiveItem"

	key := scheduleKey(itemID, userID)
	s.locks.lock(key)
	defer s.locks.unlock(key)

	err := s.withRetry(ctx, op, func() error {
		return s.schedules.ArchiveSchedule(ctx, itemID, userID)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return NewSchedulerError(op, fmt.Errorf("%w: %s", ErrItemNotFound, itemID))
	}
	return NewSchedulerError(op, err)
}
