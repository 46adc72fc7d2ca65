package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
	"github.com/raold/second-brain-sub005/pkg/storage"
)

// ReviewOption is a function type for configuring ScheduleReview calls.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type ReviewOption func(*ReviewOptions)

// ReviewOptions contains configuration options for a single review.
type ReviewOptions struct {
	// SessionID attributes the review to an open session.
	SessionID string

	// Confidence is the user's self-reported confidence in [0, 1].
	Confidence *float64

	// TimeTakenSeconds is how long the review took.
	TimeTakenSeconds *float64

	// ReviewedAt overrides the review timestamp (zero means "now").
	// Intended for imports and tests.
	ReviewedAt time.Time
}

// WithSession attributes the review to the given session.
//
// Example:
//
//	outcome, _ := sched.ScheduleReview(ctx, item, user, alg, algorithm.Good,
//	    engine.WithSession(sessionID))
func WithSession(sessionID string) ReviewOption {
	return func(opts *ReviewOptions) {
		opts.SessionID = sessionID
	}
}

// WithConfidence records the user's self-reported confidence.
func WithConfidence(confidence float64) ReviewOption {
	return func(opts *ReviewOptions) {
		opts.Confidence = &confidence
	}
}

// WithTimeTaken records how long the review took.
func WithTimeTaken(seconds float64) ReviewOption {
	return func(opts *ReviewOptions) {
		opts.TimeTakenSeconds = &seconds
	}
}

// WithReviewedAt overrides the review timestamp.
func WithReviewedAt(t time.Time) ReviewOption {
	return func(opts *ReviewOptions) {
		opts.ReviewedAt = t
	}
}

// applyReviewOptions builds ReviewOptions from a list of options.
func applyReviewOptions(opts []ReviewOption) *ReviewOptions {
	options := &ReviewOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// DueOption is a function type for configuring GetDueItems calls.
type DueOption func(*DueOptions)

// DueOptions contains configuration options for due-item queries.
type DueOptions struct {
	// AsOf is the reference time for "due" (zero means "now").
	AsOf time.Time

	// Limit caps the number of returned items (0 means unlimited).
	Limit int
}

// WithAsOf sets the reference time for the due query.
func WithAsOf(t time.Time) DueOption {
	return func(opts *DueOptions) {
		opts.AsOf = t
	}
}

// WithLimit caps the number of returned due items.
func WithLimit(limit int) DueOption {
	return func(opts *DueOptions) {
		opts.Limit = limit
	}
}

// applyDueOptions builds DueOptions from a list of options.
func applyDueOptions(opts []DueOption) *DueOptions {
	options := &DueOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// BulkOption is a function type for configuring BulkSchedule calls.
type BulkOption func(*BulkOptions)

// BulkOptions contains configuration options for bulk scheduling.
type BulkOptions struct {
	// InitialStrength replaces the default strength for created
	// schedules (nil keeps the default).
	InitialStrength *algorithm.MemoryStrength

	// ScheduleOffset shifts the first due date from "now". Zero means
	// immediately due.
	ScheduleOffset time.Duration
}

// WithInitialStrength sets the starting strength for bulk-created
// schedules.
func WithInitialStrength(s algorithm.MemoryStrength) BulkOption {
	return func(opts *BulkOptions) {
		opts.InitialStrength = &s
	}
}

// WithScheduleOffset delays the first due date by the given offset.
func WithScheduleOffset(offset time.Duration) BulkOption {
	return func(opts *BulkOptions) {
		opts.ScheduleOffset = offset
	}
}

// applyBulkOptions builds BulkOptions from a list of options.
func applyBulkOptions(opts []BulkOption) *BulkOptions {
	options := &BulkOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Option is a function type for configuring Scheduler construction.
type Option func(*Scheduler)

// WithStores injects the schedule and history stores, overriding the
// backend named in the configuration. Useful for tests and for sharing
// one store across components.
func WithStores(schedules storage.ScheduleStore, history storage.HistoryStore) Option {
	return func(s *Scheduler) {
		s.schedules = schedules
		s.history = history
	}
}

// WithContentStore injects the external content store consulted for item
// existence. Without one, every item is assumed to exist.
func WithContentStore(content storage.ContentStore) Option {
	return func(s *Scheduler) {
		s.content = content
	}
}

// WithEventSink injects the sink that receives engine events. Emission
// is fire-and-forget; the engine never blocks on the sink.
func WithEventSink(sink storage.EventSink) Option {
	return func(s *Scheduler) {
		s.events = sink
	}
}

// WithLogger injects a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithClock overrides the engine's time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithStrategy registers a strategy for an algorithm, replacing the
// built-in one. This is how AlgorithmCustom gets an implementation:
//
//	sched, _ := engine.New(cfg,
//	    engine.WithStrategy(algorithm.AlgorithmCustom, myStrategy))
func WithStrategy(alg algorithm.Algorithm, strategy algorithm.Strategy) Option {
	return func(s *Scheduler) {
		s.strategies[alg] = strategy
	}
}
