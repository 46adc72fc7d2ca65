// Package reminder runs the periodic due-review check and announces due
// items through the engine's event sink.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/raold/second-brain-sub005/pkg/engine"
	"github.com/raold/second-brain-sub005/pkg/storage"
)

// Default notification window: reminders fire between 08:00 and 22:00.
const (
	DefaultStartHour = 8
	DefaultEndHour   = 22
)

// Config controls the reminder daemon.
type Config struct {
	// StartHour and EndHour bound the local hours during which reminders
	// fire (inclusive).
	StartHour int
	EndHour   int

	// Interval is how often the check runs. Defaults to one hour.
	Interval time.Duration
}

// DefaultConfig returns the default reminder configuration.
func DefaultConfig() Config {
	return Config{
		StartHour: DefaultStartHour,
		EndHour:   DefaultEndHour,
		Interval:  time.Hour,
	}
}

// Reminder periodically checks registered users for due reviews and
// emits a review.due event per user with pending items. Delivery is the
// sink's concern; the reminder only announces.
type Reminder struct {
	cfg       Config
	scheduler *engine.Scheduler
	cron      *gocron.Scheduler
	sink      storage.EventSink
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	users map[string]bool
}

// Option configures a Reminder.
type Option func(*Reminder)

// WithLogger injects a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reminder) {
		r.logger = logger
	}
}

// WithClock overrides the time source used for the notification-hours
// window. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reminder) {
		r.now = now
	}
}

// New creates a reminder daemon that queries due items through sched and
// announces them to sink.
func New(cfg Config, sched *engine.Scheduler, sink storage.EventSink, opts ...Option) *Reminder {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	r := &Reminder{
		cfg:       cfg,
		scheduler: sched,
		cron:      gocron.NewScheduler(time.UTC),
		sink:      sink,
		logger:    zap.NewNop(),
		now:       time.Now,
		users:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterUser adds a user to the reminder rotation.
func (r *Reminder) RegisterUser(userID string) {
	r.mu.Lock()
	r.users[userID] = true
	r.mu.Unlock()
}

// UnregisterUser removes a user from the rotation.
func (r *Reminder) UnregisterUser(userID string) {
	r.mu.Lock()
	delete(r.users, userID)
	r.mu.Unlock()
}

// Start schedules the periodic check and returns immediately.
func (r *Reminder) Start() error {
	if _, err := r.cron.Every(r.cfg.Interval).Do(r.runCheck); err != nil {
		return err
	}
	r.cron.StartAsync()
	r.logger.Info("reminder started",
		zap.Duration("interval", r.cfg.Interval),
		zap.Int("start_hour", r.cfg.StartHour),
		zap.Int("end_hour", r.cfg.EndHour))
	return nil
}

// Stop halts the periodic check. In-flight checks finish.
func (r *Reminder) Stop() {
	r.cron.Stop()
}

// runCheck is the cron entrypoint.
func (r *Reminder) runCheck() {
	if err := r.RunOnce(context.Background()); err != nil {
		r.logger.Warn("reminder check failed", zap.Error(err))
	}
}

// RunOnce checks all registered users immediately, honoring the
// notification-hours window. Exposed for manual triggering.
func (r *Reminder) RunOnce(ctx context.Context) error {
	hour := r.now().Hour()
	if hour < r.cfg.StartHour || hour > r.cfg.EndHour {
		r.logger.Debug("outside notification hours, skipping",
			zap.Int("hour", hour))
		return nil
	}

	r.mu.Lock()
	users := make([]string, 0, len(r.users))
	for userID := range r.users {
		users = append(users, userID)
	}
	r.mu.Unlock()

	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		due, err := r.scheduler.GetDueItems(ctx, userID)
		if err != nil {
			r.logger.Warn("due query failed",
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		if len(due) == 0 {
			continue
		}
		r.logger.Debug("announcing due reviews",
			zap.String("user_id", userID),
			zap.Int("due_count", len(due)))
		if r.sink != nil {
			r.sink.Emit(engine.EventReviewDue, map[string]interface{}{
				"user_id":   userID,
				"due_count": len(due),
			})
		}
	}
	return nil
}
