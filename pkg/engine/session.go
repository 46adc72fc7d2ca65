package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
)

// sessionState tracks one open (or ended) review session. Sessions are
// engine-local: only the reviews they produce reach durable storage,
// tagged with the session ID.
type sessionState struct {
	mu sync.Mutex

	sessionID string
	userID    string
	startedAt time.Time

	itemsReviewed []string
	counts        map[algorithm.Difficulty]int
	confidenceSum float64
	confidenceN   int
	timeSum       float64
	timeN         int

	// summary is set once the session ends; repeated EndSession calls
	// return it verbatim.
	summary *SessionSummary
}

// SessionManager groups reviews into sessions and produces summaries.
//
// A session is a lightweight grouping: StartSession hands out an ID,
// RecordReview runs a normal review tagged with that ID, and EndSession
// freezes the aggregate. Ending a session twice returns the same
// summary. It is safe for concurrent use.
type SessionManager struct {
	scheduler *Scheduler

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// Sessions returns the scheduler's session manager. The manager is
// built on first use and shared by every call, so a session started
// through one Sessions() call is visible to the next.
func (s *Scheduler) Sessions() *SessionManager {
	s.sessionsOnce.Do(func() {
		s.sessionMgr = &SessionManager{
			scheduler: s,
			sessions:  make(map[string]*sessionState),
		}
	})
	return s.sessionMgr
}

// StartSession opens a review session for a user and returns its ID.
func (m *SessionManager) StartSession(ctx context.Context, userID string) (string, error) {
	const op = "StartSession"
	if userID == "" {
		return "", NewSchedulerError(op, fmt.Errorf("%w: empty user id", algorithm.ErrInvalidState))
	}
	if err := ctx.Err(); err != nil {
		return "", NewSchedulerError(op, err)
	}

	state := &sessionState{
		sessionID: uuid.NewString(),
		userID:    userID,
		startedAt: m.scheduler.now(),
		counts:    make(map[algorithm.Difficulty]int),
	}

	m.mu.Lock()
	m.sessions[state.sessionID] = state
	m.mu.Unlock()

	m.scheduler.logger.Debug("session started",
		zap.String("session_id", state.sessionID),
		zap.String("user_id", userID))
	return state.sessionID, nil
}

// get looks up a session by ID.
func (m *SessionManager) get(sessionID string) (*sessionState, error) {
	m.mu.Lock()
	state, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return state, nil
}

// RecordReview runs a review within a session. The review itself goes
// through the scheduler unchanged; the session additionally accumulates
// it into the eventual summary.
//
// Errors: ErrSessionNotFound for unknown IDs, ErrSessionClosed when the
// session already ended, plus everything ScheduleReview can return.
func (m *SessionManager) RecordReview(ctx context.Context, sessionID, itemID string, alg algorithm.Algorithm, difficulty algorithm.Difficulty, opts ...ReviewOption) (*ReviewOutcome, error) {
	const op = "RecordReview"
	state, err := m.get(sessionID)
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.summary != nil {
		return nil, NewSchedulerError(op, fmt.Errorf("%w: %s", ErrSessionClosed, sessionID))
	}

	// Copy before appending: the caller's slice may have spare capacity.
	opts = append(append([]ReviewOption(nil), opts...), WithSession(sessionID))
	outcome, err := m.scheduler.ScheduleReview(ctx, itemID, state.userID, alg, difficulty, opts...)
	if err != nil {
		return nil, err
	}

	options := applyReviewOptions(opts)
	state.itemsReviewed = append(state.itemsReviewed, itemID)
	state.counts[difficulty]++
	if options.Confidence != nil {
		state.confidenceSum += *options.Confidence
		state.confidenceN++
	}
	if options.TimeTakenSeconds != nil {
		state.timeSum += *options.TimeTakenSeconds
		state.timeN++
	}
	return outcome, nil
}

// EndSession finalizes a session and returns its summary. The call is
// idempotent: ending an already-ended session returns the original
// summary with the original end time.
func (m *SessionManager) EndSession(ctx context.Context, sessionID string) (*SessionSummary, error) {
	const op = "EndSession"
	state, err := m.get(sessionID)
	if err != nil {
		return nil, NewSchedulerError(op, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewSchedulerError(op, err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.summary != nil {
		return state.summary, nil
	}

	endedAt := m.scheduler.now()
	summary := &SessionSummary{
		SessionID:          state.sessionID,
		UserID:             state.userID,
		StartedAt:          state.startedAt,
		EndedAt:            endedAt,
		ItemsReviewed:      append([]string(nil), state.itemsReviewed...),
		ReviewedCount:      len(state.itemsReviewed),
		CountsByDifficulty: make(map[algorithm.Difficulty]int, len(state.counts)),
		DurationSeconds:    endedAt.Sub(state.startedAt).Seconds(),
	}
	for d, n := range state.counts {
		summary.CountsByDifficulty[d] = n
	}
	if state.confidenceN > 0 {
		summary.AvgConfidence = state.confidenceSum / float64(state.confidenceN)
	}
	if state.timeN > 0 {
		summary.AvgTimeSeconds = state.timeSum / float64(state.timeN)
	}
	state.summary = summary

	m.scheduler.logger.Debug("session ended",
		zap.String("session_id", sessionID),
		zap.String("user_id", state.userID),
		zap.Int("reviewed_count", summary.ReviewedCount))
	m.scheduler.emit(EventSessionEnded, map[string]interface{}{
		"session_id":     sessionID,
		"user_id":        state.userID,
		"reviewed_count": summary.ReviewedCount,
	})
	return summary, nil
}
