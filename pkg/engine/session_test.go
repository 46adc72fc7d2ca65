package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raold/second-brain-sub005/pkg/algorithm"
	"github.com/raold/second-brain-sub005/pkg/engine"
)

func TestSessionLifecycle(t *testing.T) {
	sched := newTestScheduler(t)
	sessions := sched.Sessions()
	ctx := context.Background()

	sessionID, err := sessions.StartSession(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	_, err = sessions.RecordReview(ctx, sessionID, "item-1",
		algorithm.AlgorithmSM2, algorithm.Good,
		engine.WithConfidence(0.8), engine.WithTimeTaken(10))
	require.NoError(t, err)
	_, err = sessions.RecordReview(ctx, sessionID, "item-2",
		algorithm.AlgorithmSM2, algorithm.Again,
		engine.WithConfidence(0.4), engine.WithTimeTaken(30))
	require.NoError(t, err)
	_, err = sessions.RecordReview(ctx, sessionID, "item-1",
		algorithm.AlgorithmSM2, algorithm.Easy)
	require.NoError(t, err)

	summary, err := sessions.EndSession(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, sessionID, summary.SessionID)
	assert.Equal(t, "user-1", summary.UserID)
	assert.Equal(t, 3, summary.ReviewedCount)
	assert.Equal(t, []string{"item-1", "item-2", "item-1"}, summary.ItemsReviewed)
	assert.Equal(t, 1, summary.CountsByDifficulty[algorithm.Good])
	assert.Equal(t, 1, summary.CountsByDifficulty[algorithm.Again])
	assert.Equal(t, 1, summary.CountsByDifficulty[algorithm.Easy])
	assert.InDelta(t, 0.6, summary.AvgConfidence, 1e-9, "only reported confidences count")
	assert.InDelta(t, 20.0, summary.AvgTimeSeconds, 1e-9)

	// The reviews are tagged with the session in the durable log.
	history, err := sched.GetHistory(ctx, "user-1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, rec := range history {
		assert.Equal(t, sessionID, rec.SessionID)
	}
}

func TestEndSessionIdempotent(t *testing.T) {
	sched := newTestScheduler(t)
	sessions := sched.Sessions()
	ctx := context.Background()

	sessionID, err := sessions.StartSession(ctx, "user-1")
	require.NoError(t, err)
	_, err = sessions.RecordReview(ctx, sessionID, "item-1",
		algorithm.AlgorithmSM2, algorithm.Good)
	require.NoError(t, err)

	first, err := sessions.EndSession(ctx, sessionID)
	require.NoError(t, err)
	second, err := sessions.EndSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Same(t, first, second, "repeated EndSession returns the original summary")
}

func TestRecordReviewOnClosedSession(t *testing.T) {
	sched := newTestScheduler(t)
	sessions := sched.Sessions()
	ctx := context.Background()

	sessionID, err := sessions.StartSession(ctx, "user-1")
	require.NoError(t, err)
	_, err = sessions.EndSession(ctx, sessionID)
	require.NoError(t, err)

	_, err = sessions.RecordReview(ctx, sessionID, "item-1",
		algorithm.AlgorithmSM2, algorithm.Good)
	assert.ErrorIs(t, err, engine.ErrSessionClosed)
}

func TestSessionNotFound(t *testing.T) {
	sched := newTestScheduler(t)
	sessions := sched.Sessions()
	ctx := context.Background()

	_, err := sessions.RecordReview(ctx, "no-such-session", "item-1",
		algorithm.AlgorithmSM2, algorithm.Good)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)

	_, err = sessions.EndSession(ctx, "no-such-session")
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}

func TestSessionsSharedAcrossCalls(t *testing.T) {
	sched := newTestScheduler(t)
	ctx := context.Background()

	// Each Sessions() call must hand back the same manager, so a session
	// started through one call is usable through another.
	sessionID, err := sched.Sessions().StartSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = sched.Sessions().RecordReview(ctx, sessionID, "item-1",
		algorithm.AlgorithmSM2, algorithm.Good)
	require.NoError(t, err)

	summary, err := sched.Sessions().EndSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ReviewedCount)
	assert.Same(t, sched.Sessions(), sched.Sessions())
}

func TestRecordReviewDoesNotMutateCallerOptions(t *testing.T) {
	sched := newTestScheduler(t)
	sessions := sched.Sessions()
	ctx := context.Background()

	sessionID, err := sessions.StartSession(ctx, "user-1")
	require.NoError(t, err)

	// base has spare capacity; extended occupies the slot RecordReview
	// would clobber if it appended into the shared backing array.
	base := make([]engine.ReviewOption, 1, 2)
	base[0] = engine.WithConfidence(0.5)
	extended := append(base, engine.WithTimeTaken(99))

	_, err = sessions.RecordReview(ctx, sessionID, "item-1",
		algorithm.AlgorithmSM2, algorithm.Good, base...)
	require.NoError(t, err)

	// extended's second option must still be the time-taken one.
	_, err = sched.ScheduleReview(ctx, "item-2", "user-1",
		algorithm.AlgorithmSM2, algorithm.Good, extended...)
	require.NoError(t, err)

	history, err := sched.GetHistory(ctx, "user-1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, rec := range history {
		if rec.ItemID != "item-2" {
			continue
		}
		assert.Empty(t, rec.SessionID)
		require.NotNil(t, rec.TimeTakenSeconds)
		assert.Equal(t, 99.0, *rec.TimeTakenSeconds)
	}
}

func TestSessionFailedReviewNotCounted(t *testing.T) {
	sched := newTestScheduler(t,
		engine.WithContentStore(allowListContent{"known": true}))
	sessions := sched.Sessions()
	ctx := context.Background()

	sessionID, err := sessions.StartSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = sessions.RecordReview(ctx, sessionID, "unknown",
		algorithm.AlgorithmSM2, algorithm.Good)
	require.ErrorIs(t, err, engine.ErrItemNotFound)

	summary, err := sessions.EndSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Zero(t, summary.ReviewedCount, "a rejected review must not enter the summary")
}
