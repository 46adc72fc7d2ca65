package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raold/second-brain-sub005/pkg/storage"
	"github.com/raold/second-brain-sub005/pkg/storage/postgres"
)

// setupPostgresTest connects to the database named by SRS_TEST_POSTGRES_DSN,
// skipping the test when it is not set.
func setupPostgresTest(t *testing.T) *postgres.Client {
	t.Helper()
	dsn := os.Getenv("SRS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL test: SRS_TEST_POSTGRES_DSN not set")
	}
	client, err := postgres.New(&postgres.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPostgresScheduleRoundTrip(t *testing.T) {
	client := setupPostgresTest(t)
	ctx := context.Background()

	itemID := "pgtest-" + time.Now().Format("20060102150405.000")
	due := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, client.PutSchedule(ctx, &storage.Schedule{
		ItemID:        itemID,
		UserID:        "pgtest-user",
		ScheduledDate: due,
		Algorithm:     "sm2",
		EaseFactor:    2.5,
		IntervalDays:  6,
		Repetitions:   2,
		RetentionRate: 0.9,
		Stability:     5,
		UpdatedAt:     time.Now().UTC(),
	}))

	got, err := client.GetSchedule(ctx, itemID, "pgtest-user")
	require.NoError(t, err)
	assert.Equal(t, 6, got.IntervalDays)
	assert.True(t, got.ScheduledDate.Equal(due))

	require.NoError(t, client.ArchiveSchedule(ctx, itemID, "pgtest-user"))
	due2, err := client.ListDue(ctx, "pgtest-user", due.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	for _, sched := range due2 {
		assert.NotEqual(t, itemID, sched.ItemID, "archived rows must not be due")
	}
}

func TestPostgresGetScheduleNotFound(t *testing.T) {
	client := setupPostgresTest(t)
	_, err := client.GetSchedule(context.Background(), "no-such-item", "no-such-user")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
