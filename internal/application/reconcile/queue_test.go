package reconcile

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueue(t *testing.T) *Queue {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return &Queue{Rdb: rdb}
}

func TestEnqueuePending(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Entry{
		StockNumber: "D100", UserID: 7, Backend: "inventory_api", Operation: "delete", Reason: "timeout",
	}))
	require.NoError(t, q.Enqueue(ctx, Entry{
		StockNumber: "D101", UserID: 7, Backend: "inventory_api", Operation: "delete", Reason: "503",
	}))

	entries, err := q.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "D101", entries[0].StockNumber)
	assert.Equal(t, "D100", entries[1].StockNumber)
	assert.False(t, entries[0].At.IsZero())
}

func TestPending_Limit(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(ctx, Entry{StockNumber: "D", UserID: int64(i)}))
	}

	entries, err := q.Pending(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Non-positive limit falls back to the default.
	entries, err = q.Pending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestPending_EmptyQueue(t *testing.T) {
	q := setupQueue(t)
	entries, err := q.Pending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQueue_CustomKey(t *testing.T) {
	q := setupQueue(t)
	q.Key = "reconcile:test"
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Entry{StockNumber: "D100"}))

	n, err := q.Rdb.LLen(ctx, "reconcile:test").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
