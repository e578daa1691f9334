package queue

import (
	"context"
	"testing"
	"time"

	"rewiki-bot/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisQueue_FIFO(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	q := NewRedisQueue(rdb)
	ctx := context.Background()

	first := NewJob("first", "https://example.com/1", 1, 10, model.LangEN)
	second := NewJob("second", "https://example.com/2", 1, 10, model.LangRU)
	require.NoError(t, q.Push(ctx, first))
	require.NoError(t, q.Push(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	items, _ := mr.List("queue:import")
	assert.Len(t, items, 2)

	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "https://example.com/1", got.URL)

	got, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, model.LangRU, got.Lang)
}

func TestRedisQueue_PopCancelled(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewRedisQueue(rdb).Pop(ctx)
	assert.Error(t, err)
}

func TestRedisQueue_PopReturnsWhenCancelledWhileWaiting(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := NewRedisQueue(rdb).Pop(ctx)
		errCh <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * popWait):
		t.Fatal("Pop kept waiting after the context was cancelled")
	}
}

func TestRedisQueue_PopWaitsForLateJob(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	q := NewRedisQueue(rdb)
	ctx := context.Background()
	job := NewJob("late", "https://example.com/late", 1, 10, model.LangEN)

	go func() {
		time.Sleep(popWait + 200*time.Millisecond)
		_ = q.Push(ctx, job)
	}()

	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}
