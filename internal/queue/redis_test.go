package queue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisQueue_DefaultKey(t *testing.T) {
	q := NewRedisQueue(nil, "")
	assert.Equal(t, DefaultQueueKey, q.key)

	keys := q.keysFor("")
	assert.Equal(t, "analytics_jobs", keys.base)
	assert.Equal(t, "analytics_jobs:retry", keys.retry)
	assert.Equal(t, "analytics_jobs:dlq", keys.dlq)

	custom := q.keysFor("scouting")
	assert.Equal(t, "scouting:retry", custom.retry)
}

func TestRetryCounterKey(t *testing.T) {
	a := retryCounterKey("analytics_jobs", []byte(`{"type":"refresh_profiles"}`))
	b := retryCounterKey("analytics_jobs", []byte(`{"type":"refresh_profiles"}`))
	c := retryCounterKey("analytics_jobs", []byte(`{"type":"team_snapshot"}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "analytics_jobs:retry-count:"))
	assert.Len(t, strings.TrimPrefix(a, "analytics_jobs:retry-count:"), 64)
}

func TestSafeHandle(t *testing.T) {
	boom := errors.New("boom")

	err := safeHandle(context.Background(), func(context.Context, []byte) error { return boom }, nil)
	assert.ErrorIs(t, err, boom)

	err = safeHandle(context.Background(), func(context.Context, []byte) error { panic("nil map") }, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic: nil map")

	assert.NoError(t, safeHandle(context.Background(), func(context.Context, []byte) error { return nil }, nil))
}

func TestEnqueue_RejectsUnencodableJob(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	err := NewRedisQueue(client, "").Enqueue(context.Background(), "", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal job")
}

func TestConsume_StopsOnCanceledContext(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewRedisQueue(client, "").Consume(ctx, "", func(context.Context, []byte) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
