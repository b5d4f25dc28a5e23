package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"scoutiq/internal/logging"
)

const (
	DefaultQueueKey    = "analytics_jobs"
	retrySuffix        = ":retry"
	dlqSuffix          = ":dlq"
	retryCounterSuffix = ":retry-count:"
	retryCounterTTL    = 24 * time.Hour
	maxRetryAttempts   = 3
	brPopBlock         = 5 * time.Second
)

// Handler processes one job payload. A non-nil error schedules a retry.
type Handler func(ctx context.Context, payload []byte) error

// RedisQueue implements queue operations using Redis lists. Jobs are pushed
// on the left and popped on the right; the retry list is drained first.
type RedisQueue struct {
	client redis.Cmdable
	key    string
}

type queueKeys struct {
	base  string
	retry string
	dlq   string
}

// NewRedisQueue builds a Redis-backed queue helper. An empty key selects
// DefaultQueueKey.
func NewRedisQueue(client redis.Cmdable, key string) *RedisQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) keysFor(queueName string) queueKeys {
	if queueName == "" {
		queueName = q.key
	}
	return queueKeys{base: queueName, retry: queueName + retrySuffix, dlq: queueName + dlqSuffix}
}

// Enqueue pushes a JSON-encoded job onto the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, queueName string, job any) error {
	keys := q.keysFor(queueName)
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, keys.base, payload).Err(); err != nil {
		return fmt.Errorf("enqueue on %s: %w", keys.base, err)
	}
	return nil
}

// DeadLetters returns up to limit payloads parked in the queue's DLQ, newest
// first.
func (q *RedisQueue) DeadLetters(ctx context.Context, queueName string, limit int64) ([]string, error) {
	keys := q.keysFor(queueName)
	items, err := q.client.LRange(ctx, keys.dlq, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keys.dlq, err)
	}
	return items, nil
}

// Consume uses BRPOP to deliver jobs to the handler until the context is canceled.
func (q *RedisQueue) Consume(ctx context.Context, queueName string, handler Handler) error {
	logger := logging.Logger()
	keys := q.keysFor(queueName)
	logger.Infof("consuming queue %s", keys.base)

	for {
		payload, err := q.pop(ctx, keys)
		if err != nil {
			return err
		}
		if payload == nil {
			continue
		}
		q.process(ctx, keys, payload, handler, "consumer")
	}
}

// ConsumeConcurrent uses BRPOP to feed jobs to a worker pool for concurrent processing.
func (q *RedisQueue) ConsumeConcurrent(ctx context.Context, queueName string, workerCount, bufferSize int, handler Handler) error {
	logger := logging.Logger()
	keys := q.keysFor(queueName)
	if workerCount < 1 {
		workerCount = 1
	}

	jobChan := make(chan []byte, bufferSize)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			label := fmt.Sprintf("worker %d", workerID)
			for payload := range jobChan {
				q.process(ctx, keys, payload, handler, label)
			}
			logger.Infof("%s: exiting", label)
		}(i)
	}
	shutdown := func() {
		close(jobChan)
		wg.Wait()
	}

	logger.Infof("started %d concurrent workers for queue %s", workerCount, keys.base)

	for {
		payload, err := q.pop(ctx, keys)
		if err != nil {
			shutdown()
			return err
		}
		if payload == nil {
			continue
		}
		select {
		case jobChan <- payload:
		case <-ctx.Done():
			shutdown()
			return ctx.Err()
		}
	}
}

// pop blocks for the next payload. It returns nil, nil on timeout or on a
// transient Redis error and the context error once ctx is done.
func (q *RedisQueue) pop(ctx context.Context, keys queueKeys) ([]byte, error) {
	logger := logging.Logger()
	if ctx.Err() != nil {
		logger.Warnf("redis consumer exiting: %v", ctx.Err())
		return nil, ctx.Err()
	}

	result, err := q.client.BRPop(ctx, brPopBlock, keys.retry, keys.base).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if ctx.Err() != nil {
			logger.Warnf("redis BRPOP canceled: %v", ctx.Err())
			return nil, ctx.Err()
		}
		logger.Warnf("redis BRPOP error: %v", err)
		return nil, nil
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

func (q *RedisQueue) process(ctx context.Context, keys queueKeys, payload []byte, handler Handler, label string) {
	logger := logging.Logger()
	if err := safeHandle(ctx, handler, payload); err != nil {
		logger.Warnf("%s: handler error, scheduling retry: %v", label, err)
		if err := q.handleRetry(ctx, keys, payload); err != nil {
			logger.Errorf("%s: retry handling failed: %v", label, err)
		}
		return
	}
	_ = q.clearRetryCounter(ctx, keys.base, payload)
}

// safeHandle turns a handler panic into an error so the job is retried
// instead of taking the worker down.
func safeHandle(ctx context.Context, handler Handler, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, payload)
}

func (q *RedisQueue) handleRetry(ctx context.Context, keys queueKeys, payload []byte) error {
	logger := logging.Logger()
	attempt, err := q.incrementRetryCounter(ctx, keys.base, payload)
	if err != nil {
		return err
	}
	if attempt > maxRetryAttempts {
		logger.Warnf("moving job to %s after %d attempts", keys.dlq, attempt-1)
		_ = q.client.LPush(ctx, keys.dlq, payload).Err()
		_ = q.clearRetryCounter(ctx, keys.base, payload)
		return nil
	}
	return q.client.LPush(ctx, keys.retry, payload).Err()
}

func (q *RedisQueue) incrementRetryCounter(ctx context.Context, queueName string, payload []byte) (int64, error) {
	key := retryCounterKey(queueName, payload)
	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = q.client.Expire(ctx, key, retryCounterTTL).Err()
	return count, nil
}

func (q *RedisQueue) clearRetryCounter(ctx context.Context, queueName string, payload []byte) error {
	return q.client.Del(ctx, retryCounterKey(queueName, payload)).Err()
}

func retryCounterKey(queue string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s%s", queue, retryCounterSuffix, hex.EncodeToString(sum[:]))
}
