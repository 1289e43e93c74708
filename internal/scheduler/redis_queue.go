package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const jobsKey = "scheduler:jobs"

// RedisQueue is a delayed queue backed by a Redis sorted set. The member is
// the JSON-encoded job and the score its due time, so ZADD on an existing
// member naturally reschedules instead of duplicating.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a queue on the given Redis client.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

// ErrUnavailable is returned when the queue has no Redis backing, so callers
// can refuse deferred work instead of silently dropping it.
var ErrUnavailable = errors.New("scheduler: redis unavailable")

func (q *RedisQueue) Enqueue(ctx context.Context, job Job, notBefore time.Time) error {
	if q.client == nil {
		return ErrUnavailable
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	err = q.client.ZAdd(ctx, jobsKey, redis.Z{
		Score:  float64(notBefore.Unix()),
		Member: string(payload),
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Claim(ctx context.Context, now time.Time, max int) ([]Job, error) {
	if q.client == nil {
		return nil, ErrUnavailable
	}
	members, err := q.client.ZRangeByScore(ctx, jobsKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(max),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range due jobs: %w", err)
	}

	var jobs []Job
	for _, m := range members {
		// ZREM is the claim: only the caller that removes the member owns it.
		removed, err := q.client.ZRem(ctx, jobsKey, m).Result()
		if err != nil {
			return jobs, fmt.Errorf("claim job: %w", err)
		}
		if removed == 0 {
			continue // another worker got there first
		}
		var job Job
		if err := json.Unmarshal([]byte(m), &job); err != nil {
			// Malformed member has already been removed; drop it.
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
