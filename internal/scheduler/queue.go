// Package scheduler provides a delayed task queue and the worker loop that
// drains it. The API server enqueues publication jobs with an execution-time
// hint; a worker process claims due jobs and dispatches them. Delivery is
// best-effort: a claimed job that fails is logged, not retried.
package scheduler

import (
	"context"
	"time"
)

// Job kinds understood by the worker.
const (
	KindPublishPost = "publish_post"
)

// Job is the unit of deferred work. Jobs are keyed by their payload: enqueuing
// the same job again reschedules it instead of duplicating it.
type Job struct {
	Kind   string `json:"kind"`
	PostID uint   `json:"post_id"`
}

// Queue is the scheduling boundary between the API server and the worker.
type Queue interface {
	// Enqueue schedules the job to become due at notBefore. Enqueuing an
	// already-scheduled job moves its due time.
	Enqueue(ctx context.Context, job Job, notBefore time.Time) error
	// Claim atomically removes and returns up to max jobs due at now.
	// A job is returned to exactly one caller even with concurrent workers.
	Claim(ctx context.Context, now time.Time, max int) ([]Job, error)
}
