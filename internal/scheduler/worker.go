package scheduler

import (
	"context"
	"log/slog"
	"time"

	"murmur/internal/middleware"
)

const claimBatchSize = 100

// Handler executes a claimed job.
type Handler func(ctx context.Context, job Job) error

// Worker polls the queue and dispatches due jobs to registered handlers.
type Worker struct {
	queue    Queue
	interval time.Duration
	handlers map[string]Handler
	logger   *slog.Logger

	// now is swappable so tests can drive a simulated clock.
	now func() time.Time
}

// NewWorker creates a worker polling the queue at the given interval.
func NewWorker(queue Queue, interval time.Duration) *Worker {
	return &Worker{
		queue:    queue,
		interval: interval,
		handlers: make(map[string]Handler),
		logger:   middleware.Logger,
		now:      time.Now,
	}
}

// Register installs the handler for a job kind. Jobs of unregistered kinds
// are dropped with a warning.
func (w *Worker) Register(kind string, h Handler) {
	w.handlers[kind] = h
}

// SetNow overrides the worker's clock. Tests only.
func (w *Worker) SetNow(now func() time.Time) {
	w.now = now
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("publication worker started", slog.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("publication worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce claims and dispatches one batch of due jobs.
func (w *Worker) RunOnce(ctx context.Context) {
	jobs, err := w.queue.Claim(ctx, w.now(), claimBatchSize)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to claim due jobs", slog.String("error", err.Error()))
		return
	}

	for _, job := range jobs {
		h, ok := w.handlers[job.Kind]
		if !ok {
			w.logger.WarnContext(ctx, "no handler for job kind, dropping",
				slog.String("kind", job.Kind),
				slog.Uint64("post_id", uint64(job.PostID)),
			)
			continue
		}
		if err := h(ctx, job); err != nil {
			middleware.ScheduledJobs.WithLabelValues("error").Inc()
			w.logger.ErrorContext(ctx, "job handler failed",
				slog.String("kind", job.Kind),
				slog.Uint64("post_id", uint64(job.PostID)),
				slog.String("error", err.Error()),
			)
		}
	}
}
