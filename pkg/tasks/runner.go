// Package tasks runs fire-and-forget background work with bounded
// concurrency. Submitted tasks run detached from the request path:
// they may complete, fail, or race independently of request completion,
// and failures are observable only via logging.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config configures the background task runner.
type Config struct {
	// MaxConcurrent limits how many tasks run at once (default: 8).
	MaxConcurrent int
	// TaskTimeout bounds a single task (default: 30s). Expiry is a task
	// failure, logged and otherwise swallowed.
	TaskTimeout time.Duration
	// RatePerSecond throttles task starts. Zero disables throttling.
	RatePerSecond float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 8,
		TaskTimeout:   30 * time.Second,
	}
}

// Runner executes submitted tasks on detached goroutines. There is no
// retry and no durable queue: at-most-once-attempted, best-effort.
type Runner struct {
	sem     chan struct{}
	limiter *rate.Limiter
	timeout time.Duration
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// NewRunner creates a new background task runner.
func NewRunner(cfg Config, logger *zap.Logger) *Runner {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 8
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.MaxConcurrent)
	}

	return &Runner{
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		limiter: limiter,
		timeout: cfg.TaskTimeout,
		logger:  logger.Named("tasks"),
	}
}

// Submit schedules fn to run in the background and returns immediately.
// The task runs under its own timeout-bound context, detached from any
// request context. Errors and panics are logged, never propagated.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				r.logger.Warn("Task timed out waiting for rate limiter",
					zap.String("task", name), zap.Error(err))
				return
			}
		}

		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("Task panicked",
					zap.String("task", name), zap.Any("panic", rec))
			}
		}()

		start := time.Now()
		if err := fn(ctx); err != nil {
			r.logger.Warn("Task failed",
				zap.String("task", name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}

		r.logger.Debug("Task completed",
			zap.String("task", name),
			zap.Duration("elapsed", time.Since(start)))
	}()
}

// Wait blocks until all submitted tasks have finished. Used for clean
// shutdown and in tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}
