package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aklujeats/aklujeats/internal/logger"
)

// Retry configuration constants
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 30 * time.Second
)

// StaleOrderSweepJob names the job cancelling orders nobody accepted
const StaleOrderSweepJob = "stale_order_sweep"

// Sweeper cancels placed orders older than a cutoff
type Sweeper interface {
	SweepStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// Scheduler runs the periodic order maintenance jobs
type Scheduler struct {
	orders          Sweeper
	sweepSpec       string
	autoCancelAfter time.Duration
	maxRetries      int
	retryDelay      time.Duration
	cron            *cron.Cron
	running         bool
	mu              sync.RWMutex
}

// New creates a scheduler running the stale order sweep on sweepSpec (a cron
// expression or descriptor such as "@every 5m")
func New(orders Sweeper, sweepSpec string, autoCancelAfter time.Duration) *Scheduler {
	return &Scheduler{
		orders:          orders,
		sweepSpec:       sweepSpec,
		autoCancelAfter: autoCancelAfter,
		maxRetries:      DefaultMaxRetries,
		retryDelay:      DefaultRetryDelay,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	c := cron.New()
	_, err := c.AddFunc(s.sweepSpec, func() {
		if _, err := s.sweepWithRetry(ctx); err != nil {
			logger.Error("Job %s failed: %v", StaleOrderSweepJob, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", StaleOrderSweepJob, err)
	}
	logger.Info("Registered job %s with cron expression: %s", StaleOrderSweepJob, s.sweepSpec)

	c.Start()
	s.cron = c
	s.running = true

	logger.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false

	logger.Info("Scheduler stopped")
}

// Running reports whether the scheduler has been started
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// SweepNow runs the stale order sweep immediately
func (s *Scheduler) SweepNow(ctx context.Context) (int, error) {
	return s.sweepWithRetry(ctx)
}

// sweepWithRetry runs the sweep, retrying failed attempts
func (s *Scheduler) sweepWithRetry(ctx context.Context) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		n, err := s.orders.SweepStale(ctx, s.autoCancelAfter)
		if err == nil {
			if attempt > 1 {
				logger.Info("Stale order sweep succeeded on attempt %d", attempt)
			}
			return n, nil
		}

		lastErr = err
		logger.Warning("Attempt %d/%d of stale order sweep failed: %v", attempt, s.maxRetries, err)

		// Don't wait after the last attempt
		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
	}

	return 0, fmt.Errorf("failed after %d attempts, last error: %w", s.maxRetries, lastErr)
}
