// Package cycle resets the bill at the end of each billing cycle.
package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ResetFunc clears the bill. It is called from the cron goroutine.
type ResetFunc func(ctx context.Context) error

// Scheduler runs a ResetFunc on a cron schedule.
//
// Common schedules:
//   - "0 0 1 * *"  first day of each month at midnight
//   - "0 0 * * 1"  every Monday at midnight
//   - "@daily"     every day at midnight
type Scheduler struct {
	schedule string
	reset    ResetFunc
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler. An empty schedule disables it.
func NewScheduler(schedule string, reset ResetFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		schedule: schedule,
		reset:    reset,
		cron:     cron.New(),
		logger:   logger.With("component", "cycle.scheduler"),
	}
}

// Start validates the schedule and begins running resets. The scheduler
// stops on its own when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("billing cycle not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("schedule reset: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("billing cycle scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	s.logger.Info("billing cycle ended, resetting bill")
	if err := s.reset(ctx); err != nil {
		s.logger.Error("scheduled reset failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running reset to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("billing cycle scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the time of the next reset, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
