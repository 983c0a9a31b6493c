package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler drives the Refresher on a fixed schedule and applies a bounded
// retry ladder to failed refreshes before giving up until the next tick.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	refresher  *Refresher
	interval   time.Duration
	jobTimeout time.Duration
	retryAfter []time.Duration
}

// New creates a Scheduler. retryAfter holds the delays applied between failed
// attempts within one tick (e.g. 30s, 60s, 120s).
func New(refresher *Refresher, interval, jobTimeout time.Duration, retryAfter []time.Duration) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		refresher:  refresher,
		interval:   interval,
		jobTimeout: jobTimeout,
		retryAfter: retryAfter,
	}
}

// Start schedules the periodic refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 10
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		log.Println("scheduler: running cache refresh job")
		if err := s.runWithRetries(ctx); err != nil {
			log.Printf("scheduler: refresh failed after %d retries: %v", len(s.retryAfter), err)
			return
		}
		log.Println("scheduler: completed cache refresh job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runWithRetries(ctx context.Context) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = s.refresher.Run(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt >= len(s.retryAfter) {
			return lastErr
		}

		log.Printf("scheduler: refresh attempt %d failed, retrying in %s: %v", attempt+1, s.retryAfter[attempt], lastErr)
		timer := time.NewTimer(s.retryAfter[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
