package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nhasan-dev/district-travel-advisor/internal/metrics"
	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

// Reloader runs one full cache reload cycle. *weather.Service satisfies it.
type Reloader interface {
	Reload(ctx context.Context) (weather.RankingSnapshot, error)
}

// Refresher is the execution body of the periodic refresh. It enforces two
// process-wide guards as instance state (so tests can build isolated ones):
// a mutual-exclusion gate that skips overlapping triggers outright, and an
// idempotency window that skips triggers arriving too soon after the last
// successful run.
type Refresher struct {
	service     Reloader
	minInterval time.Duration

	gate sync.Mutex // held for the duration of one refresh

	mu          sync.Mutex
	lastSuccess time.Time
}

// NewRefresher creates a Refresher. minInterval is the idempotency window:
// triggers closer than this to the last successful completion are skipped.
func NewRefresher(service Reloader, minInterval time.Duration) *Refresher {
	return &Refresher{
		service:     service,
		minInterval: minInterval,
	}
}

// Run executes one refresh. Overlapping and too-recent triggers are skipped
// with a nil error (logged, not escalated); a failed reload propagates so the
// enclosing scheduler's retry policy applies and does not advance the
// last-success timestamp.
func (r *Refresher) Run(ctx context.Context) error {
	if !r.gate.TryLock() {
		log.Println("refresher: refresh already in progress, skipping this trigger")
		metrics.RefresherSkipsTotal.WithLabelValues("overlap").Inc()
		return nil
	}
	defer r.gate.Unlock()

	if last := r.LastSuccess(); !last.IsZero() && time.Since(last) < r.minInterval {
		log.Printf("refresher: last success %s ago is within the %s idempotency window, skipping",
			time.Since(last).Round(time.Second), r.minInterval)
		metrics.RefresherSkipsTotal.WithLabelValues("recent_success").Inc()
		return nil
	}

	if _, err := r.service.Reload(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	r.lastSuccess = time.Now()
	r.mu.Unlock()
	return nil
}

// LastSuccess returns when the last refresh completed successfully, zero if
// none has.
func (r *Refresher) LastSuccess() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSuccess
}
