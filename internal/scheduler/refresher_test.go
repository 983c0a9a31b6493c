package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

type stubReloader struct {
	calls   atomic.Int32
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubReloader) Reload(ctx context.Context) (weather.RankingSnapshot, error) {
	s.calls.Add(1)
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return weather.RankingSnapshot{}, ctx.Err()
		}
	}
	if s.err != nil {
		return weather.RankingSnapshot{}, s.err
	}
	return weather.RankingSnapshot{GeneratedAt: time.Now().UTC()}, nil
}

func TestRefresherRunUpdatesLastSuccess(t *testing.T) {
	stub := &stubReloader{}
	r := NewRefresher(stub, 5*time.Minute)

	assert.True(t, r.LastSuccess().IsZero())
	require.NoError(t, r.Run(context.Background()))
	assert.WithinDuration(t, time.Now(), r.LastSuccess(), time.Second)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestRefresherIdempotencyWindow(t *testing.T) {
	stub := &stubReloader{}
	r := NewRefresher(stub, 5*time.Minute)

	require.NoError(t, r.Run(context.Background()))
	// A second trigger inside the window is skipped without a reload.
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestRefresherFailureDoesNotAdvanceLastSuccess(t *testing.T) {
	stub := &stubReloader{err: errors.New("upstream down")}
	r := NewRefresher(stub, 5*time.Minute)

	err := r.Run(context.Background())
	require.Error(t, err, "failures propagate to the scheduler's retry policy")
	assert.True(t, r.LastSuccess().IsZero())

	// With no success recorded the window does not apply; the retry runs.
	_ = r.Run(context.Background())
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestRefresherSkipsOverlappingTrigger(t *testing.T) {
	stub := &stubReloader{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := NewRefresher(stub, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Run(context.Background())
	}()

	<-stub.started
	// The first run holds the gate; this trigger is dropped, not queued.
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, int32(1), stub.calls.Load())

	close(stub.release)
	wg.Wait()
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestRefresherRespectsCancellation(t *testing.T) {
	stub := &stubReloader{
		started: make(chan struct{}),
		release: make(chan struct{}), // never closed, only ctx can end it
	}
	r := NewRefresher(stub, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	<-stub.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, r.LastSuccess().IsZero(), "a cancelled refresh is not a success")
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not observe cancellation")
	}
}
