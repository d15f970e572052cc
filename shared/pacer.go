package shared

import (
	"context"
	"sync"
	"time"
)

// RequestPacer enforces a minimum delay between consecutive requests.
// Used to pace sequential calls against the scoring service when the
// batch endpoint is unavailable and requests fall back to one-by-one.
type RequestPacer struct {
	mu       sync.Mutex
	minDelay time.Duration
	lastCall time.Time
}

// NewRequestPacer creates a pacer with the given minimum delay between calls
func NewRequestPacer(minDelay time.Duration) *RequestPacer {
	return &RequestPacer{
		minDelay: minDelay,
	}
}

// Wait blocks until at least minDelay has elapsed since the previous call.
// Returns early with the context error if the context is cancelled.
func (p *RequestPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	var sleepFor time.Duration
	if !p.lastCall.IsZero() {
		elapsed := now.Sub(p.lastCall)
		if elapsed < p.minDelay {
			sleepFor = p.minDelay - elapsed
		}
	}
	p.lastCall = now.Add(sleepFor)
	p.mu.Unlock()

	if sleepFor <= 0 {
		return nil
	}

	timer := time.NewTimer(sleepFor)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
