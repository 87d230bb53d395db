// Package ratelimit provides the per-adapter request budget. The limiter
// blocks callers until the window rolls over instead of rejecting them;
// vendor-side 429 responses are a separate error class handled elsewhere.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// WindowLimiter admits up to maxRequests calls per fixed window. The first
// call observed after the window expires resets the counter. Acquire
// serializes concurrent callers, so the count can never exceed the budget.
type WindowLimiter struct {
	mu           sync.Mutex
	maxRequests  int
	window       time.Duration
	requestCount int
	windowStart  time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWindowLimiter creates a WindowLimiter
func NewWindowLimiter(maxRequests int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Acquire admits the call, blocking until the current window rolls over when
// the budget is exhausted. Returns early only when the context is cancelled.
func (l *WindowLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		now := l.now()
		if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.window {
			l.windowStart = now
			l.requestCount = 0
		}
		if l.requestCount < l.maxRequests {
			l.requestCount++
			return nil
		}
		// Budget exhausted: wait out the rest of the window. The mutex is
		// held, queueing concurrent acquirers behind this one.
		wait := l.windowStart.Add(l.window).Sub(now)
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Remaining returns the unused budget in the current window
func (l *WindowLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.windowStart.IsZero() || l.now().Sub(l.windowStart) >= l.window {
		return l.maxRequests
	}
	return l.maxRequests - l.requestCount
}

// WindowStart returns the start of the current window
func (l *WindowLimiter) WindowStart() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.windowStart
}

// sleepContext sleeps for d or until the context is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
