// Package throttle paces outbound platform calls. The limiter adapts: it
// creeps the rate up while sends succeed and halves it when the platform
// pushes back, so a burst of transient feedback cannot trip API rate limits.
package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	min       rate.Limit
	max       rate.Limit
	stepUp    rate.Limit
	lastError time.Time
}

// New creates a limiter starting at initial sends per second, bounded by
// [min, max].
func New(initial, min, max rate.Limit) *Limiter {
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}
	return &Limiter{
		limiter: rate.NewLimiter(initial, maxInt(1, int(initial))),
		min:     min,
		max:     max,
		stepUp:  1,
	}
}

// Wait blocks until a send slot is available or ctx is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.limiter.Wait(ctx)
}

// Success nudges the rate up after a clean send. Recent failures hold the
// rate down for a grace period.
func (l *Limiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastError) > 10*time.Second {
		l.set(l.limiter.Limit() + l.stepUp)
	}
}

// Limited halves the rate after the platform rejected or delayed a send.
func (l *Limiter) Limited() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastError = time.Now()
	l.set(l.limiter.Limit() / 2)
}

// Rate returns the current sends per second.
func (l *Limiter) Rate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return float64(l.limiter.Limit())
}

func (l *Limiter) set(newLimit rate.Limit) {
	if newLimit > l.max {
		newLimit = l.max
	} else if newLimit < l.min {
		newLimit = l.min
	}
	if newLimit != l.limiter.Limit() {
		l.limiter.SetLimit(newLimit)
		l.limiter.SetBurst(maxInt(1, int(newLimit)))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
