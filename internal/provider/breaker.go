package provider

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultBreakerThreshold is how many consecutive connection failures
	// open a breaker.
	DefaultBreakerThreshold = 3
	// DefaultBreakerCooldown is how long an open breaker rejects attempts
	// before letting one trial call through.
	DefaultBreakerCooldown = 30 * time.Second
)

// ErrHostUnavailable is returned while a host's breaker is open.
var ErrHostUnavailable = errors.New("host unavailable")

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// BreakerClosed lets every attempt through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects attempts until the cooldown has passed.
	BreakerOpen
	// BreakerHalfOpen lets a single trial call through.
	BreakerHalfOpen
)

// String returns the string representation of the breaker state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker stops connection attempts to a host that keeps failing. Several
// panels targeting one host share a Breaker.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	state    BreakerState
	failures int
	openedAt time.Time
	trialing  bool
}

// NewBreaker creates a closed breaker. Non-positive arguments use the
// defaults.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultBreakerCooldown
	}
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Allow returns nil when an attempt may proceed. Every allowed attempt must
// be followed by Record.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		retry := b.openedAt.Add(b.cooldown)
		if b.now().Before(retry) {
			return fmt.Errorf("%w after %d failed connections, retrying at %s",
				ErrHostUnavailable, b.failures, retry.Format("15:04:05"))
		}
		b.state = BreakerHalfOpen
		b.trialing = true
		return nil
	case BreakerHalfOpen:
		if b.trialing {
			return fmt.Errorf("%w, reconnect in progress", ErrHostUnavailable)
		}
		b.trialing = true
		return nil
	default:
		return nil
	}
}

// Record reports the outcome of an allowed attempt. Only connection
// failures should be recorded as errors.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialing = false
	if err == nil {
		b.state = BreakerClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		b.state = BreakerOpen
		b.openedAt = b.now()
	}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
