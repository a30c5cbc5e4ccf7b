// Package token maintains the station-scoped admission token: an opaque
// short-lived value that gates the check-in channel. At most one token is
// active per station; issuing a new one immediately invalidates the
// previous one.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Trigger records what caused a rotation.
type Trigger string

const (
	TriggerAuto   Trigger = "auto"
	TriggerManual Trigger = "manual"
)

// Rotator owns the current admission token and its countdown. The
// countdown can be paused while the panel UI is hidden; resuming
// recomputes the deadline from the captured remaining time instead of
// resetting it, so neither premature expiry nor lifetime inflation occurs.
type Rotator struct {
	mu          sync.Mutex
	stationCode string
	interval    time.Duration
	value       string
	deadline    time.Time
	paused      bool
	remaining   time.Duration
	onRotate    func(value string, trigger Trigger)
	now         func() time.Time
}

// NewRotator creates a rotator for the given station. The first token is
// issued on the first Rotate call (typically at station open), not here.
func NewRotator(stationCode string, interval time.Duration) *Rotator {
	return &Rotator{
		stationCode: stationCode,
		interval:    interval,
		now:         time.Now,
	}
}

// OnRotate registers a callback invoked after every rotation. The
// callback runs outside the rotator lock.
func (r *Rotator) OnRotate(fn func(value string, trigger Trigger)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRotate = fn
}

// Current returns the active token value and its remaining time to live.
// The value is empty before the first rotation.
func (r *Rotator) Current() (string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.ttlLocked()
}

func (r *Rotator) ttlLocked() time.Duration {
	if r.value == "" {
		return 0
	}
	if r.paused {
		return r.remaining
	}
	ttl := r.deadline.Sub(r.now())
	if ttl < 0 {
		ttl = 0
	}
	return ttl
}

// Rotate invalidates the current token, issues a new one and resets the
// countdown to the full interval.
func (r *Rotator) Rotate(trigger Trigger) string {
	r.mu.Lock()
	r.value = newValue(r.stationCode)
	r.deadline = r.now().Add(r.interval)
	r.remaining = r.interval
	fn := r.onRotate
	value := r.value
	r.mu.Unlock()

	if fn != nil {
		fn(value, trigger)
	}
	return value
}

// Pause freezes the countdown, capturing the remaining time.
func (r *Rotator) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused || r.value == "" {
		return
	}
	r.remaining = r.deadline.Sub(r.now())
	if r.remaining < 0 {
		r.remaining = 0
	}
	r.paused = true
}

// Resume restarts the countdown from the captured remaining time.
func (r *Rotator) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused {
		return
	}
	r.deadline = r.now().Add(r.remaining)
	r.paused = false
}

// Run drives automatic rotation until the context is cancelled. The first
// token is issued immediately.
func (r *Rotator) Run(ctx context.Context) {
	r.Rotate(TriggerAuto)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			expired := !r.paused && r.value != "" && !r.now().Before(r.deadline)
			r.mu.Unlock()
			if expired {
				r.Rotate(TriggerAuto)
			}
		}
	}
}

func newValue(stationCode string) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on the supported platforms; fall back
		// to a time-derived chunk rather than panicking mid-election.
		return fmt.Sprintf("tps_%s_%08x", stationCode, time.Now().UnixNano()&0xffffffff)
	}
	return fmt.Sprintf("tps_%s_%s", stationCode, hex.EncodeToString(buf))
}
