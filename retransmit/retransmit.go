// Package retransmit provides the per-packet retransmission timer
// described in spec.md §4.4: one timer per unacked outbound packet,
// firing a resend after a fixed timeout and re-arming, indefinitely.
// This mirrors original_source/YARU.py's _start_timer/on_send_timeout
// pair (threading.Timer, re-started from within its own callback) rather
// than yustack's single shared resend timer per connection (YARU has no
// congestion control, so every unacked packet gets its own clock).
package retransmit

import "time"

// Timer is a single-packet retransmission clock. It is not safe for
// concurrent use by multiple goroutines without external synchronization
// — callers hold the endpoint-wide mutex around Stop and around the
// re-arm performed from inside the fire callback (spec.md §9).
type Timer struct {
	timeout time.Duration
	t       *time.Timer
}

// New arms a timer that calls fire once, after timeout.
func New(timeout time.Duration, fire func()) *Timer {
	return &Timer{
		timeout: timeout,
		t:       time.AfterFunc(timeout, fire),
	}
}

// Rearm schedules fire to run again after the same timeout used at
// construction. Called by the fire callback itself when the packet is
// still unacknowledged, so retransmission continues indefinitely.
func (rt *Timer) Rearm(fire func()) {
	rt.t = time.AfterFunc(rt.timeout, fire)
}

// Stop cancels the timer on a best-effort basis: if fire is already
// running or queued to run, Stop has no effect on it, and the fire
// callback is responsible for noticing the packet has been retired
// (spec.md §9, "Timer callback races").
func (rt *Timer) Stop() {
	rt.t.Stop()
}
