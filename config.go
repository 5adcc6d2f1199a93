package yaru

import "time"

// Default window size and retransmission timeout, per spec.md §6.
const (
	DefaultWindowSize = 1024
	DefaultTimeout    = 30 * time.Second
)

// Config carries the tunables spec.md §3 calls WINDOW_SIZE and TIMEOUT as
// explicit, per-socket values rather than package-level mutable state,
// the way the teacher's stack.Stack takes an options struct at
// construction instead of reading globals.
type Config struct {
	// WindowSize bounds how many unacknowledged packets send_buf (and
	// the mirrored span of recv_buf) may hold at once.
	WindowSize uint64
	// Timeout is how long an unacknowledged DATA packet waits before
	// its retransmission timer fires.
	Timeout time.Duration
}

// withDefaults returns a copy of c with zero fields replaced by the
// package defaults.
func (c Config) withDefaults() Config {
	if c.WindowSize == 0 {
		c.WindowSize = DefaultWindowSize
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
