// Package watchdog provides a cooperative timeout flag for long-running
// solves.
//
// The watchdog never interrupts work by itself: it raises a flag when the
// time budget is spent, and cooperating drivers poll the flag between
// operations, stop issuing work, and report the last successful state. The
// placement engine itself never observes the flag.
package watchdog

import (
	"context"
	"sync/atomic"
	"time"
)

// Watchdog raises a flag once a time budget has elapsed.
type Watchdog struct {
	deadline time.Time
	fired    atomic.Bool
	stop     context.CancelFunc
}

// New creates a watchdog with the given budget, measured from now.
func New(budget time.Duration) *Watchdog {
	return &Watchdog{deadline: time.Now().Add(budget)}
}

// Start launches the background timer. The flag is raised when the deadline
// passes; cancelling ctx stops the timer without raising the flag.
func (w *Watchdog) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.stop = cancel

	go func() {
		timer := time.NewTimer(time.Until(w.deadline))
		defer timer.Stop()
		select {
		case <-timer.C:
			w.fired.Store(true)
		case <-ctx.Done():
		}
	}()
}

// Stop cancels the background timer. Safe to call before Start and more than
// once; a flag already raised stays raised.
func (w *Watchdog) Stop() {
	if w.stop != nil {
		w.stop()
	}
}

// TimedOut reports whether the budget has been spent. The check is
// deadline-based as well as flag-based so that callers polling faster than
// the timer granularity still observe the timeout.
func (w *Watchdog) TimedOut() bool {
	return w.fired.Load() || !time.Now().Before(w.deadline)
}

// Remaining returns the time left in the budget, never negative.
func (w *Watchdog) Remaining() time.Duration {
	if r := time.Until(w.deadline); r > 0 {
		return r
	}
	return 0
}
