package scheduler

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Task is a one-shot-then-recurring timer: it fires once after an initial
// delay, then at a fixed period until stopped. Built on an injected clock so
// tests drive it with a mock instead of real timers.
type Task struct {
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartTask runs fn after delay, then every period. fn runs on the task's
// goroutine; a slow fn delays subsequent fires rather than stacking them.
func StartTask(clk clock.Clock, delay, period time.Duration, fn func()) *Task {
	t := &Task{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.run(clk, delay, period, fn)
	return t
}

func (t *Task) run(clk clock.Clock, delay, period time.Duration, fn func()) {
	defer close(t.done)

	timer := clk.Timer(delay)
	select {
	case <-timer.C:
	case <-t.stop:
		timer.Stop()
		return
	}
	fn()

	ticker := clk.Ticker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn()
		case <-t.stop:
			return
		}
	}
}

// Stop cancels the task. Safe to call more than once.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

// UntilNextMinute returns the delay from now to the next top-of-minute
// boundary. Arming a timer with this delay and then repeating every 60s keeps
// fires near :00 regardless of when the session started, matching the
// backend's minute-aligned candle closes.
func UntilNextMinute(now time.Time) time.Duration {
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}
