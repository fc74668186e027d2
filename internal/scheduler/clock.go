package scheduler

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Timer runs a function once after a delay. One-shot callbacks cannot be
// cancelled.
type Timer interface {
	AfterFunc(d time.Duration, fn func())
}

// SystemClock is the wall clock in the local time zone.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// LoopTimer fires callbacks on a Loop rather than on the timer goroutine.
type LoopTimer struct {
	Loop *Loop
}

// AfterFunc implements Timer.
func (t LoopTimer) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { t.Loop.Post(fn) })
}
