package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/manav03panchal/remindly/internal/logging"
)

// DefaultLoopBuffer is the number of posted jobs a Loop holds before Post
// blocks.
const DefaultLoopBuffer = 64

// Loop runs posted jobs one at a time. Everything that touches the store
// or the daily scheduler state goes through a Loop.
type Loop struct {
	queue    chan func()
	done     chan struct{}
	dispatch func(func())
}

// NewLoop creates a Loop that runs jobs from its own queue. Call Run to
// process them.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), DefaultLoopBuffer),
		done:  make(chan struct{}),
	}
}

// NewDispatchLoop creates a Loop that hands every job to dispatch instead of
// queueing it. The caller guarantees dispatch runs jobs sequentially, as
// bubbletea's Program.Send does with its update loop. Run is not used.
func NewDispatchLoop(dispatch func(func())) *Loop {
	return &Loop{dispatch: dispatch, done: make(chan struct{})}
}

// Post schedules fn to run on the loop. Posting to a loop that has
// stopped drops the job.
func (l *Loop) Post(fn func()) {
	job := func() { safeRun(fn) }
	if l.dispatch != nil {
		l.dispatch(job)
		return
	}
	select {
	case l.queue <- job:
	case <-l.done:
		logging.DebugLog("job posted to stopped loop dropped")
	}
}

// Run processes jobs until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if l.dispatch != nil {
		return fmt.Errorf("dispatch loop cannot be run directly")
	}
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-l.queue:
			job()
		}
	}
}

// Stopped is closed once Run returns.
func (l *Loop) Stopped() <-chan struct{} {
	return l.done
}

// safeRun runs fn, logging instead of crashing if it panics.
func safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("scheduled job panicked",
				logging.KeyError, fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
