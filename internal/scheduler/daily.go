package scheduler

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/notify"
)

// Rand draws the fire hour and minute.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DailySource supplies the daily reminder to announce.
type DailySource interface {
	RandomDaily() (string, bool)
}

// Window is the daytime range in which the daily reminder is armed. Ticks
// arm while Start <= hour < End; fire times are drawn from Start..End
// inclusive.
type Window struct {
	Start int
	End   int
}

// DefaultWindow is 6:00 to 18:00.
var DefaultWindow = Window{Start: 6, End: 18}

// Tick outcomes.
const (
	ReasonBeforeWindow = "before window"
	ReasonDisarmed     = "window closed"
	ReasonAlreadyArmed = "already armed"
	ReasonFireInPast   = "fire time not in the future"
	ReasonNoReminders  = "no daily reminders"
	ReasonScheduled    = "scheduled"
)

// TickResult describes the decision made by one Tick.
type TickResult struct {
	Armed     bool
	Scheduled bool
	FireAt    time.Time
	Reminder  string
	Reason    string
}

// DailyScheduler arms one random daily reminder per eligible day.
type DailyScheduler struct {
	clock  Clock
	timer  Timer
	rand   Rand
	source DailySource
	sink   notify.Sink
	window Window

	armed bool
}

// DailyOptions configures a DailyScheduler.
type DailyOptions struct {
	Clock  Clock
	Timer  Timer
	Rand   Rand
	Source DailySource
	Sink   notify.Sink
	Window Window
}

// NewDailyScheduler creates an unarmed DailyScheduler.
func NewDailyScheduler(opts DailyOptions) *DailyScheduler {
	d := &DailyScheduler{
		clock:  opts.Clock,
		timer:  opts.Timer,
		rand:   opts.Rand,
		source: opts.Source,
		sink:   opts.Sink,
		window: opts.Window,
	}
	if d.clock == nil {
		d.clock = SystemClock{}
	}
	if d.rand == nil {
		d.rand = globalRand{}
	}
	if d.window == (Window{}) {
		d.window = DefaultWindow
	}
	return d
}

// Armed reports whether today's notification has been scheduled.
func (d *DailyScheduler) Armed() bool {
	return d.armed
}

// Tick advances the armed state for the current hour and, when it arms,
// schedules a one-shot notification.
func (d *DailyScheduler) Tick() TickResult {
	now := d.clock.Now()
	hour := now.Hour()

	switch {
	case hour >= d.window.End:
		d.armed = false
		return TickResult{Reason: ReasonDisarmed}
	case hour < d.window.Start:
		return TickResult{Armed: d.armed, Reason: ReasonBeforeWindow}
	case d.armed:
		return TickResult{Armed: true, Reason: ReasonAlreadyArmed}
	}

	fireAt := d.drawFireTime(now)
	if !fireAt.After(now) {
		return TickResult{FireAt: fireAt, Reason: ReasonFireInPast}
	}

	text, ok := d.source.RandomDaily()
	if !ok {
		return TickResult{FireAt: fireAt, Reason: ReasonNoReminders}
	}

	d.timer.AfterFunc(fireAt.Sub(now), func() {
		ctx := logging.NewRunContext(context.Background())
		d.sink.Notify(ctx, model.TitleDaily, text)
	})
	d.armed = true

	return TickResult{
		Armed:     true,
		Scheduled: true,
		FireAt:    fireAt,
		Reminder:  text,
		Reason:    ReasonScheduled,
	}
}

func (d *DailyScheduler) drawFireTime(now time.Time) time.Time {
	hour := d.window.Start + d.rand.IntN(d.window.End-d.window.Start+1)
	minute := d.rand.IntN(60)
	y, m, day := now.Date()
	return time.Date(y, m, day, hour, minute, 0, 0, now.Location())
}
