package scheduler

import (
	"context"

	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/notify"
)

// SpecificSource looks up the reminder for a date.
type SpecificSource interface {
	SpecificFor(date model.DateKey) (string, bool)
}

// SpecificChecker announces today's date-bound reminder.
type SpecificChecker struct {
	clock  Clock
	source SpecificSource
	sink   notify.Sink
}

// NewSpecificChecker creates a SpecificChecker. A nil clock uses the wall clock.
func NewSpecificChecker(clock Clock, source SpecificSource, sink notify.Sink) *SpecificChecker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SpecificChecker{clock: clock, source: source, sink: sink}
}

// Check announces today's reminder, if any, and reports whether it did.
func (c *SpecificChecker) Check() bool {
	today := model.DateKeyFor(c.clock.Now())
	text, ok := c.source.SpecificFor(today)
	if !ok {
		logging.DebugLog("no specific reminder today", logging.KeyDate, today.String())
		return false
	}

	ctx := logging.NewRunContext(context.Background())
	c.sink.Notify(ctx, model.TitleSpecific, text)
	return true
}
