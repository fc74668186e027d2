// Package notify delivers reminder notifications to the desktop and keeps
// track of the last one announced.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/model"
)

// Sink is what the schedulers call to announce a reminder.
type Sink interface {
	Notify(ctx context.Context, title, message string)
}

// Notifier hands a notification to the host platform.
type Notifier interface {
	Deliver(ctx context.Context, n *model.Notification) error
	Name() string
}

// DefaultDeliverTimeout bounds one hand-off to the platform notifier.
const DefaultDeliverTimeout = 5 * time.Second

// History stores announced notifications.
type History interface {
	Record(n *model.Notification) error
}

// AnnouncerOptions configures an Announcer.
type AnnouncerOptions struct {
	Notifier Notifier
	History  History
	AppName  string
	Timeout  time.Duration
	// DeliverTimeout caps how long Deliver may block the caller.
	DeliverTimeout time.Duration
	// OnAnnounce, if set, is called after every announcement with the
	// notification as delivered (Error set on failure).
	OnAnnounce func(n *model.Notification)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Announcer is the Sink used by the scheduler, the TUI and notify-test.
// Delivery and history failures are logged and never returned.
type Announcer struct {
	notifier   Notifier
	history    History
	appName    string
	timeout    time.Duration
	deliverTO  time.Duration
	onAnnounce func(n *model.Notification)
	now        func() time.Time

	mu   sync.RWMutex
	last *model.Notification
}

// NewAnnouncer creates an Announcer. A nil Notifier discards notifications.
func NewAnnouncer(opts AnnouncerOptions) *Announcer {
	a := &Announcer{
		notifier:   opts.Notifier,
		history:    opts.History,
		appName:    opts.AppName,
		timeout:    opts.Timeout,
		deliverTO:  opts.DeliverTimeout,
		onAnnounce: opts.OnAnnounce,
		now:        opts.Now,
	}
	if a.notifier == nil {
		a.notifier = None{}
	}
	if a.appName == "" {
		a.appName = model.DefaultAppName
	}
	if a.timeout <= 0 {
		a.timeout = model.DefaultNotifyTimeout
	}
	if a.deliverTO <= 0 {
		a.deliverTO = DefaultDeliverTimeout
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Notify implements Sink.
func (a *Announcer) Notify(ctx context.Context, title, message string) {
	a.Announce(ctx, title, message)
}

// Announce delivers one notification and returns it with Error populated
// if the platform rejected it.
func (a *Announcer) Announce(ctx context.Context, title, message string) *model.Notification {
	n := model.NewNotification(title, message)
	n.AppName = a.appName
	n.Timeout = a.timeout
	n.FiredAt = a.now()

	log := logging.FromContext(ctx).With(
		logging.KeyOperation, "notify",
		"kind", string(n.Kind),
		"notifier", a.notifier.Name(),
	)

	if err := a.deliver(ctx, n); err != nil {
		n.Error = err.Error()
		log.Warn("notification delivery failed", logging.KeyError, err)
	} else {
		log.Info("reminder announced", "message", n.Message)
	}

	a.mu.Lock()
	a.last = n
	a.mu.Unlock()

	if a.history != nil {
		if err := a.history.Record(n); err != nil {
			log.Warn("failed to record notification history", logging.KeyError, err)
		}
	}

	if a.onAnnounce != nil {
		a.onAnnounce(n)
	}
	return n
}

// deliver runs the notifier under the delivery timeout. Notifiers that
// ignore ctx are abandoned once it expires so the scheduler loop moves on.
func (a *Announcer) deliver(ctx context.Context, n *model.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, a.deliverTO)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.notifier.Deliver(ctx, n) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s: delivery timed out after %s: %w", a.notifier.Name(), a.deliverTO, ctx.Err())
	}
}

// LastAnnounced returns the quoted message of the most recent announcement
// from this process, or "" if nothing has been announced.
func (a *Announcer) LastAnnounced() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return ""
	}
	return a.last.Display()
}

// Last returns a copy of the most recent notification, or nil.
func (a *Announcer) Last() *model.Notification {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return nil
	}
	n := *a.last
	return &n
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(ctx context.Context, title, message string)

// Notify implements Sink.
func (f SinkFunc) Notify(ctx context.Context, title, message string) {
	f(ctx, title, message)
}
