package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/remindly/internal/config"
	"github.com/manav03panchal/remindly/internal/model"
)

type fakeNotifier struct {
	delivered []*model.Notification
	err       error
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Deliver(_ context.Context, n *model.Notification) error {
	f.delivered = append(f.delivered, n)
	return f.err
}

type fakeHistory struct {
	recorded []*model.Notification
	err      error
}

func (f *fakeHistory) Record(n *model.Notification) error {
	f.recorded = append(f.recorded, n)
	return f.err
}

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestAnnouncer(n Notifier, h History) *Announcer {
	return NewAnnouncer(AnnouncerOptions{
		Notifier: n,
		History:  h,
		Now:      func() time.Time { return fixedNow },
	})
}

// =============================================================================
// Announcer Tests
// =============================================================================

func TestAnnouncerDefaults(t *testing.T) {
	a := NewAnnouncer(AnnouncerOptions{})
	assert.Equal(t, model.DefaultAppName, a.appName)
	assert.Equal(t, model.DefaultNotifyTimeout, a.timeout)
	assert.Equal(t, config.BackendNone, a.notifier.Name())
	assert.Equal(t, "", a.LastAnnounced())
	assert.Nil(t, a.Last())
}

func TestAnnouncerDelivers(t *testing.T) {
	notifier := &fakeNotifier{}
	history := &fakeHistory{}
	a := newTestAnnouncer(notifier, history)

	n := a.Announce(context.Background(), model.TitleDaily, "Drink water")

	require.Len(t, notifier.delivered, 1)
	got := notifier.delivered[0]
	assert.Equal(t, "Daily Reminder", got.Title)
	assert.Equal(t, "Drink water", got.Message)
	assert.Equal(t, "ReminderApp", got.AppName)
	assert.Equal(t, 10*time.Second, got.Timeout)
	assert.Equal(t, fixedNow, got.FiredAt)
	assert.Equal(t, model.NotifyDaily, got.Kind)
	assert.True(t, n.Delivered())

	require.Len(t, history.recorded, 1)
	assert.Same(t, n, history.recorded[0])

	assert.Equal(t, `"Drink water"`, a.LastAnnounced())
}

func TestAnnouncerCustomAppNameAndTimeout(t *testing.T) {
	notifier := &fakeNotifier{}
	a := NewAnnouncer(AnnouncerOptions{Notifier: notifier, AppName: "Other", Timeout: 3 * time.Second})

	a.Notify(context.Background(), model.TitleSpecific, "Dentist")

	require.Len(t, notifier.delivered, 1)
	assert.Equal(t, "Other", notifier.delivered[0].AppName)
	assert.Equal(t, 3*time.Second, notifier.delivered[0].Timeout)
	assert.Equal(t, model.NotifySpecific, notifier.delivered[0].Kind)
}

func TestAnnouncerDeliveryFailureIsRecorded(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("no notification server")}
	history := &fakeHistory{}
	a := newTestAnnouncer(notifier, history)

	n := a.Announce(context.Background(), model.TitleDaily, "Stretch")

	assert.False(t, n.Delivered())
	assert.Equal(t, "no notification server", n.Error)
	require.Len(t, history.recorded, 1)
	assert.Equal(t, `"Stretch"`, a.LastAnnounced())
}

func TestAnnouncerHistoryFailureDoesNotPanic(t *testing.T) {
	notifier := &fakeNotifier{}
	a := newTestAnnouncer(notifier, &fakeHistory{err: errors.New("busy")})

	assert.NotPanics(t, func() {
		a.Notify(context.Background(), model.TitleDaily, "x")
	})
	assert.Len(t, notifier.delivered, 1)
}

func TestAnnouncerOnAnnounce(t *testing.T) {
	var seen []string
	a := NewAnnouncer(AnnouncerOptions{
		Notifier:   &fakeNotifier{},
		OnAnnounce: func(n *model.Notification) { seen = append(seen, n.Display()) },
	})

	a.Notify(context.Background(), model.TitleDaily, "one")
	a.Notify(context.Background(), model.TitleDaily, `say "hi"`)

	assert.Equal(t, []string{`"one"`, `"say \"hi\""`}, seen)
	assert.Equal(t, `"say \"hi\""`, a.LastAnnounced())
}

func TestAnnouncerLastReturnsCopy(t *testing.T) {
	a := newTestAnnouncer(&fakeNotifier{}, nil)
	a.Notify(context.Background(), model.TitleDaily, "original")

	last := a.Last()
	require.NotNil(t, last)
	last.Message = "changed"
	assert.Equal(t, "original", a.Last().Message)
}

// blockingNotifier holds Deliver until release is closed, ignoring ctx.
type blockingNotifier struct {
	release chan struct{}
}

func (b *blockingNotifier) Name() string { return "blocking" }

func (b *blockingNotifier) Deliver(context.Context, *model.Notification) error {
	<-b.release
	return nil
}

func TestAnnouncerDeliveryTimeout(t *testing.T) {
	ns := &NotifySend{
		Path: "notify-send",
		run: func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
			select {
			case <-time.After(3 * time.Second):
				return nil, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	a := NewAnnouncer(AnnouncerOptions{Notifier: ns, DeliverTimeout: 50 * time.Millisecond})

	start := time.Now()
	n := a.Announce(context.Background(), model.TitleDaily, "Stretch")
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, n.Delivered())
	assert.Equal(t, n.Error, a.Last().Error)
}

func TestAnnouncerAbandonsNotifierIgnoringContext(t *testing.T) {
	bn := &blockingNotifier{release: make(chan struct{})}
	defer close(bn.release)
	h := &fakeHistory{}
	a := NewAnnouncer(AnnouncerOptions{Notifier: bn, History: h, DeliverTimeout: 50 * time.Millisecond})

	start := time.Now()
	n := a.Announce(context.Background(), model.TitleDaily, "Stretch")
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, n.Error, "timed out")
	require.Len(t, h.recorded, 1)
}

func TestAnnouncerDefaultDeliverTimeout(t *testing.T) {
	a := NewAnnouncer(AnnouncerOptions{})
	assert.Equal(t, DefaultDeliverTimeout, a.deliverTO)
}

func TestSinkFunc(t *testing.T) {
	var got string
	var sink Sink = SinkFunc(func(_ context.Context, title, message string) {
		got = title + ": " + message
	})
	sink.Notify(context.Background(), "T", "M")
	assert.Equal(t, "T: M", got)
}

// =============================================================================
// Desktop Notifier Tests
// =============================================================================

func TestNotifySendArgs(t *testing.T) {
	n := model.NewNotification(model.TitleDaily, "-dash first")
	assert.Equal(t,
		[]string{"-a", "ReminderApp", "-t", "10000", "--", "Daily Reminder", "-dash first"},
		notifySendArgs(n))

	n.Timeout = 0
	assert.Equal(t,
		[]string{"-a", "ReminderApp", "--", "Daily Reminder", "-dash first"},
		notifySendArgs(n))
}

func TestNotifySendDeliver(t *testing.T) {
	var gotName string
	var gotArgs []string
	ns := &NotifySend{
		Path: "/usr/bin/notify-send",
		run: func(_ context.Context, name string, args ...string) ([]byte, error) {
			gotName, gotArgs = name, args
			return nil, nil
		},
	}

	require.NoError(t, ns.Deliver(context.Background(), model.NewNotification(model.TitleSpecific, "Call mom")))
	assert.Equal(t, "/usr/bin/notify-send", gotName)
	assert.Contains(t, gotArgs, "Call mom")
	assert.Equal(t, config.BackendNotifySend, ns.Name())
}

func TestNotifySendDeliverError(t *testing.T) {
	ns := &NotifySend{
		Path: "notify-send",
		run: func(context.Context, string, ...string) ([]byte, error) {
			return []byte("Could not connect: No such file\n"), fmt.Errorf("exit status 1")
		},
	}

	err := ns.Deliver(context.Background(), model.NewNotification(model.TitleDaily, "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not connect")
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestNewDesktop(t *testing.T) {
	n, err := NewDesktop(config.BackendNone)
	require.NoError(t, err)
	assert.Equal(t, config.BackendNone, n.Name())

	n, err = NewDesktop("BEEEP")
	require.NoError(t, err)
	assert.Equal(t, config.BackendBeeep, n.Name())

	n, err = NewDesktop(config.BackendAuto)
	require.NoError(t, err)
	assert.Contains(t, []string{config.BackendNotifySend, config.BackendBeeep}, n.Name())

	_, err = NewDesktop("carrier-pigeon")
	assert.Error(t, err)
}

func TestNoneDeliver(t *testing.T) {
	assert.NoError(t, None{}.Deliver(context.Background(), model.NewNotification("t", "m")))
}
