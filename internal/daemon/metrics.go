package daemon

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/scheduler"
)

// Metrics tracks what the running daemon has done.
type Metrics struct {
	// Counters
	notificationsSent   atomic.Int64
	notificationsFailed atomic.Int64
	ticks               atomic.Int64
	reloads             atomic.Int64
	errorsTotal         atomic.Int64

	mu                 sync.RWMutex
	lastNotificationAt time.Time
	lastAnnounced      string
	lastTickAt         time.Time
	nextFireAt         time.Time
	lastError          string
	lastErrorAt        time.Time
	errorsByCategory   map[string]int64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		errorsByCategory: make(map[string]int64),
	}
}

// MetricsSnapshot represents a point-in-time view of metrics.
type MetricsSnapshot struct {
	NotificationsSentTotal   int64            `json:"notifications_sent_total"`
	NotificationsFailedTotal int64            `json:"notifications_failed_total"`
	TicksTotal               int64            `json:"ticks_total"`
	ReloadsTotal             int64            `json:"reloads_total"`
	ErrorsTotal              int64            `json:"errors_total"`
	LastNotificationAt       *time.Time       `json:"last_notification_at,omitempty"`
	LastAnnounced            string           `json:"last_announced,omitempty"`
	LastTickAt               *time.Time       `json:"last_tick_at,omitempty"`
	NextFireAt               *time.Time       `json:"next_fire_at,omitempty"`
	LastError                string           `json:"last_error,omitempty"`
	LastErrorAt              *time.Time       `json:"last_error_at,omitempty"`
	ErrorsByCategory         map[string]int64 `json:"errors_by_category,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Snapshot returns a copy of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		NotificationsSentTotal:   m.notificationsSent.Load(),
		NotificationsFailedTotal: m.notificationsFailed.Load(),
		TicksTotal:               m.ticks.Load(),
		ReloadsTotal:             m.reloads.Load(),
		ErrorsTotal:              m.errorsTotal.Load(),
		LastNotificationAt:       timePtr(m.lastNotificationAt),
		LastAnnounced:            m.lastAnnounced,
		LastTickAt:               timePtr(m.lastTickAt),
		NextFireAt:               timePtr(m.nextFireAt),
		LastError:                m.lastError,
		LastErrorAt:              timePtr(m.lastErrorAt),
	}
	if len(m.errorsByCategory) > 0 {
		snap.ErrorsByCategory = make(map[string]int64, len(m.errorsByCategory))
		for k, v := range m.errorsByCategory {
			snap.ErrorsByCategory[k] = v
		}
	}
	return snap
}

// JSON returns metrics as JSON.
func (m *Metrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m.Snapshot(), "", "  ")
}

// RecordAnnouncement records a notification handed to the desktop.
func (m *Metrics) RecordAnnouncement(n *model.Notification) {
	if !n.Delivered() {
		m.notificationsFailed.Add(1)
		m.recordError("notification", n.Error, n.FiredAt)
	} else {
		m.notificationsSent.Add(1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastNotificationAt = n.FiredAt
	m.lastAnnounced = n.Display()
	if n.Kind == model.NotifyDaily {
		m.nextFireAt = time.Time{}
	}
}

// RecordTick records one daily scheduler decision.
func (m *Metrics) RecordTick(r scheduler.TickResult) {
	m.ticks.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTickAt = time.Now()
	if r.Scheduled {
		m.nextFireAt = r.FireAt
	}
}

// RecordReload records a reload of the reminder file.
func (m *Metrics) RecordReload(err error) {
	m.reloads.Add(1)
	if err != nil {
		m.RecordError("reload", err)
	}
}

// RecordError records an error with category.
func (m *Metrics) RecordError(category string, err error) {
	m.recordError(category, err.Error(), time.Now())
}

func (m *Metrics) recordError(category, msg string, at time.Time) {
	m.errorsTotal.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = msg
	m.lastErrorAt = at
	if category != "" {
		m.errorsByCategory[category]++
	}
}

// NotificationsSent returns the total notifications delivered.
func (m *Metrics) NotificationsSent() int64 {
	return m.notificationsSent.Load()
}

// NotificationsFailed returns the total notifications the desktop rejected.
func (m *Metrics) NotificationsFailed() int64 {
	return m.notificationsFailed.Load()
}

// Ticks returns the total scheduler ticks.
func (m *Metrics) Ticks() int64 {
	return m.ticks.Load()
}

// ErrorsTotal returns the total errors.
func (m *Metrics) ErrorsTotal() int64 {
	return m.errorsTotal.Load()
}

// Reset resets all metrics to zero.
func (m *Metrics) Reset() {
	m.notificationsSent.Store(0)
	m.notificationsFailed.Store(0)
	m.ticks.Store(0)
	m.reloads.Store(0)
	m.errorsTotal.Store(0)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastNotificationAt = time.Time{}
	m.lastAnnounced = ""
	m.lastTickAt = time.Time{}
	m.nextFireAt = time.Time{}
	m.lastError = ""
	m.lastErrorAt = time.Time{}
	m.errorsByCategory = make(map[string]int64)
}
