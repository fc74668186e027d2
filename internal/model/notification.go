package model

import (
	"fmt"
	"time"
)

// NotificationKind describes what produced a notification.
type NotificationKind string

// Notification kinds.
const (
	NotifyDaily    NotificationKind = "daily"
	NotifySpecific NotificationKind = "specific"
	NotifyTest     NotificationKind = "test"
)

// Notification titles.
const (
	TitleDaily    = "Daily Reminder"
	TitleSpecific = "Specific Reminder"
	TitleTest     = "Test Notification"
)

// TestMessage is the body of a test notification.
const TestMessage = "This is a test notification from Remindly."

// DefaultAppName is the application name shown by the desktop notifier.
const DefaultAppName = "ReminderApp"

// DefaultNotifyTimeout is how long a desktop notification stays visible.
const DefaultNotifyTimeout = 10 * time.Second

// Notification is a single delivered (or attempted) reminder notification.
type Notification struct {
	Key     string           `json:"key"`
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	AppName string           `json:"app_name"`
	Timeout time.Duration    `json:"timeout"`
	FiredAt time.Time        `json:"fired_at"`
	Error   string           `json:"error,omitempty"`
}

// NewNotification creates a notification with the default app name and timeout.
func NewNotification(title, message string) *Notification {
	return &Notification{
		Kind:    KindForTitle(title),
		Title:   title,
		Message: message,
		AppName: DefaultAppName,
		Timeout: DefaultNotifyTimeout,
		FiredAt: time.Now(),
	}
}

// SetKey sets the database key for this notification.
func (n *Notification) SetKey(key string) {
	n.Key = key
}

// GetKey returns the database key for this notification.
func (n *Notification) GetKey() string {
	return n.Key
}

// Delivered reports whether the platform accepted the notification.
func (n *Notification) Delivered() bool {
	return n.Error == ""
}

// Display returns the quoted message shown as the last announced reminder.
func (n *Notification) Display() string {
	return fmt.Sprintf("%q", n.Message)
}

// KindForTitle maps a scheduler title to a notification kind.
func KindForTitle(title string) NotificationKind {
	switch title {
	case TitleDaily:
		return NotifyDaily
	case TitleSpecific:
		return NotifySpecific
	default:
		return NotifyTest
	}
}

// GenerateNotificationKey builds a time-ordered key so prefix scans return
// notifications oldest first.
func GenerateNotificationKey(firedAt time.Time, id string) string {
	return fmt.Sprintf("%s:%020d:%s", PrefixNotification, firedAt.UnixNano(), id)
}
