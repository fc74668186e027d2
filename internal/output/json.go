package output

import (
	"time"

	"github.com/manav03panchal/remindly/internal/model"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// DailyResponse represents the daily list output in JSON.
type DailyResponse struct {
	Daily []model.DailyReminder `json:"daily_reminders"`
	Count int                   `json:"count"`
}

// SpecificResponse represents the specific list output in JSON.
type SpecificResponse struct {
	Specific []model.SpecificReminder `json:"specific_date_reminders"`
	Count    int                      `json:"count"`
}

// TodayResponse represents the today output in JSON.
type TodayResponse struct {
	Date          string              `json:"date"`
	Specific      *string             `json:"specific"`
	DailyCount    int                 `json:"daily_count"`
	SpecificCount int                 `json:"specific_count"`
	LastAnnounced *NotificationOutput `json:"last_announced,omitempty"`
	DaemonRunning bool                `json:"daemon_running"`
}

// NotificationOutput represents a notification in JSON output.
type NotificationOutput struct {
	Key       string `json:"key"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	FiredAt   string `json:"fired_at"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// NewNotificationOutput creates a NotificationOutput from a Notification.
func NewNotificationOutput(n *model.Notification) *NotificationOutput {
	return &NotificationOutput{
		Key:       n.Key,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		FiredAt:   n.FiredAt.Format(time.RFC3339),
		Delivered: n.Delivered(),
		Error:     n.Error,
	}
}

// HistoryResponse represents the history output in JSON.
type HistoryResponse struct {
	Notifications []*NotificationOutput `json:"notifications"`
	ShownCount    int                   `json:"shown_count"`
	TotalCount    int                   `json:"total_count"`
}

// MutationResponse reports the result of an add, edit or delete.
type MutationResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind"`
	Index  *int   `json:"index,omitempty"`
	Date   string `json:"date,omitempty"`
	Text   string `json:"text,omitempty"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// PrintDaily outputs the daily reminders with 1-based indices.
func (j *JSONFormatter) PrintDaily(reminders []string) error {
	resp := DailyResponse{Daily: make([]model.DailyReminder, len(reminders)), Count: len(reminders)}
	for i, r := range reminders {
		resp.Daily[i] = model.DailyReminder{Index: i + 1, Text: r}
	}
	return j.JSON(resp)
}

// PrintSpecific outputs the specific-date reminders.
func (j *JSONFormatter) PrintSpecific(reminders []model.SpecificReminder) error {
	if reminders == nil {
		reminders = []model.SpecificReminder{}
	}
	return j.JSON(SpecificResponse{Specific: reminders, Count: len(reminders)})
}

// PrintToday outputs today's summary.
func (j *JSONFormatter) PrintToday(v TodayView) error {
	resp := TodayResponse{
		Date:          v.Date.String(),
		DailyCount:    v.DailyCount,
		SpecificCount: v.SpecificCount,
		DaemonRunning: v.DaemonRunning,
	}
	if v.HasSpecific {
		text := v.Specific
		resp.Specific = &text
	}
	if v.LastAnnounced != nil {
		resp.LastAnnounced = NewNotificationOutput(v.LastAnnounced)
	}
	return j.JSON(resp)
}

// PrintHistory outputs announced notifications.
func (j *JSONFormatter) PrintHistory(items []*model.Notification, total int) error {
	resp := HistoryResponse{
		Notifications: make([]*NotificationOutput, len(items)),
		ShownCount:    len(items),
		TotalCount:    total,
	}
	for i, n := range items {
		resp.Notifications[i] = NewNotificationOutput(n)
	}
	return j.JSON(resp)
}

// PrintMutation outputs the result of a change.
func (j *JSONFormatter) PrintMutation(resp MutationResponse) error {
	return j.JSON(resp)
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(errMsg, suggestion string) error {
	return j.JSON(ErrorResponse{
		Status:     "error",
		Error:      errMsg,
		Suggestion: suggestion,
	})
}
