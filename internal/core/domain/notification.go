package domain

import "time"

// NotificationKind drives the colour and icon of a toast.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
)

// DefaultNotificationDuration applies when the caller leaves Duration unset.
const DefaultNotificationDuration = 5 * time.Second

// NotificationAction is an optional button rendered inside a toast.
type NotificationAction struct {
	Label   string
	OnClick func()
}

// NotificationInput is what callers hand to AddNotification.
// A nil Duration means DefaultNotificationDuration; a zero Duration keeps the
// notification until it is removed explicitly.
type NotificationInput struct {
	Kind     NotificationKind
	Title    string
	Message  string
	Duration *time.Duration
	Action   *NotificationAction
}

// Notification is a queued toast.
type Notification struct {
	ID        string
	Kind      NotificationKind
	Title     string
	Message   string
	Duration  time.Duration
	Action    *NotificationAction
	CreatedAt time.Time
}

// Sticky reports whether the notification never expires on its own.
func (n Notification) Sticky() bool { return n.Duration == 0 }

// Duration is a helper for filling NotificationInput.Duration.
func Duration(d time.Duration) *time.Duration { return &d }
