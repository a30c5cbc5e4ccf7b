package model

import "time"

// ActivityLog is one line of the in-memory, newest-first activity feed.
type ActivityLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// NotificationLevel is the display class of an operator notification.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
)

// Notification is an ephemeral, single-consumer message describing the
// outcome of a panel operation. Only the newest one is kept and it
// expires after a fixed display duration.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	EntryID   string            `json:"entryId,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
