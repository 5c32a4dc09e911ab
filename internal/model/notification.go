package model

import (
	"fmt"
	"time"
)

// NotificationType enumerates reminder kinds produced by the sweep.
type NotificationType string

const (
	NotificationActionDue      NotificationType = "action_due"
	NotificationCallIncomplete NotificationType = "call_incomplete"
	NotificationPeriodic       NotificationType = "periodic"
)

// Notification is a reminder queued for a user.
type Notification struct {
	ID           string
	UserID       string
	ParentID     string
	ActionID     string
	Type         NotificationType
	Title        string
	Message      string
	ScheduledFor time.Time
	SentAt       *time.Time
	CreatedAt    time.Time
}

// DedupKey identifies a notification for the 24h duplicate window.
func (n Notification) DedupKey() string {
	return fmt.Sprintf("%s:%s:%s:%s", n.UserID, n.ActionID, n.ParentID, n.Type)
}

// NotificationSettings are per-user switches. Missing settings mean everything is on.
type NotificationSettings struct {
	UserID         string
	ActionDue      bool
	CallIncomplete bool
	Periodic       bool
}

// DefaultNotificationSettings returns settings with every reminder enabled.
func DefaultNotificationSettings(userID string) NotificationSettings {
	return NotificationSettings{UserID: userID, ActionDue: true, CallIncomplete: true, Periodic: true}
}

// Allows reports whether the given reminder kind is enabled.
func (s NotificationSettings) Allows(t NotificationType) bool {
	switch t {
	case NotificationActionDue:
		return s.ActionDue
	case NotificationCallIncomplete:
		return s.CallIncomplete
	case NotificationPeriodic:
		return s.Periodic
	}
	return false
}
