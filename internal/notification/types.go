package notification

import (
	"time"

	"parent-care-assistant/internal/model"
)

// SweepOutput counts what one sweep queued.
type SweepOutput struct {
	Inserted       int
	ActionDue      int
	CallIncomplete int
	Periodic       int
	Skipped        int // deduplicated or disabled by settings
}

// NotificationCreatedEvent is published for every queued reminder.
type NotificationCreatedEvent struct {
	NotificationID string                 `json:"notification_id"`
	UserID         string                 `json:"user_id"`
	ParentID       string                 `json:"parent_id,omitempty"`
	ActionID       string                 `json:"action_id,omitempty"`
	Type           model.NotificationType `json:"type"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	ScheduledFor   time.Time              `json:"scheduled_for"`
}
