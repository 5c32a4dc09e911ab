package repository

import (
	"time"

	"parent-care-assistant/internal/model"
)

// ListDueActionsOptions selects open actions due on or before Today (YYYY-MM-DD).
type ListDueActionsOptions struct {
	Today string
}

// ListOpenConversationsOptions selects unfinished calls started before StartedBefore.
type ListOpenConversationsOptions struct {
	StartedBefore time.Time
}

type ListRecentOptions struct {
	Since time.Time
}

type CreateNotificationOptions struct {
	UserID       string
	ParentID     string
	ActionID     string
	Type         model.NotificationType
	Title        string
	Message      string
	ScheduledFor time.Time
}
