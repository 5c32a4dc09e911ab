package model

import "time"

// Action is a confirmed follow-up task derived from a conversation.
type Action struct {
	ID             string
	ConversationID string
	ParentID       string
	Type           string
	Topic          string
	Reason         string
	DueDate        string // YYYY-MM-DD
	Confidence     float64
	Completed      bool
	CompletedAt    *time.Time
	CreatedAt      time.Time
}
