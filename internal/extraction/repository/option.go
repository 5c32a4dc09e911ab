package repository

import "time"

// GetParentOptions filters a single parent. UserID is applied when non-empty.
type GetParentOptions struct {
	ID     string
	UserID string
}

// GetConversationOptions filters a single conversation. UserID is applied when non-empty.
type GetConversationOptions struct {
	ID     string
	UserID string
}

// UpdateAnalysisOptions stores the extraction summary on a conversation.
type UpdateAnalysisOptions struct {
	ID       string
	Summary  string
	Keywords []string
	Mood     string
}

// CreateActionOptions holds one action row to insert.
type CreateActionOptions struct {
	ConversationID string
	ParentID       string
	Type           string
	Topic          string
	Reason         string
	DueDate        string
	Confidence     float64
}

// ListActionsOptions filters actions of one parent, ordered by due date.
type ListActionsOptions struct {
	ParentID         string
	UserID           string
	IncludeCompleted bool
}

// CompleteActionOptions marks an action done.
type CompleteActionOptions struct {
	ID          string
	UserID      string
	CompletedAt time.Time
}
