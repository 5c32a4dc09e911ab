package repository

import (
	"context"

	"parent-care-assistant/internal/model"
)

// Repository is the composed interface for the extraction domain data store.
type Repository interface {
	ParentRepository
	ConversationRepository
	ActionRepository
}

// ParentRepository reads parent profiles.
type ParentRepository interface {
	GetParent(ctx context.Context, opt GetParentOptions) (model.Parent, error)
}

// ConversationRepository reads conversations and stores their analysis.
type ConversationRepository interface {
	GetConversation(ctx context.Context, opt GetConversationOptions) (model.Conversation, error)
	UpdateAnalysis(ctx context.Context, opt UpdateAnalysisOptions) error
}

// ActionRepository persists confirmed follow-ups.
type ActionRepository interface {
	CreateActions(ctx context.Context, opts []CreateActionOptions) ([]model.Action, error)
	ListActions(ctx context.Context, opt ListActionsOptions) ([]model.Action, error)
	CompleteAction(ctx context.Context, opt CompleteActionOptions) (model.Action, error)
}
