package repository

import (
	"context"
	"time"

	"parent-care-assistant/internal/model"
)

// Repository is the read/write surface the sweep needs.
type Repository interface {
	ListParents(ctx context.Context) ([]model.Parent, error)
	// ListSettings returns stored settings. Users without a row are absent.
	ListSettings(ctx context.Context) ([]model.NotificationSettings, error)
	ListDueActions(ctx context.Context, opt ListDueActionsOptions) ([]model.Action, error)
	ListOpenConversations(ctx context.Context, opt ListOpenConversationsOptions) ([]model.Conversation, error)
	// LastContacts maps parent id to the end of the most recent finished call.
	LastContacts(ctx context.Context) (map[string]time.Time, error)
	ListRecent(ctx context.Context, opt ListRecentOptions) ([]model.Notification, error)
	CreateNotifications(ctx context.Context, opts []CreateNotificationOptions) ([]model.Notification, error)
}
