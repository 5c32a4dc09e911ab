package postgre

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"parent-care-assistant/internal/model"
	repo "parent-care-assistant/internal/notification/repository"
)

func (r *implRepository) ListRecent(ctx context.Context, opt repo.ListRecentOptions) ([]model.Notification, error) {
	const query = `
		SELECT id::text, user_id, coalesce(parent_id::text, ''), coalesce(action_id::text, ''), type,
			title, message, scheduled_for, sent_at, created_at
		FROM notifications
		WHERE created_at >= $1`

	return collect(ctx, r, "ListRecent", query, []any{opt.Since}, func(row pgx.Rows) (model.Notification, error) {
		var n model.Notification
		err := row.Scan(&n.ID, &n.UserID, &n.ParentID, &n.ActionID, &n.Type,
			&n.Title, &n.Message, &n.ScheduledFor, &n.SentAt, &n.CreatedAt)
		return n, err
	})
}

// CreateNotifications inserts all rows in one transaction.
func (r *implRepository) CreateNotifications(ctx context.Context, opts []repo.CreateNotificationOptions) ([]model.Notification, error) {
	if len(opts) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.l.Errorf(ctx, "%s begin: %v", r.dsn("CreateNotifications"), err)
		return nil, repo.ErrFailedToInsert
	}
	defer tx.Rollback(ctx)

	const query = `
		INSERT INTO notifications (id, user_id, parent_id, action_id, type, title, message, scheduled_for)
		VALUES ($1, $2, NULLIF($3, '')::uuid, NULLIF($4, '')::uuid, $5, $6, $7, $8)
		RETURNING created_at`

	out := make([]model.Notification, 0, len(opts))
	for _, opt := range opts {
		n := model.Notification{
			ID:           uuid.NewString(),
			UserID:       opt.UserID,
			ParentID:     opt.ParentID,
			ActionID:     opt.ActionID,
			Type:         opt.Type,
			Title:        opt.Title,
			Message:      opt.Message,
			ScheduledFor: opt.ScheduledFor,
		}
		err := tx.QueryRow(ctx, query,
			n.ID, n.UserID, n.ParentID, n.ActionID, string(n.Type), n.Title, n.Message, n.ScheduledFor,
		).Scan(&n.CreatedAt)
		if err != nil {
			r.l.Errorf(ctx, "%s: %v", r.dsn("CreateNotifications"), err)
			return nil, repo.ErrFailedToInsert
		}
		out = append(out, n)
	}

	if err := tx.Commit(ctx); err != nil {
		r.l.Errorf(ctx, "%s commit: %v", r.dsn("CreateNotifications"), err)
		return nil, repo.ErrFailedToInsert
	}
	return out, nil
}
