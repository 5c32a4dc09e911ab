package postgre

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"parent-care-assistant/internal/model"
	repo "parent-care-assistant/internal/notification/repository"
)

func (r *implRepository) ListParents(ctx context.Context) ([]model.Parent, error) {
	const query = `
		SELECT id::text, user_id, name, relationship, min_contact_interval_days, created_at
		FROM parents
		ORDER BY created_at`

	return collect(ctx, r, "ListParents", query, nil, func(row pgx.Rows) (model.Parent, error) {
		var p model.Parent
		err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Relationship, &p.MinContactIntervalDays, &p.CreatedAt)
		return p, err
	})
}

func (r *implRepository) ListSettings(ctx context.Context) ([]model.NotificationSettings, error) {
	const query = `
		SELECT user_id, notification_action_due, notification_call_incomplete, notification_periodic
		FROM user_settings`

	return collect(ctx, r, "ListSettings", query, nil, func(row pgx.Rows) (model.NotificationSettings, error) {
		var s model.NotificationSettings
		err := row.Scan(&s.UserID, &s.ActionDue, &s.CallIncomplete, &s.Periodic)
		return s, err
	})
}

func (r *implRepository) ListDueActions(ctx context.Context, opt repo.ListDueActionsOptions) ([]model.Action, error) {
	const query = `
		SELECT id::text, coalesce(conversation_id::text, ''), parent_id::text, type, topic, reason,
			due_date::text, confidence, completed, completed_at, created_at
		FROM actions
		WHERE NOT completed AND due_date <= to_date($1, 'YYYY-MM-DD')
		ORDER BY due_date, created_at`

	return collect(ctx, r, "ListDueActions", query, []any{opt.Today}, func(row pgx.Rows) (model.Action, error) {
		var a model.Action
		err := row.Scan(&a.ID, &a.ConversationID, &a.ParentID, &a.Type, &a.Topic, &a.Reason,
			&a.DueDate, &a.Confidence, &a.Completed, &a.CompletedAt, &a.CreatedAt)
		return a, err
	})
}

func (r *implRepository) ListOpenConversations(ctx context.Context, opt repo.ListOpenConversationsOptions) ([]model.Conversation, error) {
	const query = `
		SELECT c.id::text, c.parent_id::text, p.user_id, c.started_at
		FROM conversations c
		JOIN parents p ON p.id = c.parent_id
		WHERE c.ended_at IS NULL AND c.started_at < $1
		ORDER BY c.started_at`

	return collect(ctx, r, "ListOpenConversations", query, []any{opt.StartedBefore}, func(row pgx.Rows) (model.Conversation, error) {
		var c model.Conversation
		err := row.Scan(&c.ID, &c.ParentID, &c.UserID, &c.StartedAt)
		return c, err
	})
}

func (r *implRepository) LastContacts(ctx context.Context) (map[string]time.Time, error) {
	const query = `
		SELECT parent_id::text, max(ended_at)
		FROM conversations
		WHERE ended_at IS NOT NULL
		GROUP BY parent_id`

	type lastContact struct {
		parentID string
		endedAt  time.Time
	}
	rows, err := collect(ctx, r, "LastContacts", query, nil, func(row pgx.Rows) (lastContact, error) {
		var lc lastContact
		err := row.Scan(&lc.parentID, &lc.endedAt)
		return lc, err
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(rows))
	for _, lc := range rows {
		out[lc.parentID] = lc.endedAt
	}
	return out, nil
}

// collect runs a query and scans every row with scan. Failures are logged and
// reported as ErrFailedToList.
func collect[T any](ctx context.Context, r *implRepository, method, query string, args []any, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn(method), err)
		return nil, repo.ErrFailedToList
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			r.l.Errorf(ctx, "%s scan: %v", r.dsn(method), err)
			return nil, repo.ErrFailedToList
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		r.l.Errorf(ctx, "%s rows: %v", r.dsn(method), err)
		return nil, repo.ErrFailedToList
	}
	return out, nil
}
