package postgre

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	repo "parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/model"
)

const actionColumns = `a.id::text, coalesce(a.conversation_id::text, ''), a.parent_id::text, a.type, a.topic,
	a.reason, a.due_date::text, a.confidence, a.completed, a.completed_at, a.created_at`

// CreateActions inserts all rows in one transaction.
func (r *implRepository) CreateActions(ctx context.Context, opts []repo.CreateActionOptions) ([]model.Action, error) {
	if len(opts) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.l.Errorf(ctx, "%s begin: %v", r.dsn("CreateActions"), err)
		return nil, repo.ErrFailedToInsert
	}
	defer tx.Rollback(ctx)

	const query = `
		INSERT INTO actions (id, conversation_id, parent_id, type, topic, reason, due_date, confidence)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, to_date($7, 'YYYY-MM-DD'), $8)
		RETURNING created_at`

	actions := make([]model.Action, 0, len(opts))
	for _, opt := range opts {
		a := model.Action{
			ID:             uuid.NewString(),
			ConversationID: opt.ConversationID,
			ParentID:       opt.ParentID,
			Type:           opt.Type,
			Topic:          opt.Topic,
			Reason:         opt.Reason,
			DueDate:        opt.DueDate,
			Confidence:     opt.Confidence,
		}
		err := tx.QueryRow(ctx, query,
			a.ID, a.ConversationID, a.ParentID, a.Type, a.Topic, a.Reason, a.DueDate, a.Confidence,
		).Scan(&a.CreatedAt)
		if err != nil {
			r.l.Errorf(ctx, "%s: %v", r.dsn("CreateActions"), err)
			return nil, repo.ErrFailedToInsert
		}
		actions = append(actions, a)
	}

	if err := tx.Commit(ctx); err != nil {
		r.l.Errorf(ctx, "%s commit: %v", r.dsn("CreateActions"), err)
		return nil, repo.ErrFailedToInsert
	}
	return actions, nil
}

// ListActions returns a parent's actions by due date.
func (r *implRepository) ListActions(ctx context.Context, opt repo.ListActionsOptions) ([]model.Action, error) {
	query := `
		SELECT ` + actionColumns + `
		FROM actions a
		JOIN parents p ON p.id = a.parent_id
		WHERE a.parent_id = $1 AND ($2 = '' OR p.user_id = $2) AND ($3 OR NOT a.completed)
		ORDER BY a.due_date, a.created_at`

	rows, err := r.db.Query(ctx, query, opt.ParentID, opt.UserID, opt.IncludeCompleted)
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("ListActions"), err)
		return nil, repo.ErrFailedToList
	}
	defer rows.Close()

	var actions []model.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			r.l.Errorf(ctx, "%s scan: %v", r.dsn("ListActions"), err)
			return nil, repo.ErrFailedToList
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		r.l.Errorf(ctx, "%s rows: %v", r.dsn("ListActions"), err)
		return nil, repo.ErrFailedToList
	}
	return actions, nil
}

// CompleteAction sets completed and stamps completed_at. Completing twice keeps
// the first timestamp. Returns the zero value when no row matches.
func (r *implRepository) CompleteAction(ctx context.Context, opt repo.CompleteActionOptions) (model.Action, error) {
	completedAt := opt.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	query := `
		UPDATE actions a
		SET completed = true, completed_at = coalesce(a.completed_at, $1)
		FROM parents p
		WHERE p.id = a.parent_id AND a.id = $2 AND ($3 = '' OR p.user_id = $3)
		RETURNING ` + actionColumns

	a, err := scanAction(r.db.QueryRow(ctx, query, completedAt, opt.ID, opt.UserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Action{}, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("CompleteAction"), err)
		return model.Action{}, repo.ErrFailedToUpdate
	}
	return a, nil
}

func scanAction(row pgx.Row) (model.Action, error) {
	var a model.Action
	err := row.Scan(
		&a.ID, &a.ConversationID, &a.ParentID, &a.Type, &a.Topic,
		&a.Reason, &a.DueDate, &a.Confidence, &a.Completed, &a.CompletedAt, &a.CreatedAt,
	)
	return a, err
}
