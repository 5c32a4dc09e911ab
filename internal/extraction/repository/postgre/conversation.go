package postgre

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	repo "parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/model"
)

// GetConversation returns the zero value when no row matches. The owning user
// comes from the parent row.
func (r *implRepository) GetConversation(ctx context.Context, opt repo.GetConversationOptions) (model.Conversation, error) {
	const query = `
		SELECT c.id::text, c.parent_id::text, p.user_id, c.started_at, c.ended_at,
		       c.transcript, c.summary, c.keywords, c.mood
		FROM conversations c
		JOIN parents p ON p.id = c.parent_id
		WHERE c.id = $1 AND ($2 = '' OR p.user_id = $2)`

	var c model.Conversation
	err := r.db.QueryRow(ctx, query, opt.ID, opt.UserID).Scan(
		&c.ID, &c.ParentID, &c.UserID, &c.StartedAt, &c.EndedAt,
		&c.Transcript, &c.Summary, &c.Keywords, &c.Mood,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Conversation{}, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("GetConversation"), err)
		return model.Conversation{}, repo.ErrFailedToGet
	}
	return c, nil
}

// UpdateAnalysis overwrites summary, keywords and mood.
func (r *implRepository) UpdateAnalysis(ctx context.Context, opt repo.UpdateAnalysisOptions) error {
	const query = `UPDATE conversations SET summary = $1, keywords = $2, mood = $3 WHERE id = $4`

	keywords := opt.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	if _, err := r.db.Exec(ctx, query, opt.Summary, keywords, opt.Mood, opt.ID); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("UpdateAnalysis"), err)
		return repo.ErrFailedToUpdate
	}
	return nil
}
