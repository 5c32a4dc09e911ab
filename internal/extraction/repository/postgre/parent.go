package postgre

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	repo "parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/model"
)

const parentColumns = `id::text, user_id, name, relationship, min_contact_interval_days, created_at`

// GetParent returns the zero value when no row matches.
func (r *implRepository) GetParent(ctx context.Context, opt repo.GetParentOptions) (model.Parent, error) {
	query := `SELECT ` + parentColumns + ` FROM parents WHERE id = $1 AND ($2 = '' OR user_id = $2)`

	var p model.Parent
	err := r.db.QueryRow(ctx, query, opt.ID, opt.UserID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Relationship, &p.MinContactIntervalDays, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Parent{}, nil
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("GetParent"), err)
		return model.Parent{}, repo.ErrFailedToGet
	}
	return p, nil
}
