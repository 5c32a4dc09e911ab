package postgre

import (
	"fmt"

	"parent-care-assistant/internal/notification/repository"
	"parent-care-assistant/pkg/log"
	"parent-care-assistant/pkg/postgres"
)

type implRepository struct {
	db postgres.DB
	l  log.Logger
}

// New creates a PostgreSQL-backed Repository for the notification domain.
func New(db postgres.DB, l log.Logger) repository.Repository {
	if db == nil {
		panic("notification/repository/postgre: db is required")
	}
	return &implRepository{db: db, l: l}
}

func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("notification/repository/postgre.%s", method)
}
