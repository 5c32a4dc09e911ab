package postgre

import (
	"fmt"

	"parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/pkg/log"
	"parent-care-assistant/pkg/postgres"
)

type implRepository struct {
	db postgres.DB
	l  log.Logger
}

// New creates a PostgreSQL-backed Repository for the extraction domain.
func New(db postgres.DB, l log.Logger) repository.Repository {
	if db == nil {
		panic("extraction/repository/postgre: db is required")
	}
	return &implRepository{db: db, l: l}
}

// dsn is a helper to return a method-scoped context string for logging.
func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("extraction/repository/postgre.%s", method)
}
