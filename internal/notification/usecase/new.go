package usecase

import (
	"time"

	"parent-care-assistant/internal/notification"
	"parent-care-assistant/internal/notification/repository"
	"parent-care-assistant/pkg/broker"
	"parent-care-assistant/pkg/log"
)

// implUseCase is the private implementation of notification.UseCase.
type implUseCase struct {
	l         log.Logger
	repo      repository.Repository
	publisher broker.Publisher
	loc       *time.Location
}

// New creates a new notification UseCase. loc decides what "today" means for
// due dates; nil means UTC.
func New(l log.Logger, repo repository.Repository, publisher broker.Publisher, loc *time.Location) (notification.UseCase, error) {
	if repo == nil {
		return nil, notification.ErrRepositoryRequired
	}
	if l == nil {
		l = log.NewNop()
	}
	if publisher == nil {
		publisher = broker.Nop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &implUseCase{l: l, repo: repo, publisher: publisher, loc: loc}, nil
}
