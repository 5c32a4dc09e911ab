package notification

import (
	"context"
	"time"
)

// UseCase defines the business logic interface for the notification domain.
type UseCase interface {
	// Sweep scans for due actions, unfinished calls and parents who have not
	// been contacted in a while, and queues one reminder per finding.
	Sweep(ctx context.Context, now time.Time) (SweepOutput, error)
}
