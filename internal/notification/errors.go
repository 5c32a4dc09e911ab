package notification

import "errors"

var (
	ErrRepositoryRequired = errors.New("notification repository is required")
	ErrSweepFailed        = errors.New("notification sweep failed")
)
