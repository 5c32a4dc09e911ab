package model

import "time"

// DefaultMinContactIntervalDays applies when a parent has no explicit contact interval.
const DefaultMinContactIntervalDays = 14

// Parent is an elderly parent cared for by a user.
type Parent struct {
	ID                     string
	UserID                 string
	Name                   string
	Relationship           string // e.g. "어머니", "아버지"
	MinContactIntervalDays int
	CreatedAt              time.Time
}

// ContactInterval returns the configured interval or the default when unset.
func (p Parent) ContactInterval() int {
	if p.MinContactIntervalDays <= 0 {
		return DefaultMinContactIntervalDays
	}
	return p.MinContactIntervalDays
}
