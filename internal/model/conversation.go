package model

import "time"

// Conversation is a recorded call with a parent.
type Conversation struct {
	ID         string
	ParentID   string
	UserID     string
	StartedAt  time.Time
	EndedAt    *time.Time
	Transcript string
	Summary    string
	Keywords   []string
	Mood       string
}

// Ended reports whether the call was marked finished.
func (c Conversation) Ended() bool {
	return c.EndedAt != nil
}
