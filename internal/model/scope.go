package model

// Scope identifies the caller a request acts on behalf of.
type Scope struct {
	UserID string
}

// IsAnonymous reports whether no user was resolved for the request.
func (s Scope) IsAnonymous() bool {
	return s.UserID == ""
}
