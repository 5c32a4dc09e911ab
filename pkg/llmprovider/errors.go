package llmprovider

import (
	"errors"
	"fmt"
)

// Errors returned by Manager. The extraction adapter maps all of them to an
// upstream failure, after which the keyword rules answer instead.
var (
	ErrAllProvidersFailed    = errors.New("all providers failed")
	ErrNoProvidersConfigured = errors.New("no providers configured")
	// ErrEmptyResponse is a reply with no text; it counts as a failed attempt.
	ErrEmptyResponse = errors.New("empty response")
)

// ProviderError names the provider whose attempt failed last, so fallback
// logs show which backend to look at.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
