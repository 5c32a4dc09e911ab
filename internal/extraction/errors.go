package extraction

import (
	"errors"
	"fmt"
)

// Model-path errors. The orchestrator recovers from all of them.
var (
	ErrModelUnavailable  = errors.New("model unavailable")
	ErrUpstream          = errors.New("model upstream error")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrValidation        = errors.New("schedule failed validation")
)

// Caller-facing errors.
var (
	ErrEmptyTranscript      = errors.New("transcript is empty")
	ErrInvalidSchedule      = errors.New("invalid schedule")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrParentNotFound       = errors.New("parent not found")
	ErrActionNotFound       = errors.New("action not found")
	ErrNoSchedulesSelected  = errors.New("no schedules selected")
	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrStorageUnavailable   = errors.New("storage is not configured")
	ErrCalendarUnavailable  = errors.New("calendar is not configured")
)

// rawPreviewLimit bounds how much of a bad model reply is kept for logs.
const rawPreviewLimit = 500

// MalformedError carries a truncated copy of the text that could not be parsed.
type MalformedError struct {
	Raw string
	Err error
}

// NewMalformedError truncates raw and wraps cause.
func NewMalformedError(raw string, cause error) *MalformedError {
	r := []rune(raw)
	if len(r) > rawPreviewLimit {
		raw = string(r[:rawPreviewLimit]) + "..."
	}
	return &MalformedError{Raw: raw, Err: cause}
}

func (e *MalformedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %q", ErrMalformedResponse, e.Raw)
	}
	return fmt.Sprintf("%s: %v", ErrMalformedResponse, e.Err)
}

// Is lets errors.Is(err, ErrMalformedResponse) match.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// ValidationError explains why one schedule was dropped.
type ValidationError struct {
	Index int
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schedule %d: invalid %s %q", e.Index, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
