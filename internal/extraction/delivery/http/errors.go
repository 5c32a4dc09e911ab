package http

import (
	"errors"
	"net/http"

	"parent-care-assistant/internal/extraction"
	pkgErrors "parent-care-assistant/pkg/errors"
)

var (
	errEmptyTranscript     = pkgErrors.NewHTTPError(http.StatusBadRequest, "conversation text is empty")
	errInvalidSchedule     = pkgErrors.NewHTTPError(http.StatusBadRequest, "invalid schedule")
	errNoSchedulesSelected = pkgErrors.NewHTTPError(http.StatusBadRequest, "no schedules selected")
	errConversationMissing = pkgErrors.NewHTTPError(http.StatusNotFound, "conversation not found")
	errParentMissing       = pkgErrors.NewHTTPError(http.StatusNotFound, "parent not found")
	errActionMissing       = pkgErrors.NewHTTPError(http.StatusNotFound, "action not found")
	errTranscription       = pkgErrors.NewHTTPError(http.StatusBadGateway, "audio transcription failed")
	errStorageUnavailable  = pkgErrors.NewHTTPError(http.StatusServiceUnavailable, "storage is not configured")
	errCalendarUnavailable = pkgErrors.NewHTTPError(http.StatusServiceUnavailable, "calendar is not configured")
)

// mapError translates domain/use-case errors into HTTP errors from pkg/errors.
func (h *handler) mapError(err error) error {
	switch {
	case errors.Is(err, extraction.ErrEmptyTranscript):
		return errEmptyTranscript
	case errors.Is(err, extraction.ErrInvalidSchedule):
		return pkgErrors.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, extraction.ErrNoSchedulesSelected):
		return errNoSchedulesSelected
	case errors.Is(err, extraction.ErrConversationNotFound):
		return errConversationMissing
	case errors.Is(err, extraction.ErrParentNotFound):
		return errParentMissing
	case errors.Is(err, extraction.ErrActionNotFound):
		return errActionMissing
	case errors.Is(err, extraction.ErrTranscriptionFailed):
		return errTranscription
	case errors.Is(err, extraction.ErrStorageUnavailable):
		return errStorageUnavailable
	case errors.Is(err, extraction.ErrCalendarUnavailable):
		return errCalendarUnavailable
	default:
		return pkgErrors.ErrInternalServerError
	}
}
