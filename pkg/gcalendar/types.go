package gcalendar

import "time"

// DateLayout is the all-day event date format used by the Calendar API.
const DateLayout = "2006-01-02"

// actionIDProperty links an event back to the action it was created for.
const actionIDProperty = "care_action_id"

// AllDayEventRequest is the input for creating an all-day Google Calendar event.
type AllDayEventRequest struct {
	CalendarID  string
	Summary     string
	Description string
	Date        time.Time // only the calendar day is used
	ActionID    string    // stored as a private extended property
}

// Event is a simplified representation of a Google Calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	HtmlLink    string
	Date        string // YYYY-MM-DD for all-day events
	StartTime   time.Time
	ActionID    string
}

// ListEventsRequest is the input for listing Google Calendar events.
type ListEventsRequest struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	MaxResults int64
}
