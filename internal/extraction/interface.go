package extraction

import (
	"context"
	"time"

	"parent-care-assistant/internal/model"
	"parent-care-assistant/pkg/gcalendar"
)

// UseCase defines the business logic interface for the extraction domain.
type UseCase interface {
	// Extract resolves the transcript for input and runs the pipeline. It only fails on
	// caller errors (empty transcript, unknown conversation); model failures fall back to rules.
	Extract(ctx context.Context, sc model.Scope, input ExtractInput) (ExtractOutput, error)

	// ExtractSchedulesFromConversation is the pure pipeline over a non-empty transcript.
	ExtractSchedulesFromConversation(ctx context.Context, transcript, parentName string) ExtractionResult

	// Confirm persists the selected schedules as actions.
	Confirm(ctx context.Context, sc model.Scope, input ConfirmInput) (ConfirmOutput, error)

	ListActions(ctx context.Context, sc model.Scope, input ListActionsInput) (ListActionsOutput, error)
	CompleteAction(ctx context.Context, sc model.Scope, actionID string) (model.Action, error)

	// ExportICS renders a parent's open actions as an iCalendar document.
	ExportICS(ctx context.Context, sc model.Scope, parentID string) (ExportICSOutput, error)

	// PushToGoogleCalendar creates all-day events for confirmed actions.
	PushToGoogleCalendar(ctx context.Context, actions []model.Action) (CalendarPushOutput, error)
}

// ModelExtractor turns a transcript into a draft using a language model.
type ModelExtractor interface {
	Extract(ctx context.Context, transcript, parentName string, today time.Time) (Draft, error)
}

// RuleClassifier is the deterministic fallback.
type RuleClassifier interface {
	Classify(transcript, parentLabel string, today time.Time) Draft
}

// Transcriber turns an audio URL into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// CalendarClient is the Google Calendar surface used for pushing actions.
type CalendarClient interface {
	CreateAllDayEvent(ctx context.Context, req gcalendar.AllDayEventRequest) (*gcalendar.Event, error)
	ListEvents(ctx context.Context, req gcalendar.ListEventsRequest) ([]gcalendar.Event, error)
}
