package extraction

import (
	"strconv"
	"strings"
	"time"

	"parent-care-assistant/internal/model"
)

// DefaultParentName is used when the caller does not know how to address the parent.
const DefaultParentName = "부모님"

// MaxKeywords caps ExtractionResult.Keywords.
const MaxKeywords = 5

const dueDateLayout = "2006-01-02"

// ScheduleType is the closed set of follow-up kinds.
type ScheduleType string

const (
	ScheduleHospital        ScheduleType = "hospital"
	ScheduleMeeting         ScheduleType = "meeting"
	ScheduleFollowUp        ScheduleType = "follow_up"
	ScheduleCheckEvent      ScheduleType = "check_event"
	ScheduleSendGift        ScheduleType = "send_gift"
	ScheduleConfirmDelivery ScheduleType = "confirm_delivery"
)

// IsValid reports whether t is one of the six known schedule types.
func (t ScheduleType) IsValid() bool {
	switch t {
	case ScheduleHospital, ScheduleMeeting, ScheduleFollowUp,
		ScheduleCheckEvent, ScheduleSendGift, ScheduleConfirmDelivery:
		return true
	}
	return false
}

// Mood is the emotional tone of a conversation.
type Mood string

const (
	MoodGood      Mood = "good"
	MoodNeutral   Mood = "neutral"
	MoodConcerned Mood = "concerned"
)

func (m Mood) IsValid() bool {
	return m == MoodGood || m == MoodNeutral || m == MoodConcerned
}

// Source records which path produced an ExtractionResult.
type Source string

const (
	SourceModel Source = "model"
	SourceRules Source = "rules"
)

// ExtractedSchedule is one proposed follow-up. DueDate is always YYYY-MM-DD.
type ExtractedSchedule struct {
	ID         string       `json:"id"`
	Type       ScheduleType `json:"type"`
	Topic      string       `json:"topic"`
	DueDate    string       `json:"dueDate"`
	Reason     string       `json:"reason"`
	Confidence float64      `json:"confidence"`
	Selected   bool         `json:"selected"`
}

// Validate re-checks a schedule coming back from a client before it is
// persisted. The returned error wraps ErrValidation.
func (s ExtractedSchedule) Validate() error {
	switch {
	case !s.Type.IsValid():
		return &ValidationError{Field: "type", Value: string(s.Type)}
	case strings.TrimSpace(s.Topic) == "":
		return &ValidationError{Field: "topic", Value: s.Topic}
	case s.Confidence < 0 || s.Confidence > 1:
		return &ValidationError{Field: "confidence", Value: strconv.FormatFloat(s.Confidence, 'f', -1, 64)}
	}
	if _, err := time.Parse(dueDateLayout, s.DueDate); err != nil {
		return &ValidationError{Field: "dueDate", Value: s.DueDate}
	}
	return nil
}

// ExtractionResult is the normalized output of one extraction.
type ExtractionResult struct {
	Summary   string              `json:"summary"`
	Keywords  []string            `json:"keywords"`
	Mood      Mood                `json:"mood"`
	Schedules []ExtractedSchedule `json:"schedules"`
	Source    Source              `json:"source"`
}

// DraftSchedule is a schedule before the orchestrator assigns ids.
type DraftSchedule struct {
	Type       ScheduleType
	Topic      string
	DueDate    string
	Reason     string
	Confidence float64
}

// Draft is what the model adapter and the rule classifier return.
type Draft struct {
	Summary   string
	Keywords  []string
	Mood      Mood
	Schedules []DraftSchedule
}

// --- UseCase Inputs ---

// ExtractInput selects the transcript source. ConversationID wins over Transcript,
// Transcript wins over AudioURL.
type ExtractInput struct {
	ConversationID string
	Transcript     string
	AudioURL       string
	ParentName     string
}

type ConfirmInput struct {
	ConversationID string
	ParentID       string
	Schedules      []ExtractedSchedule
}

type ListActionsInput struct {
	ParentID         string
	IncludeCompleted bool
}

// --- UseCase Outputs ---

type ExtractOutput struct {
	ConversationID string
	ParentID       string
	Result         ExtractionResult
}

type ConfirmOutput struct {
	Actions []model.Action
}

type ListActionsOutput struct {
	Actions []model.Action
}

type ExportICSOutput struct {
	FileName string
	Data     []byte
}

type CalendarPushOutput struct {
	Created int
	Skipped int
	Failed  int
}

// ActionCreatedEvent is published after an action row is inserted.
type ActionCreatedEvent struct {
	ActionID       string    `json:"action_id"`
	ConversationID string    `json:"conversation_id"`
	ParentID       string    `json:"parent_id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Topic          string    `json:"topic"`
	Reason         string    `json:"reason"`
	DueDate        string    `json:"due_date"`
	CreatedAt      time.Time `json:"created_at"`
}
