package http

import (
	"errors"
	"strings"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/internal/model"
	"parent-care-assistant/pkg/response"
)

// --- Request DTOs ---

type extractReq struct {
	ConversationID   string `json:"conversation_id"`
	ConversationText string `json:"conversation_text"`
	AudioURL         string `json:"audio_url"`
	ParentName       string `json:"parent_name" binding:"max=50"`
}

func (r extractReq) validate() error {
	if r.ConversationID == "" && strings.TrimSpace(r.ConversationText) == "" && r.AudioURL == "" {
		return errEmptyTranscript
	}
	return nil
}

func (r extractReq) toInput() extraction.ExtractInput {
	return extraction.ExtractInput{
		ConversationID: r.ConversationID,
		Transcript:     r.ConversationText,
		AudioURL:       r.AudioURL,
		ParentName:     r.ParentName,
	}
}

// ---

type scheduleReq struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Topic      string  `json:"topic"`
	DueDate    string  `json:"dueDate"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	Selected   bool    `json:"selected"`
}

type confirmReq struct {
	ConversationID string        `json:"-"` // populated from URI param
	ParentID       string        `json:"parent_id"`
	Schedules      []scheduleReq `json:"schedules" binding:"required"`
}

func (r confirmReq) validate() error {
	if r.ConversationID == "" {
		return errors.New("conversation id is required")
	}
	return nil
}

func (r confirmReq) toInput() extraction.ConfirmInput {
	schedules := make([]extraction.ExtractedSchedule, len(r.Schedules))
	for i, s := range r.Schedules {
		schedules[i] = extraction.ExtractedSchedule{
			ID:         s.ID,
			Type:       extraction.ScheduleType(s.Type),
			Topic:      s.Topic,
			DueDate:    s.DueDate,
			Reason:     s.Reason,
			Confidence: s.Confidence,
			Selected:   s.Selected,
		}
	}
	return extraction.ConfirmInput{
		ConversationID: r.ConversationID,
		ParentID:       r.ParentID,
		Schedules:      schedules,
	}
}

// ---

type listActionsReq struct {
	ParentID         string `json:"-"`
	IncludeCompleted bool   `form:"include_completed"`
}

func (r listActionsReq) validate() error {
	if r.ParentID == "" {
		return errors.New("parent id is required")
	}
	return nil
}

func (r listActionsReq) toInput() extraction.ListActionsInput {
	return extraction.ListActionsInput{
		ParentID:         r.ParentID,
		IncludeCompleted: r.IncludeCompleted,
	}
}

// --- Response DTOs ---

type scheduleResp struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Topic      string  `json:"topic"`
	DueDate    string  `json:"dueDate"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	Selected   bool    `json:"selected"`
}

type extractResp struct {
	ConversationID string         `json:"conversation_id,omitempty"`
	ParentID       string         `json:"parent_id,omitempty"`
	Summary        string         `json:"summary"`
	Keywords       []string       `json:"keywords"`
	Mood           string         `json:"mood"`
	Schedules      []scheduleResp `json:"schedules"`
	Source         string         `json:"source"`
}

func (h *handler) newExtractResp(out extraction.ExtractOutput) extractResp {
	schedules := make([]scheduleResp, len(out.Result.Schedules))
	for i, s := range out.Result.Schedules {
		schedules[i] = scheduleResp{
			ID:         s.ID,
			Type:       string(s.Type),
			Topic:      s.Topic,
			DueDate:    s.DueDate,
			Reason:     s.Reason,
			Confidence: s.Confidence,
			Selected:   s.Selected,
		}
	}
	keywords := out.Result.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return extractResp{
		ConversationID: out.ConversationID,
		ParentID:       out.ParentID,
		Summary:        out.Result.Summary,
		Keywords:       keywords,
		Mood:           string(out.Result.Mood),
		Schedules:      schedules,
		Source:         string(out.Result.Source),
	}
}

type actionResp struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id,omitempty"`
	ParentID       string             `json:"parent_id"`
	Type           string             `json:"type"`
	Topic          string             `json:"topic"`
	Reason         string             `json:"reason"`
	DueDate        string             `json:"due_date"`
	Confidence     float64            `json:"confidence"`
	Completed      bool               `json:"completed"`
	CompletedAt    *response.DateTime `json:"completed_at,omitempty"`
	CreatedAt      response.DateTime  `json:"created_at"`
}

func newActionResp(a model.Action) actionResp {
	var completedAt *response.DateTime
	if a.CompletedAt != nil {
		t := response.DateTime(*a.CompletedAt)
		completedAt = &t
	}
	return actionResp{
		ID:             a.ID,
		ConversationID: a.ConversationID,
		ParentID:       a.ParentID,
		Type:           a.Type,
		Topic:          a.Topic,
		Reason:         a.Reason,
		DueDate:        a.DueDate,
		Confidence:     a.Confidence,
		Completed:      a.Completed,
		CompletedAt:    completedAt,
		CreatedAt:      response.DateTime(a.CreatedAt),
	}
}

func newActionResps(actions []model.Action) []actionResp {
	out := make([]actionResp, len(actions))
	for i, a := range actions {
		out[i] = newActionResp(a)
	}
	return out
}

type actionsResp struct {
	Actions []actionResp `json:"actions"`
}

func (h *handler) newActionsResp(actions []model.Action) actionsResp {
	return actionsResp{Actions: newActionResps(actions)}
}

type actionDetailResp struct {
	Action actionResp `json:"action"`
}

type calendarSyncResp struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
