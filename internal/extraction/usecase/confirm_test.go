package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/internal/model"
)

func selectedSchedules() []extraction.ExtractedSchedule {
	return []extraction.ExtractedSchedule{
		{ID: "schedule-x-0", Type: extraction.ScheduleHospital, Topic: "병원 동행", DueDate: "2024-02-11", Reason: "진료", Confidence: 0.85, Selected: true},
		{ID: "schedule-x-1", Type: extraction.ScheduleSendGift, Topic: "선물", DueDate: "2024-02-07", Confidence: 0.75},
		{ID: "schedule-x-2", Type: extraction.ScheduleFollowUp, Topic: "안부 전화", DueDate: "2024-02-14", Confidence: 0.6, Selected: true},
	}
}

func TestConfirm_CreatesSelectedActions(t *testing.T) {
	r := newMemRepo()
	mom := r.addParent("user-1", "김영희")
	conv := r.addConversation(mom, "엄마: 병원")
	pub := &stubPublisher{}
	uc := newTestUseCase(t, Options{Repo: r, Publisher: pub})

	out, err := uc.Confirm(context.Background(), model.Scope{UserID: "user-1"}, extraction.ConfirmInput{
		ConversationID: conv.ID,
		Schedules:      selectedSchedules(),
	})
	require.NoError(t, err)
	require.Len(t, out.Actions, 2)

	first := out.Actions[0]
	assert.Equal(t, "hospital", first.Type)
	assert.Equal(t, "병원 동행", first.Topic)
	assert.Equal(t, "진료", first.Reason)
	assert.Equal(t, "2024-02-11", first.DueDate)
	assert.Equal(t, 0.85, first.Confidence)
	assert.Equal(t, mom.ID, first.ParentID)
	assert.Equal(t, conv.ID, first.ConversationID)
	assert.False(t, first.Completed)

	require.Len(t, pub.events, 2)
	assert.Equal(t, extraction.SubjectActionCreated, pub.events[0].subject)
	ev, ok := pub.events[0].data.(extraction.ActionCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, first.ID, ev.ActionID)
	assert.Equal(t, "user-1", ev.UserID)
}

// Confirming the same selection twice yields two independent sets of actions.
func TestConfirm_NotIdempotent(t *testing.T) {
	r := newMemRepo()
	mom := r.addParent("user-1", "김영희")
	uc := newTestUseCase(t, Options{Repo: r})
	input := extraction.ConfirmInput{ParentID: mom.ID, Schedules: selectedSchedules()}

	first, err := uc.Confirm(context.Background(), model.Scope{UserID: "user-1"}, input)
	require.NoError(t, err)
	second, err := uc.Confirm(context.Background(), model.Scope{UserID: "user-1"}, input)
	require.NoError(t, err)

	assert.Len(t, r.actions, 4)
	assert.NotEqual(t, first.Actions[0].ID, second.Actions[0].ID)
	assert.Equal(t, first.Actions[0].Topic, second.Actions[0].Topic)
}

func TestConfirm_PublishFailureIsNotFatal(t *testing.T) {
	r := newMemRepo()
	mom := r.addParent("user-1", "김영희")
	uc := newTestUseCase(t, Options{Repo: r, Publisher: &stubPublisher{err: errors.New("nats down")}})

	out, err := uc.Confirm(context.Background(), model.Scope{}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: selectedSchedules()})
	require.NoError(t, err)
	assert.Len(t, out.Actions, 2)
}

func TestConfirm_Errors(t *testing.T) {
	r := newMemRepo()
	mom := r.addParent("user-1", "김영희")
	dad := r.addParent("user-1", "김철수")
	conv := r.addConversation(mom, "엄마: 병원")

	bad := func(mut func(*extraction.ExtractedSchedule)) []extraction.ExtractedSchedule {
		s := selectedSchedules()
		mut(&s[2])
		return s
	}

	tests := []struct {
		name    string
		repo    bool
		sc      model.Scope
		input   extraction.ConfirmInput
		wantErr error
	}{
		{"no storage", false, model.Scope{}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: selectedSchedules()}, extraction.ErrStorageUnavailable},
		{"nothing selected", true, model.Scope{}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: []extraction.ExtractedSchedule{{Type: extraction.ScheduleHospital}}}, extraction.ErrNoSchedulesSelected},
		{"unknown type", true, model.Scope{}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: bad(func(s *extraction.ExtractedSchedule) { s.Type = "birthday" })}, extraction.ErrInvalidSchedule},
		{"relative date", true, model.Scope{}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: bad(func(s *extraction.ExtractedSchedule) { s.DueDate = "다음 주" })}, extraction.ErrInvalidSchedule},
		{"confidence range", true, model.Scope{}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: bad(func(s *extraction.ExtractedSchedule) { s.Confidence = 1.2 })}, extraction.ErrInvalidSchedule},
		{"blank topic", true, model.Scope{}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: bad(func(s *extraction.ExtractedSchedule) { s.Topic = " " })}, extraction.ErrInvalidSchedule},
		{"unknown parent", true, model.Scope{}, extraction.ConfirmInput{ParentID: "5f0c6b8e-0000-4000-8000-000000000000", Schedules: selectedSchedules()}, extraction.ErrParentNotFound},
		{"parent of another user", true, model.Scope{UserID: "user-2"}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: selectedSchedules()}, extraction.ErrParentNotFound},
		{"conversation of another parent", true, model.Scope{}, extraction.ConfirmInput{ConversationID: conv.ID, ParentID: dad.ID, Schedules: selectedSchedules()}, extraction.ErrParentNotFound},
		{"unknown conversation", true, model.Scope{}, extraction.ConfirmInput{ConversationID: "nope", Schedules: selectedSchedules()}, extraction.ErrConversationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := Options{}
			if tt.repo {
				opt.Repo = r
			}
			uc := newTestUseCase(t, opt)

			_, err := uc.Confirm(context.Background(), tt.sc, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, r.actions)
}

func TestConfirm_ValidationErrorCarriesIndex(t *testing.T) {
	r := newMemRepo()
	mom := r.addParent("user-1", "김영희")
	uc := newTestUseCase(t, Options{Repo: r})

	s := selectedSchedules()
	s[2].Type = "birthday"
	_, err := uc.Confirm(context.Background(), model.Scope{}, extraction.ConfirmInput{ParentID: mom.ID, Schedules: s})

	var verr *extraction.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "type", verr.Field)
	assert.ErrorIs(t, err, extraction.ErrValidation)
}
