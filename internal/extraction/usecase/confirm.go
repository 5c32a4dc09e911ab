package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"parent-care-assistant/internal/extraction"
	repo "parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/model"
)

// Confirm persists every selected schedule as a new action. Confirming the same
// schedules twice creates two sets of actions.
func (uc *implUseCase) Confirm(ctx context.Context, sc model.Scope, input extraction.ConfirmInput) (extraction.ConfirmOutput, error) {
	if uc.repo == nil {
		return extraction.ConfirmOutput{}, extraction.ErrStorageUnavailable
	}

	selected := extraction.SelectedSchedules(input.Schedules)
	if len(selected) == 0 {
		return extraction.ConfirmOutput{}, extraction.ErrNoSchedulesSelected
	}
	for i, s := range selected {
		if err := s.Validate(); err != nil {
			var verr *extraction.ValidationError
			if errors.As(err, &verr) {
				verr.Index = i
			}
			return extraction.ConfirmOutput{}, fmt.Errorf("%w: %w", extraction.ErrInvalidSchedule, err)
		}
	}

	parentID, err := uc.resolveParent(ctx, sc, input)
	if err != nil {
		return extraction.ConfirmOutput{}, err
	}

	opts := make([]repo.CreateActionOptions, 0, len(selected))
	for _, s := range selected {
		opts = append(opts, repo.CreateActionOptions{
			ConversationID: input.ConversationID,
			ParentID:       parentID,
			Type:           string(s.Type),
			Topic:          s.Topic,
			Reason:         s.Reason,
			DueDate:        s.DueDate,
			Confidence:     s.Confidence,
		})
	}

	actions, err := uc.repo.CreateActions(ctx, opts)
	if err != nil {
		uc.l.Errorf(ctx, "uc.Confirm CreateActions: %v", err)
		return extraction.ConfirmOutput{}, err
	}

	uc.publishCreated(ctx, sc, actions)
	uc.l.Infof(ctx, "uc.Confirm: created %d actions for parent %s", len(actions), parentID)

	return extraction.ConfirmOutput{Actions: actions}, nil
}

// resolveParent checks the parent belongs to the caller. When only a
// conversation is given the parent comes from it.
func (uc *implUseCase) resolveParent(ctx context.Context, sc model.Scope, input extraction.ConfirmInput) (string, error) {
	parentID := input.ParentID

	if input.ConversationID != "" {
		if _, err := uuid.Parse(input.ConversationID); err != nil {
			return "", extraction.ErrConversationNotFound
		}
		conv, err := uc.repo.GetConversation(ctx, repo.GetConversationOptions{ID: input.ConversationID, UserID: sc.UserID})
		if err != nil {
			uc.l.Errorf(ctx, "uc.Confirm GetConversation: %v", err)
			return "", err
		}
		if conv.ID == "" {
			return "", extraction.ErrConversationNotFound
		}
		if parentID == "" {
			parentID = conv.ParentID
		} else if parentID != conv.ParentID {
			return "", extraction.ErrParentNotFound
		}
	}

	if _, err := uuid.Parse(parentID); err != nil {
		return "", extraction.ErrParentNotFound
	}
	parent, err := uc.repo.GetParent(ctx, repo.GetParentOptions{ID: parentID, UserID: sc.UserID})
	if err != nil {
		uc.l.Errorf(ctx, "uc.Confirm GetParent: %v", err)
		return "", err
	}
	if parent.ID == "" {
		return "", extraction.ErrParentNotFound
	}
	return parent.ID, nil
}

func (uc *implUseCase) publishCreated(ctx context.Context, sc model.Scope, actions []model.Action) {
	for _, a := range actions {
		event := extraction.ActionCreatedEvent{
			ActionID:       a.ID,
			ConversationID: a.ConversationID,
			ParentID:       a.ParentID,
			UserID:         sc.UserID,
			Type:           a.Type,
			Topic:          a.Topic,
			Reason:         a.Reason,
			DueDate:        a.DueDate,
			CreatedAt:      a.CreatedAt,
		}
		if err := uc.publisher.Publish(extraction.SubjectActionCreated, event); err != nil {
			uc.l.Warnf(ctx, "uc.Confirm publish %s: %v", a.ID, err)
		}
	}
}
