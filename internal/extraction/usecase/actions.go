package usecase

import (
	"context"

	"github.com/google/uuid"

	"parent-care-assistant/internal/extraction"
	repo "parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/model"
)

// ListActions returns a parent's actions ordered by due date.
func (uc *implUseCase) ListActions(ctx context.Context, sc model.Scope, input extraction.ListActionsInput) (extraction.ListActionsOutput, error) {
	if uc.repo == nil {
		return extraction.ListActionsOutput{}, extraction.ErrStorageUnavailable
	}
	if _, err := uuid.Parse(input.ParentID); err != nil {
		return extraction.ListActionsOutput{}, extraction.ErrParentNotFound
	}

	parent, err := uc.repo.GetParent(ctx, repo.GetParentOptions{ID: input.ParentID, UserID: sc.UserID})
	if err != nil {
		uc.l.Errorf(ctx, "uc.ListActions GetParent: %v", err)
		return extraction.ListActionsOutput{}, err
	}
	if parent.ID == "" {
		return extraction.ListActionsOutput{}, extraction.ErrParentNotFound
	}

	actions, err := uc.repo.ListActions(ctx, repo.ListActionsOptions{
		ParentID:         parent.ID,
		UserID:           sc.UserID,
		IncludeCompleted: input.IncludeCompleted,
	})
	if err != nil {
		uc.l.Errorf(ctx, "uc.ListActions ListActions: %v", err)
		return extraction.ListActionsOutput{}, err
	}
	return extraction.ListActionsOutput{Actions: actions}, nil
}

// CompleteAction marks an action done and stamps the completion time.
func (uc *implUseCase) CompleteAction(ctx context.Context, sc model.Scope, actionID string) (model.Action, error) {
	if uc.repo == nil {
		return model.Action{}, extraction.ErrStorageUnavailable
	}
	if _, err := uuid.Parse(actionID); err != nil {
		return model.Action{}, extraction.ErrActionNotFound
	}

	action, err := uc.repo.CompleteAction(ctx, repo.CompleteActionOptions{
		ID:          actionID,
		UserID:      sc.UserID,
		CompletedAt: uc.clock(),
	})
	if err != nil {
		uc.l.Errorf(ctx, "uc.CompleteAction: %v", err)
		return model.Action{}, err
	}
	if action.ID == "" {
		return model.Action{}, extraction.ErrActionNotFound
	}
	return action, nil
}
