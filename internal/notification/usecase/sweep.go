package usecase

import (
	"context"
	"fmt"
	"time"

	"parent-care-assistant/internal/model"
	"parent-care-assistant/internal/notification"
	"parent-care-assistant/internal/notification/repository"
)

const fallbackParentName = "부모님"

// sweepState is the data one sweep works from.
type sweepState struct {
	now      time.Time
	parents  map[string]model.Parent
	settings map[string]model.NotificationSettings
	seen     map[string]bool
	pending  []model.Notification
	out      notification.SweepOutput
}

// Sweep queues action_due, call_incomplete and periodic reminders. A reminder
// with the same user, action, parent and type as one created in the last 24h
// is skipped.
func (uc *implUseCase) Sweep(ctx context.Context, now time.Time) (notification.SweepOutput, error) {
	st, err := uc.loadState(ctx, now)
	if err != nil {
		return notification.SweepOutput{}, err
	}

	if err := uc.collectActionDue(ctx, st); err != nil {
		return notification.SweepOutput{}, err
	}
	if err := uc.collectCallIncomplete(ctx, st); err != nil {
		return notification.SweepOutput{}, err
	}
	if err := uc.collectPeriodic(ctx, st); err != nil {
		return notification.SweepOutput{}, err
	}

	if len(st.pending) == 0 {
		uc.l.Debugf(ctx, "uc.Sweep: nothing to queue (skipped %d)", st.out.Skipped)
		return st.out, nil
	}

	opts := make([]repository.CreateNotificationOptions, 0, len(st.pending))
	for _, n := range st.pending {
		opts = append(opts, repository.CreateNotificationOptions{
			UserID:       n.UserID,
			ParentID:     n.ParentID,
			ActionID:     n.ActionID,
			Type:         n.Type,
			Title:        n.Title,
			Message:      n.Message,
			ScheduledFor: n.ScheduledFor,
		})
	}
	created, err := uc.repo.CreateNotifications(ctx, opts)
	if err != nil {
		uc.l.Errorf(ctx, "uc.Sweep CreateNotifications: %v", err)
		return notification.SweepOutput{}, fmt.Errorf("%w: %w", notification.ErrSweepFailed, err)
	}

	uc.publish(ctx, created)
	st.out.Inserted = len(created)
	uc.l.Infof(ctx, "uc.Sweep: queued %d reminders (action_due=%d call_incomplete=%d periodic=%d skipped=%d)",
		st.out.Inserted, st.out.ActionDue, st.out.CallIncomplete, st.out.Periodic, st.out.Skipped)

	return st.out, nil
}

func (uc *implUseCase) loadState(ctx context.Context, now time.Time) (*sweepState, error) {
	st := &sweepState{
		now:      now,
		parents:  map[string]model.Parent{},
		settings: map[string]model.NotificationSettings{},
		seen:     map[string]bool{},
	}

	recent, err := uc.repo.ListRecent(ctx, repository.ListRecentOptions{Since: now.Add(-notification.DedupWindow)})
	if err != nil {
		return nil, uc.sweepErr(ctx, "ListRecent", err)
	}
	for _, n := range recent {
		st.seen[n.DedupKey()] = true
	}

	parents, err := uc.repo.ListParents(ctx)
	if err != nil {
		return nil, uc.sweepErr(ctx, "ListParents", err)
	}
	for _, p := range parents {
		st.parents[p.ID] = p
	}

	settings, err := uc.repo.ListSettings(ctx)
	if err != nil {
		return nil, uc.sweepErr(ctx, "ListSettings", err)
	}
	for _, s := range settings {
		st.settings[s.UserID] = s
	}

	return st, nil
}

func (uc *implUseCase) collectActionDue(ctx context.Context, st *sweepState) error {
	today := st.now.In(uc.loc).Format("2006-01-02")
	actions, err := uc.repo.ListDueActions(ctx, repository.ListDueActionsOptions{Today: today})
	if err != nil {
		return uc.sweepErr(ctx, "ListDueActions", err)
	}

	for _, a := range actions {
		p, ok := st.parents[a.ParentID]
		if !ok {
			continue
		}
		if st.add(model.Notification{
			UserID:   p.UserID,
			ParentID: p.ID,
			ActionID: a.ID,
			Type:     model.NotificationActionDue,
			Title:    titleFor(model.NotificationActionDue),
			Message:  fmt.Sprintf("%s 관련: %s (마감일: %s)", parentName(p), a.Topic, a.DueDate),
		}) {
			st.out.ActionDue++
		}
	}
	return nil
}

func (uc *implUseCase) collectCallIncomplete(ctx context.Context, st *sweepState) error {
	convs, err := uc.repo.ListOpenConversations(ctx, repository.ListOpenConversationsOptions{
		StartedBefore: st.now.Add(-notification.CallIncompleteAfter),
	})
	if err != nil {
		return uc.sweepErr(ctx, "ListOpenConversations", err)
	}

	for _, c := range convs {
		p, ok := st.parents[c.ParentID]
		if !ok {
			continue
		}
		if st.add(model.Notification{
			UserID:   p.UserID,
			ParentID: p.ID,
			Type:     model.NotificationCallIncomplete,
			Title:    titleFor(model.NotificationCallIncomplete),
			Message:  fmt.Sprintf("%s와(과)의 통화가 기록되지 않았어요. 통화를 마쳤다면 완료 처리해 주세요.", parentName(p)),
		}) {
			st.out.CallIncomplete++
		}
	}
	return nil
}

func (uc *implUseCase) collectPeriodic(ctx context.Context, st *sweepState) error {
	last, err := uc.repo.LastContacts(ctx)
	if err != nil {
		return uc.sweepErr(ctx, "LastContacts", err)
	}

	for _, p := range st.sortedParents() {
		interval := p.ContactInterval()
		lastEnd, contacted := last[p.ID]
		if contacted && lastEnd.AddDate(0, 0, interval).After(st.now) {
			continue
		}

		msg := fmt.Sprintf("%s님과 아직 연락 기록이 없어요.", parentName(p))
		if contacted {
			msg = fmt.Sprintf("%s님과 마지막 연락 후 %d일이 지났어요.", parentName(p), interval)
		}
		if st.add(model.Notification{
			UserID:   p.UserID,
			ParentID: p.ID,
			Type:     model.NotificationPeriodic,
			Title:    titleFor(model.NotificationPeriodic),
			Message:  msg,
		}) {
			st.out.Periodic++
		}
	}
	return nil
}

// add queues n unless settings disable it or its key was already seen.
func (st *sweepState) add(n model.Notification) bool {
	settings, ok := st.settings[n.UserID]
	if !ok {
		settings = model.DefaultNotificationSettings(n.UserID)
	}
	key := n.DedupKey()
	if !settings.Allows(n.Type) || st.seen[key] {
		st.out.Skipped++
		return false
	}

	n.ScheduledFor = st.now
	st.seen[key] = true
	st.pending = append(st.pending, n)
	return true
}

func (uc *implUseCase) publish(ctx context.Context, created []model.Notification) {
	for _, n := range created {
		event := notification.NotificationCreatedEvent{
			NotificationID: n.ID,
			UserID:         n.UserID,
			ParentID:       n.ParentID,
			ActionID:       n.ActionID,
			Type:           n.Type,
			Title:          n.Title,
			Message:        n.Message,
			ScheduledFor:   n.ScheduledFor,
		}
		if err := uc.publisher.Publish(notification.SubjectNotificationCreated, event); err != nil {
			uc.l.Warnf(ctx, "uc.Sweep publish %s: %v", n.ID, err)
		}
	}
}

func (uc *implUseCase) sweepErr(ctx context.Context, step string, err error) error {
	uc.l.Errorf(ctx, "uc.Sweep %s: %v", step, err)
	return fmt.Errorf("%w: %s: %w", notification.ErrSweepFailed, step, err)
}
