package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"parent-care-assistant/internal/extraction"
	repo "parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/model"
	"parent-care-assistant/pkg/gcalendar"
	"parent-care-assistant/pkg/ics"
)

// ExportICS renders a parent's open actions as an iCalendar document.
func (uc *implUseCase) ExportICS(ctx context.Context, sc model.Scope, parentID string) (extraction.ExportICSOutput, error) {
	list, err := uc.ListActions(ctx, sc, extraction.ListActionsInput{ParentID: parentID})
	if err != nil {
		return extraction.ExportICSOutput{}, err
	}

	parent, err := uc.repo.GetParent(ctx, repo.GetParentOptions{ID: parentID, UserID: sc.UserID})
	if err != nil {
		uc.l.Errorf(ctx, "uc.ExportICS GetParent: %v", err)
		return extraction.ExportICSOutput{}, err
	}
	name := parent.Name
	if name == "" {
		name = uc.defaultParent
	}

	events := make([]ics.Event, 0, len(list.Actions))
	for _, a := range list.Actions {
		day, err := uc.dates.ParseDate(a.DueDate)
		if err != nil {
			uc.l.Warnf(ctx, "uc.ExportICS: skipping action %s: %v", a.ID, err)
			continue
		}
		events = append(events, ics.Event{
			UID:         a.ID + "@parent-care-assistant",
			Summary:     a.Topic,
			Description: a.Reason,
			Date:        day,
		})
	}

	var buf bytes.Buffer
	if err := ics.NewEncoder(&buf).WithClock(uc.clock).Encode(name+" 돌봄 일정", events); err != nil {
		uc.l.Errorf(ctx, "uc.ExportICS Encode: %v", err)
		return extraction.ExportICSOutput{}, err
	}

	return extraction.ExportICSOutput{
		FileName: fmt.Sprintf("care-actions-%s.ics", parentID),
		Data:     buf.Bytes(),
	}, nil
}

// PushToGoogleCalendar creates one all-day event per action. Actions that
// already have an event are skipped. A failed event is logged and counted.
func (uc *implUseCase) PushToGoogleCalendar(ctx context.Context, actions []model.Action) (extraction.CalendarPushOutput, error) {
	var out extraction.CalendarPushOutput
	if uc.calendar == nil {
		return out, extraction.ErrCalendarUnavailable
	}
	if len(actions) == 0 {
		return out, nil
	}

	type dated struct {
		action model.Action
		day    time.Time
	}
	items := make([]dated, 0, len(actions))
	var first, last time.Time
	for _, a := range actions {
		day, err := uc.dates.ParseDate(a.DueDate)
		if err != nil {
			uc.l.Warnf(ctx, "uc.PushToGoogleCalendar: action %s has invalid due date %q", a.ID, a.DueDate)
			out.Failed++
			continue
		}
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
		items = append(items, dated{action: a, day: day})
	}
	if len(items) == 0 {
		return out, nil
	}

	existing := uc.existingEventActions(ctx, first, last.AddDate(0, 0, 1))

	for _, it := range items {
		if existing[it.action.ID] {
			out.Skipped++
			continue
		}
		event, err := uc.calendar.CreateAllDayEvent(ctx, gcalendar.AllDayEventRequest{
			CalendarID:  uc.calendarID,
			Summary:     it.action.Topic,
			Description: it.action.Reason,
			Date:        it.day,
			ActionID:    it.action.ID,
		})
		if err != nil {
			uc.l.Warnf(ctx, "uc.PushToGoogleCalendar: action %s: %v", it.action.ID, err)
			out.Failed++
			continue
		}
		uc.l.Infof(ctx, "uc.PushToGoogleCalendar: created event %s for action %s", event.ID, it.action.ID)
		out.Created++
	}
	return out, nil
}

// existingEventActions returns the action ids that already have an event in
// [from, to). A listing failure is logged and treated as no events.
func (uc *implUseCase) existingEventActions(ctx context.Context, from, to time.Time) map[string]bool {
	events, err := uc.calendar.ListEvents(ctx, gcalendar.ListEventsRequest{
		CalendarID: uc.calendarID,
		TimeMin:    from,
		TimeMax:    to,
	})
	if err != nil {
		uc.l.Warnf(ctx, "uc.PushToGoogleCalendar ListEvents: %v", err)
		return nil
	}
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		if e.ActionID != "" {
			seen[e.ActionID] = true
		}
	}
	return seen
}
