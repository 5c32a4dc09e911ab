package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"parent-care-assistant/internal/extraction"
	repo "parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/model"
	"parent-care-assistant/pkg/datemath"
	"parent-care-assistant/pkg/gcalendar"
)

// recordingLogger keeps warn lines so tests can check what was reported.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (m *recordingLogger) record(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, s)
}

func (m *recordingLogger) Debug(ctx context.Context, arg ...any)                   {}
func (m *recordingLogger) Debugf(ctx context.Context, template string, arg ...any) {}
func (m *recordingLogger) Info(ctx context.Context, arg ...any)                    {}
func (m *recordingLogger) Infof(ctx context.Context, template string, arg ...any)  {}
func (m *recordingLogger) Warn(ctx context.Context, arg ...any)                    { m.record(fmt.Sprint(arg...)) }
func (m *recordingLogger) Warnf(ctx context.Context, template string, arg ...any) {
	m.record(fmt.Sprintf(template, arg...))
}
func (m *recordingLogger) Error(ctx context.Context, arg ...any)                   {}
func (m *recordingLogger) Errorf(ctx context.Context, template string, arg ...any) {}
func (m *recordingLogger) DPanic(ctx context.Context, arg ...any)                  {}
func (m *recordingLogger) DPanicf(ctx context.Context, template string, arg ...any) {}
func (m *recordingLogger) Panic(ctx context.Context, arg ...any)                   {}
func (m *recordingLogger) Panicf(ctx context.Context, template string, arg ...any) {}
func (m *recordingLogger) Fatal(ctx context.Context, arg ...any)                   {}
func (m *recordingLogger) Fatalf(ctx context.Context, template string, arg ...any) {}

type stubModel struct {
	draft   extraction.Draft
	err     error
	block   bool
	panics  bool
	calls   int
	gotName string
	gotDay  time.Time
}

func (s *stubModel) Extract(ctx context.Context, transcript, parentName string, today time.Time) (extraction.Draft, error) {
	s.calls++
	s.gotName = parentName
	s.gotDay = today
	if s.panics {
		var seen map[string]bool
		seen[transcript] = true
	}
	if s.block {
		<-ctx.Done()
		return extraction.Draft{}, fmt.Errorf("%w: %w", extraction.ErrUpstream, ctx.Err())
	}
	return s.draft, s.err
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	return s.text, s.err
}

type publishedEvent struct {
	subject string
	data    any
}

type stubPublisher struct {
	events []publishedEvent
	err    error
}

func (s *stubPublisher) Publish(subject string, data any) error {
	s.events = append(s.events, publishedEvent{subject: subject, data: data})
	return s.err
}

// memRepo is an in-memory repository.Repository.
type memRepo struct {
	mu            sync.Mutex
	parents       map[string]model.Parent
	conversations map[string]model.Conversation
	actions       []model.Action
	updateErr     error
	updated       []repo.UpdateAnalysisOptions
}

func newMemRepo() *memRepo {
	return &memRepo{
		parents:       map[string]model.Parent{},
		conversations: map[string]model.Conversation{},
	}
}

func (m *memRepo) addParent(userID, name string) model.Parent {
	p := model.Parent{ID: uuid.NewString(), UserID: userID, Name: name}
	m.parents[p.ID] = p
	return p
}

func (m *memRepo) addConversation(parent model.Parent, transcript string) model.Conversation {
	c := model.Conversation{ID: uuid.NewString(), ParentID: parent.ID, UserID: parent.UserID, Transcript: transcript}
	m.conversations[c.ID] = c
	return c
}

func (m *memRepo) GetParent(ctx context.Context, opt repo.GetParentOptions) (model.Parent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parents[opt.ID]
	if !ok || (opt.UserID != "" && p.UserID != opt.UserID) {
		return model.Parent{}, nil
	}
	return p, nil
}

func (m *memRepo) GetConversation(ctx context.Context, opt repo.GetConversationOptions) (model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[opt.ID]
	if !ok || (opt.UserID != "" && c.UserID != opt.UserID) {
		return model.Conversation{}, nil
	}
	return c, nil
}

func (m *memRepo) UpdateAnalysis(ctx context.Context, opt repo.UpdateAnalysisOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, opt)
	return m.updateErr
}

func (m *memRepo) CreateActions(ctx context.Context, opts []repo.CreateActionOptions) ([]model.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Action
	for _, o := range opts {
		a := model.Action{
			ID: uuid.NewString(), ConversationID: o.ConversationID, ParentID: o.ParentID,
			Type: o.Type, Topic: o.Topic, Reason: o.Reason, DueDate: o.DueDate, Confidence: o.Confidence,
		}
		m.actions = append(m.actions, a)
		out = append(out, a)
	}
	return out, nil
}

func (m *memRepo) ListActions(ctx context.Context, opt repo.ListActionsOptions) ([]model.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Action
	for _, a := range m.actions {
		if a.ParentID == opt.ParentID && (opt.IncludeCompleted || !a.Completed) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) CompleteAction(ctx context.Context, opt repo.CompleteActionOptions) (model.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.actions {
		if a.ID != opt.ID {
			continue
		}
		if p := m.parents[a.ParentID]; opt.UserID != "" && p.UserID != opt.UserID {
			return model.Action{}, nil
		}
		if !a.Completed {
			at := opt.CompletedAt
			m.actions[i].Completed = true
			m.actions[i].CompletedAt = &at
		}
		return m.actions[i], nil
	}
	return model.Action{}, nil
}

type stubCalendar struct {
	existing  []gcalendar.Event
	listErr   error
	failFor   map[string]bool
	created   []gcalendar.AllDayEventRequest
	listedMin time.Time
	listedMax time.Time
}

func (s *stubCalendar) CreateAllDayEvent(ctx context.Context, req gcalendar.AllDayEventRequest) (*gcalendar.Event, error) {
	if s.failFor[req.ActionID] {
		return nil, errors.New("calendar api error")
	}
	s.created = append(s.created, req)
	return &gcalendar.Event{ID: "evt-" + req.ActionID, ActionID: req.ActionID}, nil
}

func (s *stubCalendar) ListEvents(ctx context.Context, req gcalendar.ListEventsRequest) ([]gcalendar.Event, error) {
	s.listedMin, s.listedMax = req.TimeMin, req.TimeMax
	return s.existing, s.listErr
}

func testDates(t *testing.T) *datemath.Parser {
	t.Helper()
	p, err := datemath.NewParser("Asia/Seoul")
	require.NoError(t, err)
	return p
}

// fixedClock returns 2024-02-04 10:00 in Seoul.
func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	now := time.Date(2024, 2, 4, 10, 0, 0, 0, loc)
	return func() time.Time { return now }
}

func newTestUseCase(t *testing.T, opt Options) *implUseCase {
	t.Helper()
	if opt.Dates == nil {
		opt.Dates = testDates(t)
	}
	if opt.Clock == nil {
		opt.Clock = fixedClock(t)
	}
	uc, err := New(&recordingLogger{}, opt)
	require.NoError(t, err)
	return uc
}
