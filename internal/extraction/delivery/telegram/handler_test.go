package telegram

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/internal/model"
	"parent-care-assistant/pkg/log"
	pkgTelegram "parent-care-assistant/pkg/telegram"
)

// ── Mocks ──────────────────────────────────────────────────────────────────

type fakeBot struct {
	mu       sync.Mutex
	messages []string
	sent     chan string
	fileURL  string
	fileErr  error
}

func newFakeBot() *fakeBot {
	return &fakeBot{sent: make(chan string, 16), fileURL: "https://files.test/voice.oga"}
}

func (b *fakeBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	b.mu.Lock()
	b.messages = append(b.messages, text)
	b.mu.Unlock()
	b.sent <- text
	return nil
}

func (b *fakeBot) GetFileURL(ctx context.Context, fileID string) (string, error) {
	return b.fileURL, b.fileErr
}

func (b *fakeBot) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return ""
	}
	return b.messages[len(b.messages)-1]
}

type stubUseCase struct {
	extractIn  extraction.ExtractInput
	extractSc  model.Scope
	extractOut extraction.ExtractOutput
	extractErr error
	confirmIn  extraction.ConfirmInput
	confirmSc  model.Scope
	confirmErr error
	pushed     []model.Action
	pushOut    extraction.CalendarPushOutput
	pushErr    error
}

func (s *stubUseCase) Extract(ctx context.Context, sc model.Scope, in extraction.ExtractInput) (extraction.ExtractOutput, error) {
	s.extractIn, s.extractSc = in, sc
	return s.extractOut, s.extractErr
}

func (s *stubUseCase) ExtractSchedulesFromConversation(ctx context.Context, transcript, parentName string) extraction.ExtractionResult {
	return s.extractOut.Result
}

func (s *stubUseCase) Confirm(ctx context.Context, sc model.Scope, in extraction.ConfirmInput) (extraction.ConfirmOutput, error) {
	s.confirmIn, s.confirmSc = in, sc
	if s.confirmErr != nil {
		return extraction.ConfirmOutput{}, s.confirmErr
	}
	var actions []model.Action
	for _, sch := range extraction.SelectedSchedules(in.Schedules) {
		actions = append(actions, model.Action{ID: "a-" + sch.ID, ParentID: in.ParentID, Topic: sch.Topic, DueDate: sch.DueDate})
	}
	return extraction.ConfirmOutput{Actions: actions}, nil
}

func (s *stubUseCase) ListActions(ctx context.Context, sc model.Scope, in extraction.ListActionsInput) (extraction.ListActionsOutput, error) {
	return extraction.ListActionsOutput{}, nil
}

func (s *stubUseCase) CompleteAction(ctx context.Context, sc model.Scope, id string) (model.Action, error) {
	return model.Action{}, nil
}

func (s *stubUseCase) ExportICS(ctx context.Context, sc model.Scope, parentID string) (extraction.ExportICSOutput, error) {
	return extraction.ExportICSOutput{}, nil
}

func (s *stubUseCase) PushToGoogleCalendar(ctx context.Context, actions []model.Action) (extraction.CalendarPushOutput, error) {
	s.pushed = actions
	return s.pushOut, s.pushErr
}

// ── Helpers ────────────────────────────────────────────────────────────────

const (
	testChatID   = int64(42)
	testParentID = "0190d7a0-0000-7000-8000-000000000001"
)

func sampleResult() extraction.ExtractionResult {
	return extraction.ExtractionResult{
		Summary:  "어머니와의 대화: 병원 관련 내용",
		Keywords: []string{"병원"},
		Mood:     extraction.MoodConcerned,
		Source:   extraction.SourceRules,
		Schedules: []extraction.ExtractedSchedule{
			{ID: "s-0", Type: extraction.ScheduleHospital, Topic: "병원 방문 결과 확인", DueDate: "2024-02-11", Reason: "병원 방문 예정", Confidence: 0.85},
			{ID: "s-1", Type: extraction.ScheduleMeeting, Topic: "자녀 방문 일정 확인", DueDate: "2024-02-10", Reason: "가족 방문", Confidence: 0.75},
			{ID: "s-2", Type: extraction.ScheduleFollowUp, Topic: "건강 상태 확인", DueDate: "2024-02-07", Reason: "건강 언급", Confidence: 0.8},
		},
	}
}

func textMessage(text string) *pkgTelegram.Message {
	return &pkgTelegram.Message{
		MessageID: 1,
		From:      &pkgTelegram.User{ID: 7, FirstName: "민수"},
		Chat:      &pkgTelegram.Chat{ID: testChatID, Type: "private"},
		Text:      text,
	}
}

func newTestHandler(uc *stubUseCase, bot *fakeBot) *handler {
	return newHandler(log.NewNop(), uc, bot, Options{})
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestProcessMessage_TextExtractsAndStoresDraft(t *testing.T) {
	uc := &stubUseCase{extractOut: extraction.ExtractOutput{Result: sampleResult()}}
	bot := newFakeBot()
	h := newTestHandler(uc, bot)
	h.updateSettings(testChatID, func(s *chatSettings) { s.ParentName = "어머니" })

	require.NoError(t, h.processMessage(context.Background(), textMessage("다음 주에 병원 가기로 했어")))

	assert.Equal(t, "다음 주에 병원 가기로 했어", uc.extractIn.Transcript)
	assert.Equal(t, "어머니", uc.extractIn.ParentName)
	assert.Equal(t, "telegram_7", uc.extractSc.UserID)

	require.Len(t, bot.messages, 2)
	assert.Equal(t, msgAnalyzing, bot.messages[0])
	reply := bot.last()
	assert.Contains(t, reply, "1. [2024-02-11] 병원 방문 결과 확인 (85%)")
	assert.Contains(t, reply, "3. [2024-02-07] 건강 상태 확인 (80%)")
	assert.Contains(t, reply, "😟 걱정")

	d, ok := h.loadDraft(testChatID)
	require.True(t, ok)
	assert.Len(t, d.Result.Schedules, 3)
}

func TestProcessMessage_NoSchedules(t *testing.T) {
	uc := &stubUseCase{extractOut: extraction.ExtractOutput{Result: extraction.ExtractionResult{
		Summary: "아버지와의 대화: 일상 대화", Mood: extraction.MoodNeutral, Source: extraction.SourceRules,
	}}}
	bot := newFakeBot()
	h := newTestHandler(uc, bot)
	h.saveDraft(testChatID, draft{Result: sampleResult()})

	require.NoError(t, h.processMessage(context.Background(), textMessage("날씨가 좋네")))

	assert.Contains(t, bot.last(), msgNoSchedules)
	_, ok := h.loadDraft(testChatID)
	assert.False(t, ok, "an empty extraction replaces the old draft")
}

func TestProcessMessage_VoiceUsesFileURL(t *testing.T) {
	uc := &stubUseCase{extractOut: extraction.ExtractOutput{Result: sampleResult()}}
	bot := newFakeBot()
	h := newTestHandler(uc, bot)

	msg := textMessage("")
	msg.Voice = &pkgTelegram.Voice{FileID: "voice-1", Duration: 30}

	require.NoError(t, h.processMessage(context.Background(), msg))
	assert.Equal(t, "https://files.test/voice.oga", uc.extractIn.AudioURL)
	assert.Empty(t, uc.extractIn.Transcript)
}

func TestProcessMessage_VoiceFileLookupFails(t *testing.T) {
	uc := &stubUseCase{}
	bot := newFakeBot()
	bot.fileErr = errors.New("boom")
	h := newTestHandler(uc, bot)

	msg := textMessage("")
	msg.Voice = &pkgTelegram.Voice{FileID: "voice-1"}

	require.NoError(t, h.processMessage(context.Background(), msg))
	assert.Equal(t, errorMessage(extraction.ErrTranscriptionFailed), bot.last())
	assert.Empty(t, uc.extractIn.AudioURL)
}

func TestProcessMessage_ExtractError(t *testing.T) {
	uc := &stubUseCase{extractErr: extraction.ErrTranscriptionFailed}
	bot := newFakeBot()
	h := newTestHandler(uc, bot)

	require.NoError(t, h.processMessage(context.Background(), textMessage("안녕하세요")))
	assert.Equal(t, errorMessage(extraction.ErrTranscriptionFailed), bot.last())
}

func TestProcessMessage_EmptyTextIgnored(t *testing.T) {
	bot := newFakeBot()
	h := newTestHandler(&stubUseCase{}, bot)

	require.NoError(t, h.processMessage(context.Background(), textMessage("   ")))
	assert.Empty(t, bot.messages)
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"start", "/start", msgStart},
		{"help", "/help", msgHelp},
		{"help with bot name", "/help@care_bot", msgHelp},
		{"unknown", "/weather", msgUnknownCmd},
		{"parent shows default", "/parent", "지금 호칭은 '부모님'이에요"},
		{"link without id", "/link", msgNeedLink},
		{"link bad id", "/link not-a-uuid", "형식이 올바르지 않아요"},
		{"confirm without draft", "/confirm 1", msgNoDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := newFakeBot()
			h := newTestHandler(&stubUseCase{}, bot)
			require.NoError(t, h.processMessage(context.Background(), textMessage(tt.text)))
			assert.Contains(t, bot.last(), tt.want)
		})
	}
}

func TestParentAndLinkCommands(t *testing.T) {
	bot := newFakeBot()
	h := newTestHandler(&stubUseCase{}, bot)
	ctx := context.Background()

	require.NoError(t, h.processMessage(ctx, textMessage("/parent 어머니")))
	require.NoError(t, h.processMessage(ctx, textMessage("/link "+testParentID)))

	s := h.settings(testChatID)
	assert.Equal(t, "어머니", s.ParentName)
	assert.Equal(t, testParentID, s.ParentID)

	require.NoError(t, h.processMessage(ctx, textMessage("/parent "+strings.Repeat("가", maxParentNameLen+1))))
	assert.Equal(t, "어머니", h.settings(testChatID).ParentName)
}

func TestConfirm_SelectsPositions(t *testing.T) {
	uc := &stubUseCase{pushOut: extraction.CalendarPushOutput{Created: 2}}
	bot := newFakeBot()
	h := newTestHandler(uc, bot)
	h.updateSettings(testChatID, func(s *chatSettings) { s.ParentID = testParentID })
	h.saveDraft(testChatID, draft{ConversationID: "conv-1", Result: sampleResult()})

	require.NoError(t, h.processMessage(context.Background(), textMessage("/confirm 1 3")))

	assert.Equal(t, testParentID, uc.confirmIn.ParentID)
	assert.Equal(t, "conv-1", uc.confirmIn.ConversationID)
	assert.Equal(t, "telegram_7", uc.confirmSc.UserID)
	selected := extraction.SelectedSchedules(uc.confirmIn.Schedules)
	require.Len(t, selected, 2)
	assert.Equal(t, "s-0", selected[0].ID)
	assert.Equal(t, "s-2", selected[1].ID)

	assert.Len(t, uc.pushed, 2)
	assert.Contains(t, bot.last(), "일정 2개를 저장했어요")
	assert.Contains(t, bot.last(), "구글 캘린더에 2개")

	_, ok := h.loadDraft(testChatID)
	assert.False(t, ok, "draft is consumed by a successful confirm")
}

func TestConfirm_NoArgsSelectsAll(t *testing.T) {
	uc := &stubUseCase{pushErr: extraction.ErrCalendarUnavailable}
	bot := newFakeBot()
	h := newTestHandler(uc, bot)
	h.updateSettings(testChatID, func(s *chatSettings) { s.ParentID = testParentID })
	h.saveDraft(testChatID, draft{Result: sampleResult()})

	require.NoError(t, h.processMessage(context.Background(), textMessage("/confirm")))

	assert.Len(t, extraction.SelectedSchedules(uc.confirmIn.Schedules), 3)
	assert.Equal(t, "✅ 일정 3개를 저장했어요.", bot.last())
}

func TestConfirm_Errors(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		linked     bool
		confirmErr error
		want       string
		keepDraft  bool
	}{
		{"not linked", "/confirm 1", false, nil, msgNeedLink, true},
		{"not a number", "/confirm one", true, nil, msgConfirmUsage, true},
		{"out of range", "/confirm 4", true, nil, errorMessage(extraction.ErrInvalidSchedule), true},
		{"storage off", "/confirm 1", true, extraction.ErrStorageUnavailable, errorMessage(extraction.ErrStorageUnavailable), true},
		{"unknown parent", "/confirm 1", true, extraction.ErrParentNotFound, errorMessage(extraction.ErrParentNotFound), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{confirmErr: tt.confirmErr}
			bot := newFakeBot()
			h := newTestHandler(uc, bot)
			if tt.linked {
				h.updateSettings(testChatID, func(s *chatSettings) { s.ParentID = testParentID })
			}
			h.saveDraft(testChatID, draft{Result: sampleResult()})

			require.NoError(t, h.processMessage(context.Background(), textMessage(tt.text)))
			assert.Equal(t, tt.want, bot.last())
			_, ok := h.loadDraft(testChatID)
			assert.Equal(t, tt.keepDraft, ok)
		})
	}
}

func TestCancelDropsDraft(t *testing.T) {
	bot := newFakeBot()
	h := newTestHandler(&stubUseCase{}, bot)
	h.saveDraft(testChatID, draft{Result: sampleResult()})

	require.NoError(t, h.processMessage(context.Background(), textMessage("/cancel")))
	_, ok := h.loadDraft(testChatID)
	assert.False(t, ok)
}

func TestDraftExpires(t *testing.T) {
	h := newHandler(log.NewNop(), &stubUseCase{}, newFakeBot(), Options{DraftTTL: 20 * time.Millisecond})
	h.saveDraft(testChatID, draft{Result: sampleResult()})

	assert.Eventually(t, func() bool {
		_, ok := h.loadDraft(testChatID)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestUpdateSettings_ConcurrentFieldsKept(t *testing.T) {
	for round := 0; round < 20; round++ {
		h := newTestHandler(&stubUseCase{}, newFakeBot())

		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			h.updateSettings(testChatID, func(s *chatSettings) { s.ParentName = "어머니" })
		}()
		go func() {
			defer wg.Done()
			<-start
			h.updateSettings(testChatID, func(s *chatSettings) { s.ParentID = testParentID })
		}()
		close(start)
		wg.Wait()

		got := h.settings(testChatID)
		require.Equal(t, "어머니", got.ParentName, "round %d", round)
		require.Equal(t, testParentID, got.ParentID, "round %d", round)
	}
}

func TestSettingsExpireWhenIdle(t *testing.T) {
	h := newHandler(log.NewNop(), &stubUseCase{}, newFakeBot(), Options{SettingsTTL: 20 * time.Millisecond})
	h.updateSettings(testChatID, func(s *chatSettings) { s.ParentID = testParentID })
	require.Equal(t, testParentID, h.settings(testChatID).ParentID)

	assert.Eventually(t, func() bool {
		return h.settings(testChatID).ParentID == ""
	}, time.Second, 10*time.Millisecond)
}

func TestParsePositions(t *testing.T) {
	got, err := parsePositions([]string{"1,3", "2"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 2}, got)

	got, err = parsePositions(nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	_, err = parsePositions([]string{"x"}, 3)
	assert.Error(t, err)
}

func TestScopeOf(t *testing.T) {
	msg := textMessage("hi")
	assert.Equal(t, "telegram_7", scopeOf(msg).UserID)

	msg.From = nil
	assert.Equal(t, "telegram_chat_42", scopeOf(msg).UserID)
}

func TestHandleWebhook(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &stubUseCase{}
	bot := newFakeBot()
	r := gin.New()
	r.POST("/webhook/telegram", New(log.NewNop(), uc, bot, Options{}).HandleWebhook)

	t.Run("accepted and processed in background", func(t *testing.T) {
		body := `{"update_id":1,"message":{"message_id":1,"from":{"id":7,"first_name":"민수"},"chat":{"id":42,"type":"private"},"text":"/help"}}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "accepted")

		select {
		case got := <-bot.sent:
			assert.Equal(t, msgHelp, got)
		case <-time.After(2 * time.Second):
			t.Fatal("background processing did not reply")
		}
	})

	t.Run("non-message update ignored", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString(`{"update_id":2}`)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ignored")
	})

	t.Run("bad json", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/telegram", bytes.NewBufferString(`{`)))
		assert.NotEqual(t, http.StatusOK, w.Code)
	})
}
