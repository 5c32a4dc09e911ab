package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/internal/model"
	pkgResponse "parent-care-assistant/pkg/response"
	pkgTelegram "parent-care-assistant/pkg/telegram"
)

const maxParentNameLen = 50

const (
	msgStart = "안녕하세요! 부모님과 나눈 통화 내용을 보내 주시면 챙겨야 할 일정을 찾아 드려요.\n\n" +
		"• 통화 내용을 글로 붙여넣거나 음성 파일을 보내세요.\n" +
		"• 번호를 골라 /confirm 1 3 처럼 저장하세요.\n\n" +
		"/help 에서 전체 명령을 볼 수 있어요."
	msgHelp = "명령어\n" +
		"/parent 어머니 - 부모님 호칭 설정\n" +
		"/link <부모님 ID> - 저장할 부모님 연결\n" +
		"/confirm 1 3 - 선택한 번호의 일정 저장 (번호 없이 보내면 전부 저장)\n" +
		"/cancel - 이번 추천 취소"
	msgAnalyzing    = "⏳ 대화를 분석하고 있어요..."
	msgNoDraft      = "저장할 추천 일정이 없어요. 먼저 대화 내용을 보내 주세요."
	msgNeedLink     = "일정을 저장하려면 먼저 /link <부모님 ID> 로 부모님을 연결해 주세요."
	msgNoSchedules  = "이번 대화에서는 챙길 일정을 찾지 못했어요."
	msgUnknownCmd   = "알 수 없는 명령이에요. /help 를 확인해 주세요."
	msgConfirmUsage = "번호는 숫자로 적어 주세요. 예: /confirm 1 3"
)

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the message in a background
// goroutine; transcription plus a model call can outlast Telegram's webhook timeout.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err)
		return
	}

	if update.Message == nil || update.Message.Chat == nil {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	msg := update.Message

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		if err := h.processMessage(bgCtx, msg); err != nil {
			h.l.Errorf(bgCtx, "telegram handler: background processMessage failed: %v", err)
			_ = h.bot.SendMessage(bgCtx, msg.Chat.ID, msgGenericFailure)
		}
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

// processMessage handles a single Telegram message.
func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) error {
	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/") {
		return h.handleCommand(ctx, msg, text)
	}

	sc := scopeOf(msg)
	input := extraction.ExtractInput{
		Transcript: text,
		ParentName: h.settings(msg.Chat.ID).ParentName,
	}

	if fileID := msg.AudioFileID(); fileID != "" {
		audioURL, err := h.bot.GetFileURL(ctx, fileID)
		if err != nil {
			h.l.Errorf(ctx, "telegram handler: GetFileURL failed: %v", err)
			return h.bot.SendMessage(ctx, msg.Chat.ID, errorMessage(extraction.ErrTranscriptionFailed))
		}
		input.Transcript = ""
		input.AudioURL = audioURL
	} else if text == "" {
		return nil
	}

	if err := h.bot.SendMessage(ctx, msg.Chat.ID, msgAnalyzing); err != nil {
		h.l.Warnf(ctx, "telegram handler: failed to send ack message: %v", err)
	}

	out, err := h.uc.Extract(ctx, sc, input)
	if err != nil {
		h.l.Warnf(ctx, "telegram handler: Extract failed: %v", err)
		return h.bot.SendMessage(ctx, msg.Chat.ID, errorMessage(err))
	}

	if len(out.Result.Schedules) > 0 {
		h.saveDraft(msg.Chat.ID, draft{ConversationID: out.ConversationID, Result: out.Result})
	} else {
		h.dropDraft(msg.Chat.ID)
	}

	return h.bot.SendMessage(ctx, msg.Chat.ID, formatResult(out.Result))
}

func (h *handler) handleCommand(ctx context.Context, msg *pkgTelegram.Message, text string) error {
	fields := strings.Fields(text)
	cmd, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]
	chatID := msg.Chat.ID

	switch cmd {
	case "/start":
		return h.bot.SendMessage(ctx, chatID, msgStart)
	case "/help":
		return h.bot.SendMessage(ctx, chatID, msgHelp)
	case "/parent":
		return h.handleParent(ctx, chatID, strings.Join(args, " "))
	case "/link":
		return h.handleLink(ctx, chatID, args)
	case "/confirm":
		return h.handleConfirm(ctx, msg, args)
	case "/cancel":
		h.dropDraft(chatID)
		return h.bot.SendMessage(ctx, chatID, "이번 추천을 취소했어요.")
	}
	return h.bot.SendMessage(ctx, chatID, msgUnknownCmd)
}

func (h *handler) handleParent(ctx context.Context, chatID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		current := h.settings(chatID).ParentName
		if current == "" {
			current = extraction.DefaultParentName
		}
		return h.bot.SendMessage(ctx, chatID, fmt.Sprintf("지금 호칭은 '%s'이에요. 바꾸려면 /parent 어머니 처럼 보내 주세요.", current))
	}
	if utf8.RuneCountInString(name) > maxParentNameLen {
		return h.bot.SendMessage(ctx, chatID, "호칭이 너무 길어요.")
	}

	h.updateSettings(chatID, func(s *chatSettings) { s.ParentName = name })
	return h.bot.SendMessage(ctx, chatID, fmt.Sprintf("앞으로 '%s'(으)로 불러 드릴게요.", name))
}

func (h *handler) handleLink(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		if id := h.settings(chatID).ParentID; id != "" {
			return h.bot.SendMessage(ctx, chatID, fmt.Sprintf("연결된 부모님 ID: %s", id))
		}
		return h.bot.SendMessage(ctx, chatID, msgNeedLink)
	}
	if _, err := uuid.Parse(args[0]); err != nil {
		return h.bot.SendMessage(ctx, chatID, "부모님 ID 형식이 올바르지 않아요.")
	}

	h.updateSettings(chatID, func(s *chatSettings) { s.ParentID = args[0] })
	return h.bot.SendMessage(ctx, chatID, "부모님을 연결했어요. 이제 /confirm 으로 일정을 저장할 수 있어요.")
}

func (h *handler) handleConfirm(ctx context.Context, msg *pkgTelegram.Message, args []string) error {
	chatID := msg.Chat.ID

	d, ok := h.loadDraft(chatID)
	if !ok {
		return h.bot.SendMessage(ctx, chatID, msgNoDraft)
	}
	parentID := h.settings(chatID).ParentID
	if parentID == "" {
		return h.bot.SendMessage(ctx, chatID, msgNeedLink)
	}

	positions, err := parsePositions(args, len(d.Result.Schedules))
	if err != nil {
		return h.bot.SendMessage(ctx, chatID, msgConfirmUsage)
	}
	selected, err := extraction.SelectPositions(d.Result, positions)
	if err != nil {
		return h.bot.SendMessage(ctx, chatID, errorMessage(err))
	}

	out, err := h.uc.Confirm(ctx, scopeOf(msg), extraction.ConfirmInput{
		ConversationID: d.ConversationID,
		ParentID:       parentID,
		Schedules:      selected.Schedules,
	})
	if err != nil {
		h.l.Warnf(ctx, "telegram handler: Confirm failed: %v", err)
		return h.bot.SendMessage(ctx, chatID, errorMessage(err))
	}
	h.dropDraft(chatID)

	reply := fmt.Sprintf("✅ 일정 %d개를 저장했어요.", len(out.Actions))

	push, err := h.uc.PushToGoogleCalendar(ctx, out.Actions)
	switch {
	case errors.Is(err, extraction.ErrCalendarUnavailable):
	case err != nil:
		h.l.Warnf(ctx, "telegram handler: PushToGoogleCalendar failed: %v", err)
	case push.Created > 0:
		reply += fmt.Sprintf("\n📅 구글 캘린더에 %d개를 추가했어요.", push.Created)
	}

	return h.bot.SendMessage(ctx, chatID, reply)
}

// parsePositions reads "1 3" or "1,3". No arguments selects every schedule.
func parsePositions(args []string, total int) ([]int, error) {
	var positions []int
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			positions = append(positions, n)
		}
	}
	if len(positions) == 0 {
		for i := 1; i <= total; i++ {
			positions = append(positions, i)
		}
	}
	return positions, nil
}

func scopeOf(msg *pkgTelegram.Message) model.Scope {
	if msg.From != nil {
		return model.Scope{UserID: fmt.Sprintf("telegram_%d", msg.From.ID)}
	}
	return model.Scope{UserID: fmt.Sprintf("telegram_chat_%d", msg.Chat.ID)}
}
