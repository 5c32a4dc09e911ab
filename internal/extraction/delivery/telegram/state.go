package telegram

import (
	"strconv"

	"github.com/patrickmn/go-cache"

	"parent-care-assistant/internal/extraction"
)

// draft is the last extraction shown in a chat, waiting for /confirm.
type draft struct {
	ConversationID string
	Result         extraction.ExtractionResult
}

// chatSettings is what /parent and /link remember for a chat.
type chatSettings struct {
	ParentName string
	ParentID   string
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (h *handler) saveDraft(chatID int64, d draft) {
	h.drafts.Set(chatKey(chatID), d, cache.DefaultExpiration)
}

func (h *handler) loadDraft(chatID int64) (draft, bool) {
	v, ok := h.drafts.Get(chatKey(chatID))
	if !ok {
		return draft{}, false
	}
	d, ok := v.(draft)
	return d, ok
}

func (h *handler) dropDraft(chatID int64) {
	h.drafts.Delete(chatKey(chatID))
}

func (h *handler) settings(chatID int64) chatSettings {
	if v, ok := h.chats.Get(chatKey(chatID)); ok {
		if s, ok := v.(chatSettings); ok {
			return s
		}
	}
	return chatSettings{}
}

// updateSettings applies fn atomically and restarts the chat's expiry.
func (h *handler) updateSettings(chatID int64, fn func(*chatSettings)) {
	h.chatsMu.Lock()
	defer h.chatsMu.Unlock()

	s := h.settings(chatID)
	fn(&s)
	h.chats.Set(chatKey(chatID), s, cache.DefaultExpiration)
}
