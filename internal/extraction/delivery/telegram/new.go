package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"parent-care-assistant/internal/extraction"
	pkgLog "parent-care-assistant/pkg/log"
)

const (
	defaultDraftTTL       = 30 * time.Minute
	defaultSettingsTTL    = 90 * 24 * time.Hour
	defaultProcessTimeout = 2 * time.Minute
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// Bot is the part of the Telegram client the handler talks to.
type Bot interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	GetFileURL(ctx context.Context, fileID string) (string, error)
}

// Options tunes the handler. Zero values pick the defaults.
type Options struct {
	DraftTTL       time.Duration
	SettingsTTL    time.Duration // idle lifetime of /parent and /link values
	ProcessTimeout time.Duration
}

type handler struct {
	l       pkgLog.Logger
	uc      extraction.UseCase
	bot     Bot
	drafts  *cache.Cache
	chats   *cache.Cache
	chatsMu sync.Mutex // serializes read-modify-write of chats
	timeout time.Duration
}

// New creates a new Telegram delivery handler.
func New(l pkgLog.Logger, uc extraction.UseCase, bot Bot, opt Options) Handler {
	return newHandler(l, uc, bot, opt)
}

func newHandler(l pkgLog.Logger, uc extraction.UseCase, bot Bot, opt Options) *handler {
	if opt.DraftTTL <= 0 {
		opt.DraftTTL = defaultDraftTTL
	}
	if opt.SettingsTTL <= 0 {
		opt.SettingsTTL = defaultSettingsTTL
	}
	if opt.ProcessTimeout <= 0 {
		opt.ProcessTimeout = defaultProcessTimeout
	}
	return &handler{
		l:       l,
		uc:      uc,
		bot:     bot,
		drafts:  cache.New(opt.DraftTTL, 2*opt.DraftTTL),
		chats:   cache.New(opt.SettingsTTL, time.Hour),
		timeout: opt.ProcessTimeout,
	}
}
