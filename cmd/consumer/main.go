package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"parent-care-assistant/config"
	"parent-care-assistant/internal/app"
	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/internal/model"
	"parent-care-assistant/pkg/log"
)

const calendarQueue = "care-calendar"

// main is the entry point for the background consumer service.
// It listens for confirmed actions on NATS and mirrors them to Google Calendar.
//
// Pattern:
//  1. Initialize infra (same as cmd/api/main.go)
//  2. Create UseCases
//  3. Subscribe handlers on a queue group
//  4. Run & graceful shutdown
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting consumer service...")

	a, err := app.Build(ctx, cfg, logger, app.Options{Name: "care-consumer"})
	if err != nil {
		logger.Error(ctx, "Failed to initialize application: ", err)
		return
	}
	defer a.Close()

	if a.Broker == nil {
		logger.Error(ctx, "Consumer needs nats.url to be configured")
		return
	}
	if a.Calendar == nil {
		logger.Warn(ctx, "Google Calendar not configured: action events will be acknowledged and dropped")
	}

	handler := newCalendarSync(a.Extraction, logger)
	if err := a.Broker.Subscribe(ctx, extraction.SubjectActionCreated, calendarQueue, handler.handle); err != nil {
		logger.Error(ctx, "Failed to subscribe: ", err)
		return
	}

	logger.Infof(ctx, "Consumer service running on %s. Waiting for shutdown signal...", extraction.SubjectActionCreated)
	<-ctx.Done()
	logger.Info(ctx, "Consumer service stopped gracefully")
}

// calendarSync pushes each created action to Google Calendar.
type calendarSync struct {
	uc extraction.UseCase
	l  log.Logger
}

func newCalendarSync(uc extraction.UseCase, l log.Logger) *calendarSync {
	return &calendarSync{uc: uc, l: l}
}

func (s *calendarSync) handle(ctx context.Context, subject string, data []byte) {
	var event extraction.ActionCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.l.Warnf(ctx, "consumer: bad %s payload: %v", subject, err)
		return
	}

	action := model.Action{
		ID:             event.ActionID,
		ConversationID: event.ConversationID,
		ParentID:       event.ParentID,
		Type:           event.Type,
		Topic:          event.Topic,
		Reason:         event.Reason,
		DueDate:        event.DueDate,
		CreatedAt:      event.CreatedAt,
	}
	out, err := s.uc.PushToGoogleCalendar(ctx, []model.Action{action})
	if err != nil {
		s.l.Debugf(ctx, "consumer: calendar push for %s skipped: %v", event.ActionID, err)
		return
	}
	s.l.Infof(ctx, "consumer: action %s synced (created=%d skipped=%d failed=%d)",
		event.ActionID, out.Created, out.Skipped, out.Failed)
}
