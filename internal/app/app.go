// Package app builds the shared object graph for the api, consumer and
// carectl binaries from one config.Config.
package app

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"parent-care-assistant/config"
	"parent-care-assistant/internal/extraction"
	extractionLLM "parent-care-assistant/internal/extraction/llm"
	extractionRepo "parent-care-assistant/internal/extraction/repository/postgre"
	"parent-care-assistant/internal/extraction/rulebased"
	extractionUC "parent-care-assistant/internal/extraction/usecase"
	"parent-care-assistant/internal/notification"
	notificationRepo "parent-care-assistant/internal/notification/repository/postgre"
	notificationUC "parent-care-assistant/internal/notification/usecase"
	"parent-care-assistant/pkg/broker"
	"parent-care-assistant/pkg/datemath"
	"parent-care-assistant/pkg/gcalendar"
	"parent-care-assistant/pkg/llmprovider"
	"parent-care-assistant/pkg/log"
	"parent-care-assistant/pkg/openaicompat"
	"parent-care-assistant/pkg/postgres"
)

// Options controls which optional backends Build may connect to.
type Options struct {
	// Name identifies the process to NATS.
	Name string
	// Registerer receives the extraction metrics. Nil uses a private registry.
	Registerer prometheus.Registerer
	// Offline skips postgres, NATS and Google Calendar even when configured.
	Offline bool
	// Clock overrides time.Now for the extraction use case.
	Clock func() time.Time
	// Dates overrides the parser built from extraction.timezone.
	Dates *datemath.Parser
}

// App is the wired object graph. Optional parts are nil when not configured.
type App struct {
	Dates        *datemath.Parser
	Pool         *pgxpool.Pool
	Broker       *broker.Client
	Calendar     *gcalendar.Client
	Extraction   extraction.UseCase
	Notification notification.UseCase

	closers []func()
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Build wires the extraction and notification domains. Only a configured but
// unreachable database is fatal; every other backend degrades with a warning.
func Build(ctx context.Context, cfg *config.Config, l log.Logger, opt Options) (*App, error) {
	a := &App{}

	dates := opt.Dates
	if dates == nil {
		var err error
		if dates, err = datemath.NewParser(cfg.Extraction.Timezone); err != nil {
			l.Warnf(ctx, "Invalid timezone %q, falling back to UTC: %v", cfg.Extraction.Timezone, err)
			dates, _ = datemath.NewParser("UTC")
		}
	}
	a.Dates = dates

	rules, err := buildRules(cfg, dates)
	if err != nil {
		return nil, err
	}

	ucOpt := extractionUC.Options{
		Rules:             rules,
		Dates:             dates,
		Metrics:           extractionUC.MustNewMetrics(registerer(opt.Registerer)),
		Clock:             opt.Clock,
		ModelTimeout:      cfg.Extraction.ModelTimeout,
		DefaultParentName: cfg.Extraction.DefaultParentName,
		CalendarID:        cfg.GoogleCalendar.CalendarID,
	}

	if model := buildModel(ctx, cfg, dates, l); model != nil {
		ucOpt.Model = model
	}

	if cfg.OpenAI.APIKey != "" {
		tr, err := openaicompat.NewTranscriber(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, nil)
		if err != nil {
			l.Warnf(ctx, "Transcription not available (optional): %v", err)
		} else {
			ucOpt.Transcriber = tr
			l.Info(ctx, "Audio transcription enabled")
		}
	}

	if !opt.Offline {
		if err := a.connect(ctx, cfg, l, opt); err != nil {
			a.Close()
			return nil, err
		}
	}

	var publisher broker.Publisher = broker.Nop{}
	if a.Broker != nil {
		publisher = a.Broker
	}
	ucOpt.Publisher = publisher
	if a.Pool != nil {
		ucOpt.Repo = extractionRepo.New(a.Pool, l)
	}
	if a.Calendar != nil {
		ucOpt.Calendar = a.Calendar
	}

	uc, err := extractionUC.New(l, ucOpt)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Extraction = uc

	if a.Pool != nil {
		nuc, err := notificationUC.New(l, notificationRepo.New(a.Pool, l), publisher, dates.Location())
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Notification = nuc
	}

	return a, nil
}

func (a *App) connect(ctx context.Context, cfg *config.Config, l log.Logger, opt Options) error {
	if cfg.Postgres.URL != "" {
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		a.Pool = pool
		l.Info(ctx, "PostgreSQL connected")
	} else {
		l.Warn(ctx, "PostgreSQL not configured: confirm, actions and notifications are disabled")
	}

	if cfg.NATS.URL != "" {
		bc, err := broker.New(ctx, broker.Config{URL: cfg.NATS.URL, Token: cfg.NATS.Token, Name: opt.Name}, l)
		if err != nil {
			l.Warnf(ctx, "NATS not available (optional): %v", err)
		} else {
			a.Broker = bc
			a.closers = append(a.closers, bc.Close)
			l.Info(ctx, "NATS connected")
		}
	}

	if cfg.GoogleCalendar.CredentialsPath != "" {
		cal, err := gcalendar.NewClientFromCredentialsFile(ctx, cfg.GoogleCalendar.CredentialsPath, cfg.GoogleCalendar.TokenPath)
		if err != nil {
			l.Warnf(ctx, "Google Calendar not available (optional): %v", err)
		} else {
			a.Calendar = cal
			l.Info(ctx, "Google Calendar initialized")
		}
	}
	return nil
}

func buildRules(cfg *config.Config, dates *datemath.Parser) (*rulebased.Classifier, error) {
	if cfg.Extraction.RulesPath == "" {
		return rulebased.New(nil, dates), nil
	}
	table, err := rulebased.LoadTable(cfg.Extraction.RulesPath)
	if err != nil {
		return nil, err
	}
	return rulebased.New(table, dates), nil
}

// buildModel returns nil when no provider is enabled or none could start.
func buildModel(ctx context.Context, cfg *config.Config, dates *datemath.Parser, l log.Logger) *extractionLLM.Adapter {
	if !cfg.LLM.HasEnabledProvider() {
		l.Info(ctx, "No LLM provider enabled, extraction runs on the rule table")
		return nil
	}

	providers, warnings, err := llmprovider.InitializeProviders(&cfg.LLM)
	for _, w := range warnings {
		l.Warnf(ctx, "LLM provider skipped: %s", w)
	}
	if err != nil {
		l.Warnf(ctx, "LLM providers not available, extraction runs on the rule table: %v", err)
		return nil
	}

	manager := llmprovider.NewManager(providers, llmprovider.ManagerConfig(cfg.LLM), l)
	l.Infof(ctx, "LLM provider chain ready: %s (%d providers)", manager.Name(), len(providers))
	return extractionLLM.New(manager, dates, l)
}

func registerer(r prometheus.Registerer) prometheus.Registerer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r
}
