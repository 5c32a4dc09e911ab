package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"parent-care-assistant/internal/extraction"
	tgDelivery "parent-care-assistant/internal/extraction/delivery/telegram"
	"parent-care-assistant/internal/middleware"
	"parent-care-assistant/pkg/log"
)

const shutdownTimeout = 10 * time.Second

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	// Server
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string

	middleware middleware.Config
	gatherer   prometheus.Gatherer
	readiness  func(ctx context.Context) error

	// Extraction domain
	extractionUC    extraction.UseCase
	telegramHandler tgDelivery.Handler
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string

	Middleware middleware.Config

	// MetricsGatherer backs GET /metrics. Nil disables the route.
	MetricsGatherer prometheus.Gatherer
	// Readiness is checked by GET /ready, e.g. a database ping. Nil means always ready.
	Readiness func(ctx context.Context) error

	// Extraction domain
	ExtractionUseCase extraction.UseCase
	TelegramHandler   tgDelivery.Handler
}

// New creates a new HTTPServer instance and maps its routes.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:               logger,
		gin:             gin.New(),
		port:            cfg.Port,
		mode:            cfg.Mode,
		environment:     cfg.Environment,
		middleware:      cfg.Middleware,
		gatherer:        cfg.MetricsGatherer,
		readiness:       cfg.Readiness,
		extractionUC:    cfg.ExtractionUseCase,
		telegramHandler: cfg.TelegramHandler,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}
	if err := srv.mapHandlers(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.extractionUC == nil {
		return errors.New("extraction usecase is required")
	}
	return nil
}
