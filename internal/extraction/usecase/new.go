package usecase

import (
	"errors"
	"time"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/internal/extraction/repository"
	"parent-care-assistant/internal/extraction/rulebased"
	"parent-care-assistant/pkg/broker"
	"parent-care-assistant/pkg/datemath"
	"parent-care-assistant/pkg/log"
)

const defaultModelTimeout = 30 * time.Second

// Options bundles the collaborators of the extraction use case. Only Dates is
// required; every other field may be left zero.
type Options struct {
	// Model is the language-model path. Nil means no model is configured and
	// every extraction runs on the rule table.
	Model extraction.ModelExtractor
	Rules extraction.RuleClassifier
	Dates *datemath.Parser

	Repo        repository.Repository
	Transcriber extraction.Transcriber
	Publisher   broker.Publisher
	Calendar    extraction.CalendarClient
	CalendarID  string
	Metrics     *Metrics

	Clock             func() time.Time
	ModelTimeout      time.Duration
	DefaultParentName string
}

// implUseCase is the private implementation of extraction.UseCase.
type implUseCase struct {
	l             log.Logger
	model         extraction.ModelExtractor
	rules         extraction.RuleClassifier
	dates         *datemath.Parser
	repo          repository.Repository
	transcriber   extraction.Transcriber
	publisher     broker.Publisher
	calendar      extraction.CalendarClient
	calendarID    string
	metrics       *Metrics
	clock         func() time.Time
	modelTimeout  time.Duration
	defaultParent string
}

// New creates a new extraction UseCase implementation.
func New(l log.Logger, opt Options) (*implUseCase, error) {
	if opt.Dates == nil {
		return nil, errors.New("extraction usecase: date parser is required")
	}
	if l == nil {
		l = log.NewNop()
	}

	uc := &implUseCase{
		l:             l,
		model:         opt.Model,
		rules:         opt.Rules,
		dates:         opt.Dates,
		repo:          opt.Repo,
		transcriber:   opt.Transcriber,
		publisher:     opt.Publisher,
		calendar:      opt.Calendar,
		calendarID:    opt.CalendarID,
		metrics:       opt.Metrics,
		clock:         opt.Clock,
		modelTimeout:  opt.ModelTimeout,
		defaultParent: opt.DefaultParentName,
	}
	if uc.rules == nil {
		uc.rules = rulebased.New(nil, opt.Dates)
	}
	if uc.publisher == nil {
		uc.publisher = broker.Nop{}
	}
	if uc.clock == nil {
		uc.clock = time.Now
	}
	if uc.modelTimeout <= 0 {
		uc.modelTimeout = defaultModelTimeout
	}
	if uc.defaultParent == "" {
		uc.defaultParent = extraction.DefaultParentName
	}
	return uc, nil
}

var _ extraction.UseCase = (*implUseCase)(nil)
