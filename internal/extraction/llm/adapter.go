package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/pkg/datemath"
	"parent-care-assistant/pkg/llmprovider"
	"parent-care-assistant/pkg/log"
)

const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.2
)

// Generator is the model client. *llmprovider.Manager satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error)
}

// Adapter extracts schedules with a language model. It never retries.
type Adapter struct {
	gen   Generator
	dates *datemath.Parser
	l     log.Logger
}

// New creates an Adapter. A nil gen yields an adapter that always reports
// extraction.ErrModelUnavailable.
func New(gen Generator, dates *datemath.Parser, l log.Logger) *Adapter {
	return &Adapter{gen: gen, dates: dates, l: l}
}

// Extract runs one model call and turns the reply into a draft.
func (a *Adapter) Extract(ctx context.Context, transcript, parentName string, today time.Time) (extraction.Draft, error) {
	if a == nil || a.gen == nil {
		return extraction.Draft{}, extraction.ErrModelUnavailable
	}

	req := llmprovider.UserText(systemPrompt, buildPrompt(transcript, parentName, a.dates.WeekOf(today)))
	req.Temperature = defaultTemperature
	req.MaxTokens = defaultMaxTokens
	req.JSONOutput = true

	resp, err := a.gen.GenerateContent(ctx, req)
	if err != nil {
		return extraction.Draft{}, fmt.Errorf("%w: %w", extraction.ErrUpstream, err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return extraction.Draft{}, fmt.Errorf("%w: %w", extraction.ErrUpstream, llmprovider.ErrEmptyResponse)
	}

	parsed, err := parseResponse(resp.Text)
	if err != nil {
		return extraction.Draft{}, err
	}

	draft, dropped := toDraft(parsed, a.dates)
	for _, d := range dropped {
		a.l.Debugf(ctx, "extraction.llm.Extract: dropped schedule: %v", d)
	}
	if draft.Summary == "" {
		return extraction.Draft{}, extraction.NewMalformedError(resp.Text, errors.New("summary is empty"))
	}

	return draft, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
