package rulebased

import (
	"strings"
	"time"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/pkg/datemath"
)

// Classifier is the deterministic keyword extractor used when no model answer is available.
// It never touches the network or the clock.
type Classifier struct {
	table *Table
	dates *datemath.Parser
}

// New creates a Classifier. A nil table means the embedded default.
func New(table *Table, dates *datemath.Parser) *Classifier {
	if table == nil {
		table = DefaultTable()
	}
	return &Classifier{table: table, dates: dates}
}

type templateData struct {
	Parent string
}

type summaryData struct {
	Parent   string
	Keywords string
	Lines    int
}

// Classify scans transcript against the rule table.
func (c *Classifier) Classify(transcript, parentLabel string, today time.Time) extraction.Draft {
	if strings.TrimSpace(parentLabel) == "" {
		parentLabel = extraction.DefaultParentName
	}
	data := templateData{Parent: parentLabel}

	draft := extraction.Draft{
		Keywords:  []string{},
		Schedules: []extraction.DraftSchedule{},
	}

	for _, r := range c.table.rules {
		if !r.matches(transcript) {
			continue
		}
		if len(draft.Keywords) < extraction.MaxKeywords {
			draft.Keywords = append(draft.Keywords, r.keyword)
		}
		if r.schedule != nil {
			draft.Schedules = append(draft.Schedules, c.schedule(*r.schedule, data, today))
		}
	}

	if len(draft.Schedules) > 0 {
		draft.Schedules = append(draft.Schedules, c.schedule(c.table.followUp, data, today))
	}

	draft.Mood = c.mood(transcript)
	draft.Summary = c.summary(transcript, parentLabel, draft.Keywords)

	return draft
}

func (c *Classifier) schedule(s compiledSchedule, data templateData, today time.Time) extraction.DraftSchedule {
	return extraction.DraftSchedule{
		Type:       s.typ,
		Topic:      render(s.topic, data),
		DueDate:    datemath.FormatDate(c.dates.Resolve(today, s.offsetDays)),
		Reason:     render(s.reason, data),
		Confidence: s.confidence,
	}
}

// mood checks positive terms first, so a transcript with both kinds reads as good.
func (c *Classifier) mood(transcript string) extraction.Mood {
	switch {
	case c.table.positive.MatchString(transcript):
		return extraction.MoodGood
	case c.table.concerned.MatchString(transcript):
		return extraction.MoodConcerned
	default:
		return extraction.MoodNeutral
	}
}

func (c *Classifier) summary(transcript, parentLabel string, keywords []string) string {
	kw := c.table.noKeywords
	if len(keywords) > 0 {
		kw = strings.Join(keywords, ", ")
	}
	return render(c.table.summary, summaryData{
		Parent:   parentLabel,
		Keywords: kw,
		Lines:    countLines(transcript),
	})
}

func countLines(transcript string) int {
	n := 0
	for _, line := range strings.Split(transcript, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
