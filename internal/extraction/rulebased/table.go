package rulebased

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"parent-care-assistant/internal/extraction"
)

//go:embed rules.yaml
var defaultRules []byte

// ScheduleSpec describes the one schedule a matched category emits.
type ScheduleSpec struct {
	Type       extraction.ScheduleType `yaml:"type"`
	OffsetDays uint                    `yaml:"offset_days"`
	Confidence float64                 `yaml:"confidence"`
	Topic      string                  `yaml:"topic"`
	Reason     string                  `yaml:"reason"`
}

// Rule is one keyword category.
type Rule struct {
	Category string        `yaml:"category"`
	Keyword  string        `yaml:"keyword"`
	Patterns []string      `yaml:"patterns"`
	Schedule *ScheduleSpec `yaml:"schedule,omitempty"`
}

// EmitsSchedule reports whether a match on r produces a schedule.
func (r Rule) EmitsSchedule() bool {
	return r.Schedule != nil
}

type moodSpec struct {
	Positive  string `yaml:"positive"`
	Concerned string `yaml:"concerned"`
}

// Document is the YAML shape of a rule table.
type Document struct {
	Categories []Rule       `yaml:"categories"`
	FollowUp   ScheduleSpec `yaml:"follow_up"`
	Mood       moodSpec     `yaml:"mood"`
	Summary    string       `yaml:"summary"`
	NoKeywords string       `yaml:"no_keywords"`
}

// Table is a compiled Document ready for classification.
type Table struct {
	rules      []compiledRule
	followUp   compiledSchedule
	positive   *regexp.Regexp
	concerned  *regexp.Regexp
	summary    *template.Template
	noKeywords string
}

type compiledRule struct {
	category string
	keyword  string
	patterns []*regexp.Regexp
	schedule *compiledSchedule
}

type compiledSchedule struct {
	typ        extraction.ScheduleType
	offsetDays uint
	confidence float64
	topic      *template.Template
	reason     *template.Template
}

// DefaultTable returns the embedded rule table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("rulebased: embedded rules: %v", err))
	}
	return t
}

// LoadTable reads and compiles a rule table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable compiles a YAML rule document.
func ParseTable(data []byte) (*Table, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return Compile(doc)
}

// Compile validates doc and compiles its patterns and templates.
func Compile(doc Document) (*Table, error) {
	if len(doc.Categories) == 0 {
		return nil, errors.New("rules: no categories")
	}

	t := &Table{
		rules:      make([]compiledRule, 0, len(doc.Categories)),
		noKeywords: doc.NoKeywords,
	}

	for i, r := range doc.Categories {
		if r.Keyword == "" {
			return nil, fmt.Errorf("rules: category %d (%s): keyword is required", i, r.Category)
		}
		if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("rules: category %s: at least one pattern is required", r.Category)
		}

		cr := compiledRule{category: r.Category, keyword: r.Keyword}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("rules: category %s: %w", r.Category, err)
			}
			cr.patterns = append(cr.patterns, re)
		}

		if r.Schedule != nil {
			cs, err := compileSchedule(r.Category, *r.Schedule)
			if err != nil {
				return nil, err
			}
			cr.schedule = &cs
		}
		t.rules = append(t.rules, cr)
	}

	followUp, err := compileSchedule("follow_up", doc.FollowUp)
	if err != nil {
		return nil, err
	}
	t.followUp = followUp

	if t.positive, err = regexp.Compile(doc.Mood.Positive); err != nil {
		return nil, fmt.Errorf("rules: mood.positive: %w", err)
	}
	if t.concerned, err = regexp.Compile(doc.Mood.Concerned); err != nil {
		return nil, fmt.Errorf("rules: mood.concerned: %w", err)
	}
	if t.summary, err = template.New("summary").Option("missingkey=error").Parse(doc.Summary); err != nil {
		return nil, fmt.Errorf("rules: summary: %w", err)
	}

	return t, nil
}

func compileSchedule(category string, s ScheduleSpec) (compiledSchedule, error) {
	if !s.Type.IsValid() {
		return compiledSchedule{}, fmt.Errorf("rules: %s: unknown schedule type %q", category, s.Type)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return compiledSchedule{}, fmt.Errorf("rules: %s: confidence %v out of range", category, s.Confidence)
	}

	topic, err := template.New(category + ".topic").Parse(s.Topic)
	if err != nil {
		return compiledSchedule{}, fmt.Errorf("rules: %s topic: %w", category, err)
	}
	reason, err := template.New(category + ".reason").Parse(s.Reason)
	if err != nil {
		return compiledSchedule{}, fmt.Errorf("rules: %s reason: %w", category, err)
	}

	return compiledSchedule{
		typ:        s.Type,
		offsetDays: s.OffsetDays,
		confidence: s.Confidence,
		topic:      topic,
		reason:     reason,
	}, nil
}

// Categories lists the category names in check order.
func (t *Table) Categories() []string {
	out := make([]string, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.category
	}
	return out
}

func (r compiledRule) matches(text string) bool {
	for _, re := range r.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func render(tmpl *template.Template, data any) string {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return ""
	}
	return sb.String()
}
