package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/pkg/datemath"
)

// toDraft normalizes a decoded reply. Invalid schedules are dropped and
// returned alongside so the caller can log them.
func toDraft(resp modelResponse, dates *datemath.Parser) (extraction.Draft, []error) {
	var dropped []error

	draft := extraction.Draft{
		Summary:   strings.TrimSpace(resp.Summary),
		Keywords:  normalizeKeywords(resp.Keywords),
		Mood:      extraction.Mood(strings.ToLower(strings.TrimSpace(resp.Mood))),
		Schedules: make([]extraction.DraftSchedule, 0, len(resp.Schedules)),
	}
	if !draft.Mood.IsValid() {
		draft.Mood = extraction.MoodNeutral
	}

	for i, s := range resp.Schedules {
		ds, err := validateSchedule(i, s, dates)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		draft.Schedules = append(draft.Schedules, ds)
	}

	return draft, dropped
}

func validateSchedule(i int, raw json.RawMessage, dates *datemath.Parser) (extraction.DraftSchedule, error) {
	var s modelSchedule
	if err := json.Unmarshal(raw, &s); err != nil {
		field := "schedule"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field = typeErr.Field
		}
		return extraction.DraftSchedule{}, &extraction.ValidationError{Index: i, Field: field, Value: truncate(string(raw), maxRawValue)}
	}

	typ := extraction.ScheduleType(strings.TrimSpace(s.Type))
	if !typ.IsValid() {
		return extraction.DraftSchedule{}, &extraction.ValidationError{Index: i, Field: "type", Value: s.Type}
	}

	if s.Confidence == nil {
		return extraction.DraftSchedule{}, &extraction.ValidationError{Index: i, Field: "confidence", Value: "<missing>"}
	}
	conf := *s.Confidence
	if conf < 0 || conf > 1 {
		return extraction.DraftSchedule{}, &extraction.ValidationError{Index: i, Field: "confidence", Value: formatFloat(conf)}
	}

	due := strings.TrimSpace(s.DueDate)
	if _, err := dates.ParseDate(due); err != nil {
		return extraction.DraftSchedule{}, &extraction.ValidationError{Index: i, Field: "dueDate", Value: s.DueDate}
	}

	topic := strings.TrimSpace(s.Topic)
	if topic == "" {
		return extraction.DraftSchedule{}, &extraction.ValidationError{Index: i, Field: "topic", Value: s.Topic}
	}

	return extraction.DraftSchedule{
		Type:       typ,
		Topic:      topic,
		DueDate:    due,
		Reason:     strings.TrimSpace(s.Reason),
		Confidence: conf,
	}, nil
}

const maxRawValue = 80

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out = append(out, k)
		if len(out) == extraction.MaxKeywords {
			break
		}
	}
	return out
}
