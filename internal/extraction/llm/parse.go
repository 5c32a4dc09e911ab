package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"parent-care-assistant/internal/extraction"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// modelResponse keeps schedules raw so one mistyped entry is dropped on its
// own instead of failing the whole reply.
type modelResponse struct {
	Summary   string            `json:"summary"`
	Keywords  []string          `json:"keywords"`
	Mood      string            `json:"mood"`
	Schedules []json.RawMessage `json:"schedules"`
}

type modelSchedule struct {
	Type       string   `json:"type"`
	Topic      string   `json:"topic"`
	DueDate    string   `json:"dueDate"`
	Reason     string   `json:"reason"`
	Confidence *float64 `json:"confidence"`
}

// stripFence returns the body of the first fenced block, or text unchanged.
func stripFence(text string) string {
	if m := fenceRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// braceSlice cuts text from the first '{' to the last '}'.
func braceSlice(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseResponse runs the bounded recovery ladder: fence strip, direct decode,
// brace slice, one jsonrepair pass. Anything else is malformed.
func parseResponse(raw string) (modelResponse, error) {
	var out modelResponse

	text := stripFence(raw)
	err := json.Unmarshal([]byte(text), &out)
	if err == nil {
		return out, nil
	}

	sliced, ok := braceSlice(text)
	if !ok {
		return modelResponse{}, extraction.NewMalformedError(raw, err)
	}
	out = modelResponse{}
	if err = json.Unmarshal([]byte(sliced), &out); err == nil {
		return out, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(sliced)
	if repairErr != nil {
		return modelResponse{}, extraction.NewMalformedError(raw, errors.Join(err, repairErr))
	}
	out = modelResponse{}
	if err = json.Unmarshal([]byte(repaired), &out); err != nil {
		return modelResponse{}, extraction.NewMalformedError(raw, err)
	}
	return out, nil
}
