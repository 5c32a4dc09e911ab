package telegram

import (
	"fmt"
	"math"
	"strings"

	"parent-care-assistant/internal/extraction"
)

var moodLabels = map[extraction.Mood]string{
	extraction.MoodGood:      "😊 좋음",
	extraction.MoodNeutral:   "😐 보통",
	extraction.MoodConcerned: "😟 걱정",
}

// formatResult renders an extraction as a numbered list the user can pick from.
func formatResult(r extraction.ExtractionResult) string {
	var b strings.Builder

	if r.Summary != "" {
		fmt.Fprintf(&b, "📋 %s\n", r.Summary)
	}
	if label, ok := moodLabels[r.Mood]; ok {
		fmt.Fprintf(&b, "분위기: %s\n", label)
	}
	if len(r.Keywords) > 0 {
		fmt.Fprintf(&b, "키워드: %s\n", strings.Join(r.Keywords, ", "))
	}

	if len(r.Schedules) == 0 {
		b.WriteString("\n")
		b.WriteString(msgNoSchedules)
		return b.String()
	}

	b.WriteString("\n추천 일정\n")
	for i, s := range r.Schedules {
		fmt.Fprintf(&b, "%d. [%s] %s (%d%%)\n", i+1, s.DueDate, s.Topic, int(math.Round(s.Confidence*100)))
		if s.Reason != "" {
			fmt.Fprintf(&b, "   %s\n", s.Reason)
		}
	}
	b.WriteString("\n저장하려면 /confirm 1 3 처럼 번호를 보내 주세요.")

	return b.String()
}
