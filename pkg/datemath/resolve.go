package datemath

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of every due date.
const DateLayout = "2006-01-02"

// Resolve returns the start of the day offsetDays after reference. The
// reference day is the calendar day of reference in the parser's timezone,
// not in reference's own location: pass an instant (time.Now) or a day built
// with ParseDate/Today. Offsets are unsigned so a resolved date is never
// before the reference day.
func (p *Parser) Resolve(reference time.Time, offsetDays uint) time.Time {
	return p.startOfDay(reference.AddDate(0, 0, int(offsetDays)))
}

// Today returns the start of the day containing now.
func (p *Parser) Today(now time.Time) time.Time {
	return p.startOfDay(now)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into the start of that day in the
// parser's timezone.
func (p *Parser) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, p.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseDateOrRelative accepts either YYYY-MM-DD or any phrase Parse understands.
// Anything else is an error wrapping ErrUnknownPhrase.
func (p *Parser) ParseDateOrRelative(s string, baseTime time.Time) (time.Time, error) {
	if t, err := p.ParseDate(s); err == nil {
		return t, nil
	}
	return p.Parse(s, baseTime)
}

// Week describes the calendar around a reference day (Monday to Sunday).
type Week struct {
	Today     time.Time
	Tomorrow  time.Time
	WeekStart time.Time
	WeekEnd   time.Time
}

// WeekOf returns the week containing reference.
func (p *Parser) WeekOf(reference time.Time) Week {
	today := p.startOfDay(reference)

	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := today.AddDate(0, 0, -(weekday - 1))

	return Week{
		Today:     today,
		Tomorrow:  today.AddDate(0, 0, 1),
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 6),
	}
}
