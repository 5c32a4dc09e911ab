package datemath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownPhrase is returned by Parse for text it does not understand.
var ErrUnknownPhrase = errors.New("unknown relative date")

// Parser converts relative date strings to absolute calendar days.
type Parser struct {
	location *time.Location
}

// NewParser creates a new date parser for the given IANA timezone string.
// e.g. "Asia/Seoul"
func NewParser(timezone string) (*Parser, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Parser{location: loc}, nil
}

// Location returns the parser's timezone.
func (p *Parser) Location() *time.Location {
	return p.location
}

var (
	inDurationRe = regexp.MustCompile(`^in (\d+) (day|days|week|weeks|month|months)$`)
	koDurationRe = regexp.MustCompile(`^(\d+)\s*(일|주|개월|달)\s*(후|뒤)$`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
	"월요일":       time.Monday,
	"화요일":       time.Tuesday,
	"수요일":       time.Wednesday,
	"목요일":       time.Thursday,
	"금요일":       time.Friday,
	"토요일":       time.Saturday,
	"일요일":       time.Sunday,
}

// Parse converts a relative date string to the start of an absolute day.
// English ("tomorrow", "in 3 days", "next monday") and Korean ("내일",
// "3일 후", "다음 주 화요일") phrases are understood. The baseTime is the
// reference point; Parse never reads the clock.
func (p *Parser) Parse(relative string, baseTime time.Time) (time.Time, error) {
	relative = strings.ToLower(strings.TrimSpace(relative))

	switch relative {
	case "today", "오늘":
		return p.startOfDay(baseTime), nil
	case "tomorrow", "내일":
		return p.startOfDay(baseTime.AddDate(0, 0, 1)), nil
	case "모레":
		return p.startOfDay(baseTime.AddDate(0, 0, 2)), nil
	case "yesterday", "어제":
		return p.startOfDay(baseTime.AddDate(0, 0, -1)), nil
	}

	if strings.HasPrefix(relative, "in ") {
		return p.parseInDuration(relative, baseTime)
	}
	if koDurationRe.MatchString(relative) {
		return p.parseKoreanDuration(relative, baseTime)
	}

	if strings.HasPrefix(relative, "next ") {
		return p.parseNextWeekday(strings.TrimPrefix(relative, "next "), baseTime)
	}
	if strings.HasPrefix(relative, "다음 주 ") {
		return p.parseNextWeekday(strings.TrimPrefix(relative, "다음 주 "), baseTime)
	}

	return baseTime, fmt.Errorf("%w: %q", ErrUnknownPhrase, relative)
}

// parseInDuration handles patterns like "in 3 days", "in 2 weeks", "in 1 month".
func (p *Parser) parseInDuration(relative string, baseTime time.Time) (time.Time, error) {
	matches := inDurationRe.FindStringSubmatch(relative)
	if len(matches) != 3 {
		return baseTime, fmt.Errorf("invalid duration format: %q", relative)
	}

	amount, _ := strconv.Atoi(matches[1])
	unit := matches[2]

	switch {
	case strings.HasPrefix(unit, "day"):
		return p.startOfDay(baseTime.AddDate(0, 0, amount)), nil
	case strings.HasPrefix(unit, "week"):
		return p.startOfDay(baseTime.AddDate(0, 0, amount*7)), nil
	default:
		return p.startOfDay(baseTime.AddDate(0, amount, 0)), nil
	}
}

// parseKoreanDuration handles "3일 후", "2주 뒤", "1개월 후".
func (p *Parser) parseKoreanDuration(relative string, baseTime time.Time) (time.Time, error) {
	matches := koDurationRe.FindStringSubmatch(relative)
	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return baseTime, fmt.Errorf("invalid duration format: %q", relative)
	}

	switch matches[2] {
	case "일":
		return p.startOfDay(baseTime.AddDate(0, 0, amount)), nil
	case "주":
		return p.startOfDay(baseTime.AddDate(0, 0, amount*7)), nil
	default:
		return p.startOfDay(baseTime.AddDate(0, amount, 0)), nil
	}
}

// parseNextWeekday returns the first matching weekday strictly after baseTime.
func (p *Parser) parseNextWeekday(dayName string, baseTime time.Time) (time.Time, error) {
	targetWeekday, ok := weekdays[strings.TrimSpace(dayName)]
	if !ok {
		return baseTime, fmt.Errorf("unknown weekday: %q", dayName)
	}

	daysUntil := int(targetWeekday - baseTime.In(p.location).Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}

	return p.startOfDay(baseTime.AddDate(0, 0, daysUntil)), nil
}

// startOfDay returns midnight at the start of the given day in the parser's timezone.
func (p *Parser) startOfDay(t time.Time) time.Time {
	t = t.In(p.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.location)
}
