// Package ics writes iCalendar (RFC 5545) documents made of all-day events.
package ics

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	productID   = "-//parent-care-assistant//care actions//KO"
	dateLayout  = "20060102"
	stampLayout = "20060102T150405Z"
	lineLimit   = 75 // octets, excluding CRLF
)

// Event is one all-day VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Date        time.Time // calendar day in the caller's timezone
}

// Encoder writes a VCALENDAR to an underlying writer.
type Encoder struct {
	w   *bufio.Writer
	now func() time.Time
}

// NewEncoder returns an encoder that stamps events with the current time.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), now: time.Now}
}

// WithClock overrides the DTSTAMP source.
func (e *Encoder) WithClock(now func() time.Time) *Encoder {
	e.now = now
	return e
}

// Encode writes calendarName and events as a complete document.
func (e *Encoder) Encode(calendarName string, events []Event) error {
	stamp := e.now().UTC().Format(stampLayout)

	e.line("BEGIN:VCALENDAR")
	e.line("VERSION:2.0")
	e.line("PRODID:" + productID)
	e.line("CALSCALE:GREGORIAN")
	e.line("METHOD:PUBLISH")
	if calendarName != "" {
		e.line("X-WR-CALNAME:" + escapeText(calendarName))
	}

	for _, ev := range events {
		e.line("BEGIN:VEVENT")
		e.line("UID:" + escapeText(ev.UID))
		e.line("DTSTAMP:" + stamp)
		e.line("DTSTART;VALUE=DATE:" + ev.Date.Format(dateLayout))
		e.line("DTEND;VALUE=DATE:" + ev.Date.AddDate(0, 0, 1).Format(dateLayout))
		e.line("SUMMARY:" + escapeText(ev.Summary))
		if ev.Description != "" {
			e.line("DESCRIPTION:" + escapeText(ev.Description))
		}
		e.line("TRANSP:TRANSPARENT")
		e.line("END:VEVENT")
	}

	e.line("END:VCALENDAR")
	return e.w.Flush()
}

// Encode is a shorthand for NewEncoder(w).Encode.
func Encode(w io.Writer, calendarName string, events []Event) error {
	return NewEncoder(w).Encode(calendarName, events)
}

func (e *Encoder) line(s string) {
	for _, part := range fold(s) {
		e.w.WriteString(part)
		e.w.WriteString("\r\n")
	}
}

// fold splits s into content lines of at most 75 octets without cutting a
// UTF-8 sequence. Continuation lines start with a single space.
func fold(s string) []string {
	if len(s) <= lineLimit {
		return []string{s}
	}

	var parts []string
	for len(s) > lineLimit {
		cut := lineLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		parts = append(parts, s[:cut])
		s = " " + s[cut:]
	}
	return append(parts, s)
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// String renders a document into memory.
func String(calendarName string, events []Event) (string, error) {
	var sb strings.Builder
	if err := Encode(&sb, calendarName, events); err != nil {
		return "", fmt.Errorf("encode ics: %w", err)
	}
	return sb.String(), nil
}
