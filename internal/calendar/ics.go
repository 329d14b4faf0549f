package calendar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
)

// DefaultCalendarName is used for X-WR-CALNAME when no name is given.
const DefaultCalendarName = "Hackathon submission deadlines"

// maxLineOctets is the RFC 5545 content line limit, excluding CRLF.
const maxLineOctets = 75

// GenerateICS builds one VCALENDAR with an all-day VEVENT on the final
// submission day of each record. It returns an empty string when there is
// nothing to export.
func GenerateICS(records []*hackathon.Record, calendarName string) string {
	return generate(records, calendarName, time.Now())
}

func generate(records []*hackathon.Record, calendarName string, now time.Time) string {
	count := 0
	for _, r := range records {
		if r != nil {
			count++
		}
	}
	if count == 0 {
		return ""
	}

	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:-//HackHunt//hackhunt//EN")
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	if calendarName != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(calendarName))
	}

	stamp := formatICSTime(now)
	for _, r := range records {
		if r == nil {
			continue
		}
		writeEvent(&ics, r, stamp)
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String()
}

func writeEvent(ics *strings.Builder, r *hackathon.Record, stamp string) {
	day := r.FinalSubmissionDate.UTC()

	writeLine(ics, "BEGIN:VEVENT")
	writeLine(ics, fmt.Sprintf("UID:%s@hackhunt", r.ID))
	writeLine(ics, "DTSTAMP:"+stamp)

	// All-day event; DTEND is exclusive.
	writeLine(ics, "DTSTART;VALUE=DATE:"+formatICSDate(day))
	writeLine(ics, "DTEND;VALUE=DATE:"+formatICSDate(day.AddDate(0, 0, 1)))

	writeLine(ics, "SUMMARY:"+escapeICS(r.Title+" (submission deadline)"))
	writeLine(ics, "DESCRIPTION:"+escapeICS(description(r)))
	if r.URL != "" {
		writeLine(ics, "URL:"+r.URL)
	}
	writeLine(ics, "LOCATION:"+escapeICS(r.LocationText))
	if r.HasCoordinates() {
		writeLine(ics, fmt.Sprintf("GEO:%.6f;%.6f", *r.Latitude, *r.Longitude))
	}

	writeLine(ics, "STATUS:CONFIRMED")
	writeLine(ics, "SEQUENCE:0")
	writeLine(ics, "TRANSP:TRANSPARENT")
	writeLine(ics, "END:VEVENT")
}

func description(r *hackathon.Record) string {
	lines := []string{
		fmt.Sprintf("Platform: %s", r.SourcePlatform),
		fmt.Sprintf("Format: %s", r.Format),
		fmt.Sprintf("Location: %s", r.LocationText),
	}
	if !r.StartDate.IsZero() {
		lines = append(lines, fmt.Sprintf("Starts: %s", r.StartDate.UTC().Format("2006-01-02")))
	}
	if len(r.Themes) > 0 {
		lines = append(lines, "Themes: "+strings.Join(r.Themes, ", "))
	}
	if r.URL != "" {
		lines = append(lines, "", "Details: "+r.URL)
	}
	return strings.Join(lines, "\n")
}

// WriteICS writes the calendar for records to path, creating parent
// directories as needed. It returns the number of events written.
func WriteICS(path, calendarName string, records []*hackathon.Record) (int, error) {
	content := GenerateICS(records, calendarName)
	if content == "" {
		return 0, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("creating calendar directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return 0, fmt.Errorf("writing calendar: %w", err)
	}
	return strings.Count(content, "BEGIN:VEVENT"), nil
}

// writeLine appends a content line, folding it at 75 octets without
// splitting a UTF-8 sequence.
func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines lose one octet to the leading space.
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
