package hackathon

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Timeline is a parsed submission period.
type Timeline struct {
	Start           time.Time
	FinalSubmission time.Time
	DaysToFinal     int
}

var monthByAbbrev = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

var (
	// "Dec 05, 2025 - Mar 30, 2026"
	fullRangePattern = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2}),\s*(\d{4})\s*-\s*([A-Za-z]{3})\s+(\d{1,2}),\s*(\d{4})$`)
	// "Feb 02 - Mar 16, 2026"
	monthToMonthPattern = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2})\s*-\s*([A-Za-z]{3})\s+(\d{1,2}),\s*(\d{4})$`)
	// "Feb 01 - 28, 2026"
	sameMonthPattern = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2})\s*-\s*(\d{1,2}),\s*(\d{4})$`)
	// "Feb 28, 2026"
	singleDayPattern = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2}),\s*(\d{4})$`)

	whitespace = regexp.MustCompile(`\s+`)
)

// ParseTimeline parses a free-text submission period such as
// "Feb 02 - Mar 16, 2026". The grammars are tried from most to least explicit
// and the first match wins. fallbackNow supplies the start year for same-month
// ranges; pass the zero time when no reference is available.
//
// The second return value is false when the text matches no grammar, names an
// unknown month, describes an impossible calendar date, or ends before it
// starts.
func ParseTimeline(text string, fallbackNow time.Time) (Timeline, bool) {
	normalized := collapseSpace(text)
	if normalized == "" {
		return Timeline{}, false
	}

	if m := fullRangePattern.FindStringSubmatch(normalized); m != nil {
		startMonth, ok1 := monthNumber(m[1])
		endMonth, ok2 := monthNumber(m[4])
		if !ok1 || !ok2 {
			return Timeline{}, false
		}
		return buildTimeline(atoi(m[3]), startMonth, atoi(m[2]), atoi(m[6]), endMonth, atoi(m[5]))
	}

	if m := monthToMonthPattern.FindStringSubmatch(normalized); m != nil {
		startMonth, ok1 := monthNumber(m[1])
		endMonth, ok2 := monthNumber(m[3])
		if !ok1 || !ok2 {
			return Timeline{}, false
		}
		endYear := atoi(m[5])
		startYear := endYear
		if startMonth > endMonth {
			// Period crosses a December to January boundary.
			startYear = endYear - 1
		}
		return buildTimeline(startYear, startMonth, atoi(m[2]), endYear, endMonth, atoi(m[4]))
	}

	if m := sameMonthPattern.FindStringSubmatch(normalized); m != nil {
		month, ok := monthNumber(m[1])
		if !ok {
			return Timeline{}, false
		}
		endYear := atoi(m[4])
		startYear := endYear
		if !fallbackNow.IsZero() && fallbackNow.UTC().Year() < endYear {
			startYear = fallbackNow.UTC().Year()
		}
		return buildTimeline(startYear, month, atoi(m[2]), endYear, month, atoi(m[3]))
	}

	if m := singleDayPattern.FindStringSubmatch(normalized); m != nil {
		month, ok := monthNumber(m[1])
		if !ok {
			return Timeline{}, false
		}
		year, day := atoi(m[3]), atoi(m[2])
		return buildTimeline(year, month, day, year, month, day)
	}

	return Timeline{}, false
}

func buildTimeline(startYear int, startMonth time.Month, startDay int, endYear int, endMonth time.Month, endDay int) (Timeline, bool) {
	start, ok := calendarDate(startYear, startMonth, startDay, 0, 0, 0)
	if !ok {
		return Timeline{}, false
	}
	final, ok := calendarDate(endYear, endMonth, endDay, 23, 59, 59)
	if !ok {
		return Timeline{}, false
	}
	if final.Before(start) {
		return Timeline{}, false
	}
	return Timeline{
		Start:           start,
		FinalSubmission: final,
		DaysToFinal:     DaysBetween(start, final),
	}, true
}

// calendarDate builds a UTC instant, rejecting dates time.Date would
// otherwise roll over (Feb 30 becoming Mar 2).
func calendarDate(year int, month time.Month, day, hour, min, sec int) (time.Time, bool) {
	if year < 1 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func monthNumber(abbrev string) (time.Month, bool) {
	key := strings.ToLower(strings.TrimSpace(abbrev))
	if len(key) > 3 {
		key = key[:3]
	}
	m, ok := monthByAbbrev[key]
	return m, ok
}

func collapseSpace(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// atoi is only called on regexp groups that matched \d+.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
