package hackathon

import (
	"strings"
	"time"
)

// Format describes how a hackathon is attended.
type Format string

const (
	FormatOnline  Format = "Online"
	FormatOffline Format = "Offline"
	FormatHybrid  Format = "Hybrid"
)

// Valid reports whether f is one of the three known formats.
func (f Format) Valid() bool {
	switch f {
	case FormatOnline, FormatOffline, FormatHybrid:
		return true
	}
	return false
}

// Platform is the listing site a record was ingested from.
type Platform string

const (
	PlatformDevpost     Platform = "Devpost"
	PlatformDevfolio    Platform = "Devfolio"
	PlatformHackerEarth Platform = "HackerEarth"
	PlatformUnstop      Platform = "Unstop"
	PlatformMLH         Platform = "MLH"
)

// Source keys, used for CLI selection and as id prefixes.
const (
	SourceDevpost     = "devpost"
	SourceDevfolio    = "devfolio"
	SourceHackerEarth = "hackerearth"
	SourceUnstop      = "unstop"
	SourceMLH         = "mlh"
)

// SupportedSources lists every source key in ingestion order.
var SupportedSources = []string{
	SourceDevpost,
	SourceDevfolio,
	SourceHackerEarth,
	SourceUnstop,
	SourceMLH,
}

var platformBySource = map[string]Platform{
	SourceDevpost:     PlatformDevpost,
	SourceDevfolio:    PlatformDevfolio,
	SourceHackerEarth: PlatformHackerEarth,
	SourceUnstop:      PlatformUnstop,
	SourceMLH:         PlatformMLH,
}

// PlatformForSource maps a source key to its platform.
func PlatformForSource(key string) (Platform, bool) {
	p, ok := platformBySource[strings.ToLower(strings.TrimSpace(key))]
	return p, ok
}

// PlatformsForSources maps source keys to platforms, skipping unknown keys.
func PlatformsForSources(keys []string) []Platform {
	platforms := make([]Platform, 0, len(keys))
	seen := make(map[Platform]bool)
	for _, key := range keys {
		p, ok := PlatformForSource(key)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		platforms = append(platforms, p)
	}
	return platforms
}

// ResolveSources parses a comma-separated source list. Unknown keys are
// ignored; an empty or entirely invalid list selects every source.
func ResolveSources(raw string) []string {
	selected := make([]string, 0, len(SupportedSources))
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		key := strings.ToLower(strings.TrimSpace(part))
		if _, ok := platformBySource[key]; !ok || seen[key] {
			continue
		}
		seen[key] = true
		selected = append(selected, key)
	}
	if len(selected) == 0 {
		return append([]string(nil), SupportedSources...)
	}
	return selected
}

// Placeholder values used when a source omits a field.
const (
	UntitledTitle       = "Untitled Hackathon"
	LocationGlobal      = "Global"
	LocationTBD         = "Location TBD"
	LocationUnspecified = "Unspecified"
)

// Record is the canonical, source-independent representation of one event.
type Record struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	URL                 string    `json:"url"`
	SourcePlatform      Platform  `json:"source_platform"`
	Format              Format    `json:"format"`
	LocationText        string    `json:"location_text"`
	Latitude            *float64  `json:"latitude"`
	Longitude           *float64  `json:"longitude"`
	StartDate           time.Time `json:"start_date"`
	FinalSubmissionDate time.Time `json:"final_submission_date"`
	DaysToFinal         int       `json:"days_to_final"`
	Themes              []string  `json:"themes"`
	OrganizerPastEvents int       `json:"organizer_past_events"`
	Prizes              []Prize   `json:"prizes"`
	CreatedAt           time.Time `json:"created_at"`
}

// RecordID joins a source key and a native id into a canonical id.
func RecordID(sourceKey, nativeID string) string {
	return sourceKey + "-" + nativeID
}

// HasCoordinates reports whether both latitude and longitude are known.
func (r *Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SetCoordinates stores a resolved coordinate pair on the record.
func (r *Record) SetCoordinates(lat, lng float64) {
	r.Latitude = &lat
	r.Longitude = &lng
}

// DaysBetween returns the whole-day difference between the UTC calendar dates
// of start and end, floored at zero.
func DaysBetween(start, end time.Time) int {
	s := utcDate(start)
	e := utcDate(end)
	days := int(e.Sub(s).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
