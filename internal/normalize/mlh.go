package normalize

import (
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
)

// MLH maps upcoming MLH season events.
func MLH(raw []scraper.MLHEvent, now time.Time) []*hackathon.Record {
	now = reference(now)
	out := make([]*hackathon.Record, 0, len(raw))
	for _, r := range raw {
		if rec, ok := mlhRecord(r, now); ok {
			out = append(out, rec)
		}
	}
	return out
}

func mlhRecord(r scraper.MLHEvent, now time.Time) (*hackathon.Record, bool) {
	start, ok := parseTime(string(r.StartsAt))
	if !ok {
		return nil, false
	}
	final, ok := parseTime(string(r.EndsAt))
	if !ok {
		return nil, false
	}
	id := r.ID.String()
	if id == "" {
		return nil, false
	}

	link := strings.TrimSpace(r.WebsiteURL)
	if !isAbsoluteURL(link) {
		link = resolveURL(r.URL, MLHBaseURL, MLHBaseURL)
	}

	format := mlhFormat(r.FormatType)
	location := hackathon.LocationGlobal
	if format != hackathon.FormatOnline {
		location = strings.TrimSpace(r.Location)
		if location == "" {
			v := r.VenueAddress
			location = joinPlace(v.City.String(), v.State.String(), v.Country.String())
		}
	}

	rec := &hackathon.Record{
		ID:             hackathon.RecordID(hackathon.SourceMLH, id),
		Title:          titleOr(r.Name),
		URL:            link,
		SourcePlatform: hackathon.PlatformMLH,
		Format:         format,
		LocationText:   location,
		Themes:         []string{},
		Prizes:         unspecifiedPrizes(),
		CreatedAt:      now,
	}
	if !withDates(rec, start, final) {
		return nil, false
	}
	return rec, true
}

func mlhFormat(formatType string) hackathon.Format {
	switch strings.ToLower(strings.TrimSpace(formatType)) {
	case "online", "virtual", "remote":
		return hackathon.FormatOnline
	case "hybrid":
		return hackathon.FormatHybrid
	default:
		return hackathon.FormatOffline
	}
}
