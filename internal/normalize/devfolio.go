package normalize

import (
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
)

// Devfolio maps hackathons from Devfolio's page data. Listings whose
// registration has already closed are dropped.
func Devfolio(raw []scraper.DevfolioHackathon, now time.Time) []*hackathon.Record {
	now = reference(now)
	out := make([]*hackathon.Record, 0, len(raw))
	for _, r := range raw {
		if rec, ok := devfolioRecord(r, now); ok {
			out = append(out, rec)
		}
	}
	return out
}

func devfolioRecord(r scraper.DevfolioHackathon, now time.Time) (*hackathon.Record, bool) {
	uuid := strings.TrimSpace(r.UUID)
	if uuid == "" {
		return nil, false
	}
	start, ok := firstTime(r.Settings.RegStartsAt, r.StartsAt)
	if !ok {
		return nil, false
	}
	final, ok := firstTime(r.EndsAt, r.Settings.RegEndsAt)
	if !ok {
		return nil, false
	}
	if registrationClosed(r.Settings.RegEndsAt, now) {
		return nil, false
	}

	format := hackathon.FormatOffline
	location := joinPlace(r.City.String(), r.State.String(), r.Country.Name)
	if r.IsOnline {
		format = hackathon.FormatOnline
		location = hackathon.LocationGlobal
	}

	link := DevfolioBaseURL
	if slug := strings.TrimSpace(r.Slug); slug != "" {
		link = DevfolioBaseURL + "/" + slug
	}

	themes := make([]string, 0, len(r.Themes))
	for _, t := range r.Themes {
		themes = append(themes, t.Name)
	}

	rec := &hackathon.Record{
		ID:             hackathon.RecordID(hackathon.SourceDevfolio, uuid),
		Title:          titleOr(r.Name),
		URL:            link,
		SourcePlatform: hackathon.PlatformDevfolio,
		Format:         format,
		LocationText:   location,
		Themes:         hackathon.CanonicalThemes(themes),
		Prizes:         unspecifiedPrizes(),
		CreatedAt:      now,
	}
	if !withDates(rec, start, final) {
		return nil, false
	}
	return rec, true
}
