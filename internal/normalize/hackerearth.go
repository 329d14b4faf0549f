package normalize

import (
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
)

// HackerEarth maps HackerEarth challenge cards. Every challenge is online.
func HackerEarth(raw []scraper.HackerEarthChallenge, now time.Time) []*hackathon.Record {
	now = reference(now)

	names := make([]string, 0, len(raw))
	for _, r := range raw {
		names = append(names, r.Organizer)
	}
	tally := hackathon.TallyOrganizers(names)

	out := make([]*hackathon.Record, 0, len(raw))
	for _, r := range raw {
		if rec, ok := hackerEarthRecord(r, now, tally); ok {
			out = append(out, rec)
		}
	}
	return out
}

func hackerEarthRecord(r scraper.HackerEarthChallenge, now time.Time, tally hackathon.OrganizerTally) (*hackathon.Record, bool) {
	id := strings.TrimSpace(r.ID)
	if id == "" || r.StartUnix <= 0 || r.FinalSubmissionUnix <= 0 {
		return nil, false
	}

	rec := &hackathon.Record{
		ID:                  hackathon.RecordID(hackathon.SourceHackerEarth, id),
		Title:               titleOr(r.Title),
		URL:                 resolveURL(r.URL, HackerEarthBaseURL, HackerEarthBaseURL),
		SourcePlatform:      hackathon.PlatformHackerEarth,
		Format:              hackathon.FormatOnline,
		LocationText:        hackathon.LocationGlobal,
		Themes:              []string{},
		OrganizerPastEvents: tally.PastEvents(r.Organizer),
		Prizes:              unspecifiedPrizes(),
		CreatedAt:           now,
	}
	if !withDates(rec, time.Unix(r.StartUnix, 0), time.Unix(r.FinalSubmissionUnix, 0)) {
		return nil, false
	}
	return rec, true
}
