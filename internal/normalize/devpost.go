package normalize

import (
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
)

// Devpost maps Devpost search results. Dates come from the free-text
// submission period; records without a parseable period or a native id are
// dropped.
func Devpost(raw []scraper.DevpostHackathon, now time.Time) []*hackathon.Record {
	now = reference(now)

	names := make([]string, 0, len(raw))
	for _, r := range raw {
		names = append(names, r.OrganizationName)
	}
	tally := hackathon.TallyOrganizers(names)

	out := make([]*hackathon.Record, 0, len(raw))
	for _, r := range raw {
		if rec, ok := devpostRecord(r, now, tally); ok {
			out = append(out, rec)
		}
	}
	return out
}

func devpostRecord(r scraper.DevpostHackathon, now time.Time, tally hackathon.OrganizerTally) (*hackathon.Record, bool) {
	id := r.ID.String()
	if id == "" {
		return nil, false
	}
	timeline, ok := hackathon.ParseTimeline(r.SubmissionPeriodDates, now)
	if !ok {
		return nil, false
	}

	format := devpostFormat(r.DisplayedLocation)
	location := hackathon.LocationGlobal
	if format != hackathon.FormatOnline {
		location = strings.TrimSpace(r.DisplayedLocation.Location)
		if location == "" {
			location = hackathon.LocationUnspecified
		}
	}

	themes := make([]string, 0, len(r.Themes))
	for _, t := range r.Themes {
		themes = append(themes, t.Name)
	}

	return &hackathon.Record{
		ID:                  hackathon.RecordID(hackathon.SourceDevpost, id),
		Title:               titleOr(r.Title),
		URL:                 resolveURL(r.URL, devpostRoot, DevpostBaseURL),
		SourcePlatform:      hackathon.PlatformDevpost,
		Format:              format,
		LocationText:        location,
		StartDate:           timeline.Start,
		FinalSubmissionDate: timeline.FinalSubmission,
		DaysToFinal:         timeline.DaysToFinal,
		Themes:              hackathon.CanonicalThemes(themes),
		OrganizerPastEvents: tally.PastEvents(r.OrganizationName),
		Prizes:              devpostPrizes(r),
		CreatedAt:           now,
	}, true
}

// devpostFormat checks for the hybrid wording before the online markers, since
// a hybrid badge also mentions "online".
func devpostFormat(loc scraper.DevpostLocation) hackathon.Format {
	icon := strings.ToLower(strings.TrimSpace(loc.Icon))
	text := strings.ToLower(strings.TrimSpace(loc.Location))

	switch {
	case strings.Contains(text, "online") && strings.Contains(text, "in-person"):
		return hackathon.FormatHybrid
	case icon == "globe" || hackathon.ContainsAny(text, "online", "virtual"):
		return hackathon.FormatOnline
	default:
		return hackathon.FormatOffline
	}
}

func devpostPrizes(r scraper.DevpostHackathon) []hackathon.Prize {
	var categories []hackathon.Prize
	if hackathon.HasCashAmount(string(r.PrizeAmount)) {
		categories = append(categories, hackathon.PrizeCash)
	}
	categories = append(categories, hackathon.KeywordPrizes(r.Title+" "+r.AnalyticsIdentifier)...)
	return hackathon.FinalizePrizes(categories)
}
