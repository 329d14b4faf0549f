package normalize

import (
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
)

// Unstop maps Unstop search results. The start falls back from the
// registration start to the approval date to the last update; listings whose
// registration has closed are dropped.
func Unstop(raw []scraper.UnstopOpportunity, now time.Time) []*hackathon.Record {
	now = reference(now)

	names := make([]string, 0, len(raw))
	for _, r := range raw {
		names = append(names, r.Organisation.Name)
	}
	tally := hackathon.TallyOrganizers(names)

	out := make([]*hackathon.Record, 0, len(raw))
	for _, r := range raw {
		if rec, ok := unstopRecord(r, now, tally); ok {
			out = append(out, rec)
		}
	}
	return out
}

func unstopRecord(r scraper.UnstopOpportunity, now time.Time, tally hackathon.OrganizerTally) (*hackathon.Record, bool) {
	start, ok := firstTime(r.Registration.StartRegnDt, r.ApprovedDate, r.UpdatedAt)
	if !ok {
		return nil, false
	}
	final, ok := firstTime(r.EndDate, r.Registration.EndRegnDt)
	if !ok {
		return nil, false
	}
	if registrationClosed(r.Registration.EndRegnDt, now) {
		return nil, false
	}
	id := r.ID.String()
	if id == "" {
		return nil, false
	}

	link := strings.TrimSpace(r.SeoURL)
	if !isAbsoluteURL(link) {
		link = resolveURL(r.PublicURL, unstopRoot, UnstopBaseURL)
	}

	format := unstopFormat(r.Region, r.Details)
	location := hackathon.LocationGlobal
	if format != hackathon.FormatOnline {
		location = joinPlace(r.Address.City.String(), r.Address.State.String(), r.Address.Country.Name)
	}

	createdAt := now
	if updated, ok := parseTime(string(r.UpdatedAt)); ok {
		createdAt = updated
	}

	rec := &hackathon.Record{
		ID:                  hackathon.RecordID(hackathon.SourceUnstop, id),
		Title:               titleOr(r.Title),
		URL:                 link,
		SourcePlatform:      hackathon.PlatformUnstop,
		Format:              format,
		LocationText:        location,
		Themes:              hackathon.CanonicalThemes(unstopThemes(r.RequiredSkills)),
		OrganizerPastEvents: tally.PastEvents(r.Organisation.Name),
		Prizes:              unstopPrizes(r.Prizes),
		CreatedAt:           createdAt,
	}
	if !withDates(rec, start, final) {
		return nil, false
	}
	return rec, true
}

// unstopFormat reads the region first and falls back to keywords in the
// detail text. A hybrid region wins over an online region with offline
// wording, which wins over a plain online region.
func unstopFormat(region, details string) hackathon.Format {
	region = strings.ToLower(strings.TrimSpace(region))
	text := strings.ToLower(stripHTML(details))

	switch {
	case strings.Contains(region, "hybrid"):
		return hackathon.FormatHybrid
	case strings.Contains(region, "online") && hackathon.ContainsAny(text, "offline", "in-person"):
		return hackathon.FormatHybrid
	case strings.Contains(region, "online"):
		return hackathon.FormatOnline
	default:
		return hackathon.FormatOffline
	}
}

func unstopThemes(skills []scraper.UnstopSkill) []string {
	themes := make([]string, 0, len(skills))
	for _, s := range skills {
		name := s.SkillName.String()
		if name == "" {
			name = s.Skill.String()
		}
		themes = append(themes, name)
	}
	return themes
}

func unstopPrizes(prizes []scraper.UnstopPrize) []hackathon.Prize {
	var categories []hackathon.Prize
	for _, p := range prizes {
		if p.Cash > 0 {
			categories = append(categories, hackathon.PrizeCash)
		}
		if p.PrePlacementInternship > 0 || p.PrePlacementOpportunity > 0 {
			categories = append(categories, hackathon.PrizeJobInternship)
		}
		if others := strings.ToLower(string(p.Others)); hackathon.ContainsAny(others, "swag", "merch") {
			categories = append(categories, hackathon.PrizeSwag)
		}
	}
	return hackathon.FinalizePrizes(categories)
}
