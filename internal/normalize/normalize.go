package normalize

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
)

// Base URLs used when a source gives no usable link.
const (
	DevpostBaseURL     = "https://devpost.com/hackathons"
	DevfolioBaseURL    = "https://devfolio.co/hackathons"
	UnstopBaseURL      = "https://unstop.com/hackathons"
	MLHBaseURL         = "https://mlh.io/"
	HackerEarthBaseURL = "https://www.hackerearth.com/challenges/hackathon/"

	devpostRoot = "https://devpost.com/"
	unstopRoot  = "https://unstop.com/"
)

// Layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime reads a source timestamp and converts it to UTC.
func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// firstTime returns the first value that parses.
func firstTime(values ...scraper.Text) (time.Time, bool) {
	for _, v := range values {
		if t, ok := parseTime(string(v)); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// reference returns now in UTC, or the current time when now is zero.
func reference(now time.Time) time.Time {
	if now.IsZero() {
		return time.Now().UTC()
	}
	return now.UTC()
}

// joinPlace joins the non-empty parts with ", ", or returns LocationTBD.
func joinPlace(parts ...string) string {
	compact := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			compact = append(compact, p)
		}
	}
	if len(compact) == 0 {
		return hackathon.LocationTBD
	}
	return strings.Join(compact, ", ")
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// resolveURL returns link when it is absolute, link joined onto root when it
// is a path, and fallback when it is empty or unusable.
func resolveURL(link, root, fallback string) string {
	link = strings.TrimSpace(link)
	if isAbsoluteURL(link) {
		return link
	}
	if link == "" {
		return fallback
	}
	base, err := url.Parse(root)
	if err != nil {
		return fallback
	}
	ref, err := url.Parse(strings.TrimLeft(link, "/"))
	if err != nil {
		return fallback
	}
	return base.ResolveReference(ref).String()
}

// stripHTML returns the text content of an HTML fragment with each text node
// separated by a single space.
func stripHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(sel *goquery.Selection, out *[]string) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			*out = append(*out, node.Text())
		case "script", "style", "#comment":
		default:
			collectText(node, out)
		}
	})
}

func titleOr(title string) string {
	if strings.TrimSpace(title) == "" {
		return hackathon.UntitledTitle
	}
	return title
}

// withDates sets the date fields of r. It reports false when final precedes
// start.
func withDates(r *hackathon.Record, start, final time.Time) bool {
	start, final = start.UTC(), final.UTC()
	if final.Before(start) {
		return false
	}
	r.StartDate = start
	r.FinalSubmissionDate = final
	r.DaysToFinal = hackathon.DaysBetween(start, final)
	return true
}

// registrationClosed reports whether the registration end parses and lies
// before now.
func registrationClosed(regEnd scraper.Text, now time.Time) bool {
	t, ok := parseTime(string(regEnd))
	return ok && t.Before(now)
}

func unspecifiedPrizes() []hackathon.Prize {
	return []hackathon.Prize{hackathon.PrizeUnspecified}
}
