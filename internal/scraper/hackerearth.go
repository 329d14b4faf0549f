package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/hackhunt/internal/logger"
)

// HackerEarthChallenge is one hackathon card from the HackerEarth listing.
type HackerEarthChallenge struct {
	ID                  string
	Title               string
	URL                 string
	Organizer           string
	StartUnix           int64
	FinalSubmissionUnix int64
}

const unknownOrganizer = "Unknown Organizer"

var (
	// var seconds_left = 1772400000 - 1772300000;
	// var countdown_elem = $('#countdown-123');
	countdownPattern = regexp.MustCompile(`var seconds_left = (\d+) - (\d+);\s*var countdown_elem = \$\('#countdown-(\d+)'\);`)
	spaces           = regexp.MustCompile(`\s+`)
)

type countdown struct {
	target int64
	now    int64
}

// FetchHackerEarth fetches the HackerEarth hackathon listing.
func (s *Scraper) FetchHackerEarth(ctx context.Context) ([]HackerEarthChallenge, error) {
	body, err := s.get(ctx, s.endpoints.HackerEarth, acceptHTML)
	if err != nil {
		logger.Error("HackerEarth: all attempts failed", nil, err)
		return nil, fmt.Errorf("hackerearth: %w", err)
	}
	return ParseHackerEarth(bytes.NewReader(body), s.endpoints.HackerEarth)
}

// ParseHackerEarth extracts challenge cards. The countdown script that
// belongs to each card supplies the start and deadline timestamps; cards
// without a title, countdown, or matching script are skipped.
func ParseHackerEarth(r io.Reader, baseURL string) ([]HackerEarthChallenge, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	countdowns := make(map[string]countdown)
	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		for _, m := range countdownPattern.FindAllStringSubmatch(sel.Text(), -1) {
			target, err1 := strconv.ParseInt(m[1], 10, 64)
			now, err2 := strconv.ParseInt(m[2], 10, 64)
			if err1 != nil || err2 != nil {
				continue
			}
			countdowns[m[3]] = countdown{target: target, now: now}
		}
	})

	records := make([]HackerEarthChallenge, 0)
	doc.Find(".challenge-card-modern").Each(func(i int, card *goquery.Selection) {
		href, ok := card.Find("a.challenge-card-link").First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		title := collapse(card.Find(".challenge-list-title").First().Text())
		countdownID := strings.TrimPrefix(card.Find("[id^='countdown-']").First().AttrOr("id", ""), "countdown-")
		cd, found := countdowns[countdownID]
		if title == "" || countdownID == "" || !found {
			logger.Debug("HackerEarth: skipping card missing required fields", logger.Fields{"url": href})
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		slug := lastPathSegment(resolved.Path)
		if slug == "" {
			return
		}

		organizer := collapse(card.Find(".company-details").First().Clone().Children().Remove().End().Text())
		if organizer == "" {
			organizer = unknownOrganizer
		}

		records = append(records, HackerEarthChallenge{
			ID:                  slug,
			Title:               title,
			URL:                 resolved.String(),
			Organizer:           organizer,
			StartUnix:           cd.now,
			FinalSubmissionUnix: cd.target,
		})
	})

	logger.Info("HackerEarth: extracted hackathons", logger.Fields{"count": len(records)})
	return records, nil
}

func lastPathSegment(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	return parts[len(parts)-1]
}

func collapse(s string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(s), " ")
}
