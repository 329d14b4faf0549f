package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/hackhunt/internal/logger"
)

// MLHEvent is an upcoming event from an MLH season page.
type MLHEvent struct {
	ID           Text            `json:"id"`
	Name         string          `json:"name"`
	StartsAt     Text            `json:"starts_at"`
	EndsAt       Text            `json:"ends_at"`
	URL          string          `json:"url"`
	WebsiteURL   string          `json:"website_url"`
	Location     string          `json:"location"`
	FormatType   string          `json:"format_type"`
	Region       string          `json:"region"`
	VenueAddress MLHVenueAddress `json:"venue_address"`
}

// MLHVenueAddress is the structured venue of an in-person MLH event.
type MLHVenueAddress struct {
	City    Text `json:"city"`
	State   Text `json:"state"`
	Country Text `json:"country"`
}

// FetchMLH fetches the events page of an MLH season. A zero seasonYear means
// the current UTC year.
func (s *Scraper) FetchMLH(ctx context.Context, seasonYear int) ([]MLHEvent, error) {
	if seasonYear <= 0 {
		seasonYear = time.Now().UTC().Year()
	}
	url := fmt.Sprintf(s.endpoints.MLH, seasonYear)

	body, err := s.get(ctx, url, acceptHTML)
	if err != nil {
		logger.Error("MLH: all attempts failed", logger.Fields{"season_year": seasonYear}, err)
		return nil, fmt.Errorf("mlh: %w", err)
	}
	return ParseMLH(bytes.NewReader(body))
}

// ParseMLH reads the Inertia data-page attribute and returns its upcoming
// events.
func ParseMLH(r io.Reader) ([]MLHEvent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	data, ok := doc.Find("[data-page]").First().Attr("data-page")
	if !ok {
		return nil, fmt.Errorf("mlh: data-page attribute not found")
	}

	var payload struct {
		Props struct {
			UpcomingEvents json.RawMessage `json:"upcoming_events"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("mlh: parsing data-page JSON: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(payload.Props.UpcomingEvents, &items); err != nil {
		logger.Warn("MLH: upcoming_events is not a list", nil)
		return []MLHEvent{}, nil
	}

	events, skipped := decodeEach[MLHEvent](items)
	if skipped > 0 {
		logger.Debug("MLH: skipped malformed events", logger.Fields{"skipped": skipped})
	}
	logger.Info("MLH: extracted upcoming events", logger.Fields{"count": len(events)})
	return events, nil
}
