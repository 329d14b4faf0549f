package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/go-querystring/query"
	"github.com/pfrederiksen/hackhunt/internal/logger"
)

// DevpostChallengeTypes are queried in this order by default.
var DevpostChallengeTypes = []string{"online", "in-person", "hybrid"}

// DevpostHackathon is one entry of the Devpost hackathon search API.
type DevpostHackathon struct {
	ID                    Text            `json:"id"`
	Title                 string          `json:"title"`
	URL                   string          `json:"url"`
	DisplayedLocation     DevpostLocation `json:"displayed_location"`
	SubmissionPeriodDates string          `json:"submission_period_dates"`
	Themes                []Named         `json:"themes"`
	OrganizationName      string          `json:"organization_name"`
	PrizeAmount           Text            `json:"prize_amount"`
	AnalyticsIdentifier   string          `json:"analytics_identifier"`
}

// DevpostLocation is the displayed location badge of a Devpost listing.
type DevpostLocation struct {
	Icon     string `json:"icon"`
	Location string `json:"location"`
}

// DevpostOptions controls Devpost pagination.
type DevpostOptions struct {
	// MaxPages caps pages per challenge type; 0 follows the API's total count.
	MaxPages       int
	ChallengeTypes []string
}

type devpostQuery struct {
	ChallengeType []string `url:"challenge_type,brackets"`
	Status        []string `url:"status,brackets"`
	Page          int      `url:"page"`
}

type devpostPage struct {
	Hackathons []json.RawMessage `json:"hackathons"`
	Meta       struct {
		TotalCount Number `json:"total_count"`
		PerPage    Number `json:"per_page"`
	} `json:"meta"`
}

// FetchDevpost pages through open Devpost hackathons for each challenge type.
// Records are keyed by native id; a later duplicate replaces the earlier one
// in place.
func (s *Scraper) FetchDevpost(ctx context.Context, opts DevpostOptions) ([]DevpostHackathon, error) {
	types := opts.ChallengeTypes
	if len(types) == 0 {
		types = DevpostChallengeTypes
	}

	records := make([]DevpostHackathon, 0)
	index := make(map[string]int)
	var firstErr error

	for _, challengeType := range types {
		pageCap := opts.MaxPages
		for page := 1; pageCap <= 0 || page <= pageCap; page++ {
			url, err := s.devpostURL(challengeType, page)
			if err != nil {
				return records, err
			}

			body, err := s.get(ctx, url, acceptJSON)
			if err != nil {
				logger.Error("Devpost: giving up on page", logger.Fields{
					"challenge_type": challengeType,
					"page":           page,
				}, err)
				if firstErr == nil {
					firstErr = fmt.Errorf("devpost %s page %d: %w", challengeType, page, err)
				}
				break
			}

			var payload devpostPage
			if err := json.Unmarshal(body, &payload); err != nil {
				logger.Error("Devpost: malformed page", logger.Fields{
					"challenge_type": challengeType,
					"page":           page,
				}, err)
				break
			}
			if len(payload.Hackathons) == 0 {
				logger.Debug("Devpost: no more results", logger.Fields{"challenge_type": challengeType, "page": page})
				break
			}

			if page == 1 && pageCap <= 0 {
				pageCap = inferPageCap(float64(payload.Meta.TotalCount), float64(payload.Meta.PerPage), len(payload.Hackathons))
			}

			items, skipped := decodeEach[DevpostHackathon](payload.Hackathons)
			if skipped > 0 {
				logger.Debug("Devpost: skipped malformed items", logger.Fields{"page": page, "skipped": skipped})
			}
			for _, item := range items {
				key := string(item.ID)
				if i, ok := index[key]; ok {
					records[i] = item
					continue
				}
				index[key] = len(records)
				records = append(records, item)
			}
		}
	}

	logger.Info("Devpost: fetched hackathons", logger.Fields{"count": len(records)})
	return records, firstErr
}

func (s *Scraper) devpostURL(challengeType string, page int) (string, error) {
	v, err := query.Values(devpostQuery{
		ChallengeType: []string{challengeType},
		Status:        []string{"open"},
		Page:          page,
	})
	if err != nil {
		return "", fmt.Errorf("encoding devpost query: %w", err)
	}
	return s.endpoints.Devpost + "?" + v.Encode(), nil
}

// inferPageCap derives the page count from the API metadata. Without a usable
// total it returns 0, meaning "until an empty page".
func inferPageCap(total, perPage float64, pageLen int) int {
	if total <= 0 {
		return 0
	}
	if perPage <= 0 {
		perPage = float64(pageLen)
	}
	if perPage <= 0 {
		perPage = 1
	}
	return int(math.Max(1, math.Ceil(total/perPage)))
}
