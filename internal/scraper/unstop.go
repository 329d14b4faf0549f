package scraper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/go-querystring/query"
	"github.com/pfrederiksen/hackhunt/internal/logger"
)

// UnstopPerPage is the page size requested from the Unstop search API.
const UnstopPerPage = 50

// UnstopOpportunity is one hackathon from the Unstop search API.
type UnstopOpportunity struct {
	ID             Text               `json:"id"`
	Title          string             `json:"title"`
	Region         string             `json:"region"`
	Details        string             `json:"details"`
	PublicURL      string             `json:"public_url"`
	SeoURL         string             `json:"seo_url"`
	UpdatedAt      Text               `json:"updated_at"`
	ApprovedDate   Text               `json:"approved_date"`
	EndDate        Text               `json:"end_date"`
	Organisation   Named              `json:"organisation"`
	Prizes         []UnstopPrize      `json:"prizes"`
	RequiredSkills []UnstopSkill      `json:"required_skills"`
	Registration   UnstopRegistration `json:"regnRequirements"`
	Address        UnstopAddress      `json:"address_with_country_logo"`
}

// UnstopRegistration is the registration window of an opportunity.
type UnstopRegistration struct {
	StartRegnDt Text `json:"start_regn_dt"`
	EndRegnDt   Text `json:"end_regn_dt"`
}

// UnstopPrize is one prize tier.
type UnstopPrize struct {
	Cash                    Number `json:"cash"`
	PrePlacementInternship  Number `json:"pre_placement_internship"`
	PrePlacementOpportunity Number `json:"pre_placement_opportunity"`
	Others                  Text   `json:"others"`
}

// UnstopSkill is a required skill, used as a theme.
type UnstopSkill struct {
	SkillName Text `json:"skill_name"`
	Skill     Text `json:"skill"`
}

// UnstopAddress is the structured venue of an offline opportunity.
type UnstopAddress struct {
	City    Text  `json:"city"`
	State   Text  `json:"state"`
	Country Named `json:"country"`
}

// UnstopOptions controls Unstop pagination.
type UnstopOptions struct {
	// MaxPages caps the pages fetched; 0 follows last_page.
	MaxPages int
	PerPage  int
}

type unstopQuery struct {
	Opportunity string `url:"opportunity"`
	Page        int    `url:"page"`
	PerPage     int    `url:"per_page"`
}

type unstopPage struct {
	Data struct {
		Data     []json.RawMessage `json:"data"`
		LastPage Number            `json:"last_page"`
	} `json:"data"`
}

// FetchUnstop pages through the Unstop hackathon search results.
func (s *Scraper) FetchUnstop(ctx context.Context, opts UnstopOptions) ([]UnstopOpportunity, error) {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = UnstopPerPage
	}

	records := make([]UnstopOpportunity, 0)
	index := make(map[string]int)

	for page := 1; opts.MaxPages <= 0 || page <= opts.MaxPages; page++ {
		v, err := query.Values(unstopQuery{Opportunity: "hackathons", Page: page, PerPage: perPage})
		if err != nil {
			return records, fmt.Errorf("encoding unstop query: %w", err)
		}

		body, err := s.get(ctx, s.endpoints.Unstop+"?"+v.Encode(), acceptJSON)
		if err != nil {
			logger.Error("Unstop: giving up on page after retries", logger.Fields{"page": page}, err)
			return records, fmt.Errorf("unstop page %d: %w", page, err)
		}

		var payload unstopPage
		if err := json.Unmarshal(body, &payload); err != nil {
			logger.Error("Unstop: malformed page", logger.Fields{"page": page}, err)
			return records, nil
		}
		if len(payload.Data.Data) == 0 {
			logger.Debug("Unstop: no items, stopping pagination", logger.Fields{"page": page})
			break
		}

		items, skipped := decodeEach[UnstopOpportunity](payload.Data.Data)
		if skipped > 0 {
			logger.Debug("Unstop: skipped malformed items", logger.Fields{"page": page, "skipped": skipped})
		}
		for _, item := range items {
			key := item.ID.String()
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				records[i] = item
				continue
			}
			index[key] = len(records)
			records = append(records, item)
		}

		lastPage := int(payload.Data.LastPage)
		if lastPage <= 0 {
			lastPage = page
		}
		if page >= lastPage {
			break
		}
	}

	logger.Info("Unstop: fetched hackathons", logger.Fields{"count": len(records)})
	return records, nil
}
