package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/hackhunt/internal/logger"
)

// DevfolioHackathon is a hackathon object from Devfolio's embedded page data.
type DevfolioHackathon struct {
	UUID     string           `json:"uuid"`
	Slug     string           `json:"slug"`
	Name     string           `json:"name"`
	StartsAt Text             `json:"starts_at"`
	EndsAt   Text             `json:"ends_at"`
	IsOnline Flag             `json:"is_online"`
	City     Text             `json:"city"`
	State    Text             `json:"state"`
	Country  Named            `json:"country"`
	Themes   []DevfolioTheme  `json:"themes"`
	Settings DevfolioSettings `json:"settings"`
}

// DevfolioSettings carries the registration window.
type DevfolioSettings struct {
	RegStartsAt Text `json:"reg_starts_at"`
	RegEndsAt   Text `json:"reg_ends_at"`
}

// DevfolioTheme accepts {"theme": {"name": ...}}, {"name": ...} or a string.
type DevfolioTheme struct {
	Name string
}

func (t *DevfolioTheme) UnmarshalJSON(b []byte) error {
	t.Name = ""
	if !isObject(b) {
		var n Named
		_ = n.UnmarshalJSON(b)
		t.Name = n.Name
		return nil
	}
	var obj struct {
		Theme json.RawMessage `json:"theme"`
		Name  Text            `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	if isObject(obj.Theme) {
		var inner Named
		_ = inner.UnmarshalJSON(obj.Theme)
		t.Name = inner.Name
		return nil
	}
	t.Name = string(obj.Name)
	return nil
}

// devfolioListKeys are searched before any other key of a query payload.
var devfolioListKeys = []string{
	"open_hackathons",
	"featured_hackathons",
	"hackathons",
	"all_hackathons",
}

// FetchDevfolio fetches the Devfolio listing page and extracts its hackathons.
func (s *Scraper) FetchDevfolio(ctx context.Context) ([]DevfolioHackathon, error) {
	body, err := s.get(ctx, s.endpoints.Devfolio, acceptHTML)
	if err != nil {
		logger.Error("Devfolio: all attempts failed", nil, err)
		return nil, fmt.Errorf("devfolio: %w", err)
	}
	return ParseDevfolio(bytes.NewReader(body))
}

// ParseDevfolio extracts hackathons from the __NEXT_DATA__ script of a
// Devfolio page. Every dehydrated query is searched; any object carrying a
// uuid counts as a hackathon. Duplicates keep their first occurrence.
func ParseDevfolio(r io.Reader) ([]DevfolioHackathon, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return nil, fmt.Errorf("devfolio: __NEXT_DATA__ script not found")
	}

	var payload struct {
		Props struct {
			PageProps struct {
				DehydratedState struct {
					Queries []struct {
						State struct {
							Data json.RawMessage `json:"data"`
						} `json:"state"`
					} `json:"queries"`
				} `json:"dehydratedState"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil {
		return nil, fmt.Errorf("devfolio: parsing __NEXT_DATA__: %w", err)
	}

	queries := payload.Props.PageProps.DehydratedState.Queries
	if len(queries) == 0 {
		logger.Warn("Devfolio: no queries in __NEXT_DATA__", nil)
		return []DevfolioHackathon{}, nil
	}

	records := make([]DevfolioHackathon, 0)
	seen := make(map[string]bool)
	for _, q := range queries {
		if len(q.State.Data) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(q.State.Data))
		dec.UseNumber()
		var data interface{}
		if err := dec.Decode(&data); err != nil {
			continue
		}

		for _, candidate := range collectUUIDObjects(data) {
			raw, err := json.Marshal(candidate)
			if err != nil {
				continue
			}
			var h DevfolioHackathon
			if err := json.Unmarshal(raw, &h); err != nil {
				logger.Debug("Devfolio: skipping malformed hackathon", logger.Fields{"error": err.Error()})
				continue
			}
			id := strings.TrimSpace(h.UUID)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			records = append(records, h)
		}
	}

	logger.Info("Devfolio: extracted hackathons", logger.Fields{"count": len(records)})
	return records, nil
}

// collectUUIDObjects walks decoded JSON and returns every object with a
// non-empty uuid, without descending into those objects. Known list keys are
// visited first, then the rest in sorted order.
func collectUUIDObjects(value interface{}) []map[string]interface{} {
	var out []map[string]interface{}

	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			out = append(out, collectUUIDObjects(item)...)
		}
	case map[string]interface{}:
		if id, ok := v["uuid"].(string); ok && strings.TrimSpace(id) != "" {
			return append(out, v)
		}
		visited := make(map[string]bool)
		for _, key := range devfolioListKeys {
			if nested, ok := v[key].([]interface{}); ok {
				visited[key] = true
				out = append(out, collectUUIDObjects(nested)...)
			}
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			if !visited[key] {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			out = append(out, collectUUIDObjects(v[key])...)
		}
	}

	return out
}
