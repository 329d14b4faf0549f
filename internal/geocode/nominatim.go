package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	NominatimURL       = "https://nominatim.openstreetmap.org"
	NominatimUserAgent = "hackhunt-ingestion"
	NominatimTimeout   = 10 * time.Second

	// Nominatim's usage policy allows one request per second.
	nominatimInterval = time.Second
)

// NominatimClient is a client for the Nominatim search API
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
	interval   time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewNominatimClient creates a client against baseURL; an empty baseURL
// uses the public instance.
func NewNominatimClient(baseURL string) *NominatimClient {
	if baseURL == "" {
		baseURL = NominatimURL
	}
	return &NominatimClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: NominatimTimeout,
		},
		interval: nominatimInterval,
	}
}

// SetInterval changes the minimum spacing between requests.
func (c *NominatimClient) SetInterval(d time.Duration) {
	c.interval = d
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Search returns the best match for query, or nil when there is none.
func (c *NominatimClient) Search(ctx context.Context, query string) (*Point, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("limit", "1")
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", NominatimUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", places[0].Lon, err)
	}
	return &Point{Lat: lat, Lng: lng}, nil
}

// wait blocks until interval has passed since the previous request.
func (c *NominatimClient) wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.interval > 0 && !c.last.IsZero() {
		if d := c.interval - time.Since(c.last); d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	c.last = time.Now()
	return nil
}
