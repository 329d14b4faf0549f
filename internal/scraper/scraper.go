package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/logger"
	"github.com/pfrederiksen/hackhunt/internal/retry"
)

const (
	UserAgent = "HackHuntBot/1.0 (+https://github.com)"
	Timeout   = 30 * time.Second

	acceptJSON = "application/json"
	acceptHTML = "text/html"
)

// Endpoints holds the listing URLs of every source.
type Endpoints struct {
	Devpost     string
	Devfolio    string
	HackerEarth string
	// MLH is a format string taking the season year.
	MLH    string
	Unstop string
}

// DefaultEndpoints returns the public production URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Devpost:     "https://devpost.com/api/hackathons",
		Devfolio:    "https://devfolio.co/hackathons",
		HackerEarth: "https://www.hackerearth.com/challenges/hackathon/",
		MLH:         "https://mlh.io/seasons/%d/events",
		Unstop:      "https://api.unstop.com/api/public/opportunity/search-result",
	}
}

// Scraper fetches raw listings from every source.
type Scraper struct {
	client    *http.Client
	endpoints Endpoints
	retry     retry.Policy
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithEndpoints points the scraper at alternative URLs.
func WithEndpoints(e Endpoints) Option {
	return func(s *Scraper) { s.endpoints = e }
}

// WithRetry sets the retry policy applied to every request.
func WithRetry(p retry.Policy) Option {
	return func(s *Scraper) { s.retry = p }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		endpoints: DefaultEndpoints(),
		retry:     retry.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HTTPError is returned when a source answers with a non-200 status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// retryable reports whether a response status is worth another attempt.
// Client errors other than timeouts and rate limits will not change.
func retryable(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}

// get fetches url under the retry policy and returns the full body.
func (s *Scraper) get(ctx context.Context, url, accept string) ([]byte, error) {
	policy := s.retry
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Warn("Fetch attempt failed", logger.Fields{
			"url":          url,
			"attempt":      attempt,
			"max_attempts": policy.Attempts,
			"retry_in":     wait.String(),
			"error":        err.Error(),
		})
	}

	var body []byte
	err := policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept", accept)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: url}
			if !retryable(resp.StatusCode) {
				return retry.Permanent(httpErr)
			}
			return httpErr
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
