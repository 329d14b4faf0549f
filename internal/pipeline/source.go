package pipeline

import (
	"context"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/normalize"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
)

// Collection is what one source produced during a run.
type Collection struct {
	// Fetched counts raw records before normalization.
	Fetched int
	Records []*hackathon.Record
	// Err is set when the fetch was cut short; Records still holds what
	// could be collected.
	Err error
}

// Source collects and normalizes the listings of one site.
type Source interface {
	Key() string
	Collect(ctx context.Context, now time.Time) Collection
}

type sourceFunc struct {
	key string
	fn  func(ctx context.Context, now time.Time) Collection
}

func (s sourceFunc) Key() string { return s.key }

func (s sourceFunc) Collect(ctx context.Context, now time.Time) Collection {
	return s.fn(ctx, now)
}

// NewSource adapts a collect function to a Source.
func NewSource(key string, fn func(ctx context.Context, now time.Time) Collection) Source {
	return sourceFunc{key: key, fn: fn}
}

// ScraperOptions controls the scraper-backed sources.
type ScraperOptions struct {
	MaxPages      int
	MLHSeasonYear int
}

// ScraperSources returns every supported source backed by s, keyed by source
// key.
func ScraperSources(s *scraper.Scraper, opts ScraperOptions) map[string]Source {
	return map[string]Source{
		hackathon.SourceDevpost: NewSource(hackathon.SourceDevpost, func(ctx context.Context, now time.Time) Collection {
			raw, err := s.FetchDevpost(ctx, scraper.DevpostOptions{MaxPages: opts.MaxPages})
			return collected(raw, err, now, normalize.Devpost)
		}),
		hackathon.SourceDevfolio: NewSource(hackathon.SourceDevfolio, func(ctx context.Context, now time.Time) Collection {
			raw, err := s.FetchDevfolio(ctx)
			return collected(raw, err, now, normalize.Devfolio)
		}),
		hackathon.SourceHackerEarth: NewSource(hackathon.SourceHackerEarth, func(ctx context.Context, now time.Time) Collection {
			raw, err := s.FetchHackerEarth(ctx)
			return collected(raw, err, now, normalize.HackerEarth)
		}),
		hackathon.SourceUnstop: NewSource(hackathon.SourceUnstop, func(ctx context.Context, now time.Time) Collection {
			raw, err := s.FetchUnstop(ctx, scraper.UnstopOptions{MaxPages: opts.MaxPages})
			return collected(raw, err, now, normalize.Unstop)
		}),
		hackathon.SourceMLH: NewSource(hackathon.SourceMLH, func(ctx context.Context, now time.Time) Collection {
			year := opts.MLHSeasonYear
			if year <= 0 {
				year = now.UTC().Year()
			}
			raw, err := s.FetchMLH(ctx, year)
			return collected(raw, err, now, normalize.MLH)
		}),
	}
}

func collected[T any](raw []T, err error, now time.Time, fn func([]T, time.Time) []*hackathon.Record) Collection {
	return Collection{
		Fetched: len(raw),
		Records: fn(raw, now),
		Err:     err,
	}
}
