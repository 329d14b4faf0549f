package geocode

import (
	"context"
	"strings"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/logger"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// Lookup resolves a location through an external service. A nil point with a
// nil error means the service found nothing.
type Lookup interface {
	Search(ctx context.Context, query string) (*Point, error)
}

// Result names how a Geocode call was answered.
type Result string

const (
	ResultKnown    Result = "known"
	ResultExternal Result = "external"
	ResultMiss     Result = "miss"
	ResultCached   Result = "cached"
)

// Geocoder resolves location text to coordinates for a single run.
type Geocoder struct {
	known   []KnownLocation
	cache   *Cache
	lookup  Lookup
	observe func(Result)
}

// Option configures a Geocoder.
type Option func(*Geocoder)

// WithKnown replaces the embedded location table.
func WithKnown(known []KnownLocation) Option {
	return func(g *Geocoder) { g.known = known }
}

// WithLookup sets the external lookup. Without one the geocoder only uses the
// known-location table.
func WithLookup(l Lookup) Option {
	return func(g *Geocoder) { g.lookup = l }
}

// WithObserver registers a callback invoked with the outcome of every
// resolvable Geocode call.
func WithObserver(fn func(Result)) Option {
	return func(g *Geocoder) { g.observe = fn }
}

// New creates a Geocoder with a fresh cache.
func New(opts ...Option) *Geocoder {
	g := &Geocoder{
		known: DefaultKnown(),
		cache: NewCache(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ForRun returns a geocoder with the same table, lookup and observer as g
// and an empty cache.
func (g *Geocoder) ForRun() *Geocoder {
	run := *g
	run.cache = NewCache()
	return &run
}

// Geocode returns the coordinates for text, or nil. Lookup errors are logged
// and remembered as misses.
func (g *Geocoder) Geocode(ctx context.Context, text string) *Point {
	key := strings.ToLower(strings.TrimSpace(text))
	switch key {
	case "", "global", "online", "virtual":
		return nil
	}

	if p, ok := g.cache.Get(key); ok {
		g.report(ResultCached)
		return p
	}

	if p, ok := matchKnown(g.known, key); ok {
		g.cache.Set(key, p)
		g.report(ResultKnown)
		return p
	}

	if g.lookup == nil {
		g.cache.Set(key, nil)
		g.report(ResultMiss)
		return nil
	}

	p, err := g.lookup.Search(ctx, strings.TrimSpace(text))
	if err != nil {
		logger.Warn("Geocoding lookup failed", logger.Fields{
			"location": text,
			"error":    err.Error(),
		})
		p = nil
	}
	g.cache.Set(key, p)
	if p == nil {
		g.report(ResultMiss)
		return nil
	}
	g.report(ResultExternal)
	return p
}

func (g *Geocoder) report(r Result) {
	if g.observe != nil {
		g.observe(r)
	}
}

// Enrich sets coordinates on every non-online record that lacks them and
// returns how many records were enriched.
func (g *Geocoder) Enrich(ctx context.Context, records []*hackathon.Record) int {
	enriched := 0
	for _, r := range records {
		if r == nil || r.Format == hackathon.FormatOnline || r.HasCoordinates() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if p := g.Geocode(ctx, r.LocationText); p != nil {
			r.SetCoordinates(p.Lat, p.Lng)
			enriched++
		}
	}
	return enriched
}
