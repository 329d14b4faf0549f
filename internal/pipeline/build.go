package pipeline

import (
	"context"

	"github.com/pfrederiksen/hackhunt/internal/config"
	"github.com/pfrederiksen/hackhunt/internal/geocode"
	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/logger"
	"github.com/pfrederiksen/hackhunt/internal/metrics"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
	"github.com/pfrederiksen/hackhunt/internal/storage"
)

// FromConfig wires the production collaborators described by cfg. The
// returned close func releases the store and must be called once the run
// has finished.
func FromConfig(ctx context.Context, cfg *config.Config) (Options, func(), error) {
	order, err := hackathon.ParseSortOrder(cfg.Sort)
	if err != nil {
		return Options{}, nil, err
	}

	s := scraper.New(
		scraper.WithTimeout(cfg.HTTP.Timeout),
		scraper.WithRetry(cfg.HTTP.RetryPolicy()),
	)

	rec := metrics.New()
	opts := Options{
		Sources: cfg.Sources,
		Registry: ScraperSources(s, ScraperOptions{
			MaxPages:      cfg.MaxPages,
			MLHSeasonYear: cfg.MLHSeasonYear,
		}),
		JSONOutput:  cfg.JSONPath(),
		ICSOutput:   cfg.ICSOutput,
		Sort:        order,
		Metrics:     rec,
		MetricsFile: cfg.MetricsFile,
	}

	if cfg.GeocodingEnabled() {
		geoOpts := []geocode.Option{
			geocode.WithObserver(func(r geocode.Result) { rec.ObserveGeocode(string(r)) }),
		}
		if !cfg.OfflineGeocoding {
			geoOpts = append(geoOpts, geocode.WithLookup(geocode.NewNominatimClient(cfg.NominatimURL)))
		}
		opts.Geocoder = geocode.New(geoOpts...)
	}

	closeFn := func() {}
	if cfg.StoreEnabled() {
		store, err := storage.Open(ctx, cfg.DatabaseURL, cfg.DBPath)
		if err != nil {
			return Options{}, nil, err
		}
		opts.Store = store
		closeFn = func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close store", logger.Fields{"error": err.Error()})
			}
		}
	}

	return opts, closeFn, nil
}
