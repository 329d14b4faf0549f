package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/hackhunt/internal/calendar"
	"github.com/pfrederiksen/hackhunt/internal/geocode"
	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/logger"
	"github.com/pfrederiksen/hackhunt/internal/metrics"
	"github.com/pfrederiksen/hackhunt/internal/scraper"
	"github.com/pfrederiksen/hackhunt/internal/storage"
)

// StatusOK is the only status a completed run reports; failed runs return an
// error instead of a summary.
const StatusOK = "ok"

// Options configures one ingestion run. Zero values skip the optional
// stages.
type Options struct {
	// RunID identifies the run in logs and ingestion_runs; generated when empty.
	RunID string
	// Sources are the selected source keys. Empty selects every source.
	Sources []string
	// Registry maps source keys to their implementation.
	Registry map[string]Source

	// Geocoder is copied with an empty cache for every Run.
	Geocoder *geocode.Geocoder
	Store    storage.Store

	JSONOutput   string
	ICSOutput    string
	CalendarName string
	Sort         hackathon.SortOrder

	Metrics     *metrics.Recorder
	MetricsFile string

	Now func() time.Time
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID           string   `json:"run_id"`
	Status          string   `json:"status"`
	Sources         []string `json:"sources"`
	Fetched         int      `json:"fetched"`
	WrittenToDB     int      `json:"written_to_db"`
	WrittenToJSON   int      `json:"written_to_json"`
	DeactivatedInDB int      `json:"deactivated_in_db"`

	WrittenToICS int           `json:"-"`
	Geocoded     int           `json:"-"`
	SourceErrors int           `json:"-"`
	Duration     time.Duration `json:"-"`
}

// Run collects every selected source, dedupes and geocodes the batch,
// reconciles it with the store and writes the configured exports. Source
// failures are logged and tolerated; storage and export failures abort the
// run.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	started := now().UTC()

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	defer scopeLogger(runID)()

	sources := opts.Sources
	if len(sources) == 0 {
		sources = append([]string(nil), hackathon.SupportedSources...)
	}
	summary := &Summary{
		RunID:   runID,
		Status:  StatusOK,
		Sources: sources,
	}
	if opts.Metrics != nil {
		opts.Metrics.InitSources(sources)
	}

	logger.Info("Starting ingestion run", logger.Fields{
		"sources": sources,
	})

	records, err := collectAll(ctx, opts, sources, started, summary)
	if err != nil {
		return nil, err
	}
	records = hackathon.Dedupe(records)
	summary.Fetched = len(records)

	if opts.Geocoder != nil {
		summary.Geocoded = opts.Geocoder.ForRun().Enrich(ctx, records)
		logger.Info("Geocoded records", logger.Fields{"enriched": summary.Geocoded})
	}

	if opts.Store != nil {
		if err := persist(ctx, opts.Store, runID, sources, records, started, now, summary); err != nil {
			return nil, err
		}
	}

	if err := export(opts, records, summary); err != nil {
		return nil, err
	}

	finished := now().UTC()
	summary.Duration = finished.Sub(started)

	if opts.Metrics != nil {
		opts.Metrics.ObserveRun(summary.WrittenToDB, summary.DeactivatedInDB, summary.Duration, finished)
		if opts.MetricsFile != "" {
			if err := opts.Metrics.WriteTextfile(opts.MetricsFile); err != nil {
				logger.Error("Failed to write metrics", logger.Fields{"path": opts.MetricsFile}, err)
			}
		}
	}

	logger.Info("Ingestion run complete", logger.Fields{
		"fetched":           summary.Fetched,
		"written_to_db":     summary.WrittenToDB,
		"written_to_json":   summary.WrittenToJSON,
		"deactivated_in_db": summary.DeactivatedInDB,
		"duration_ms":       summary.Duration.Milliseconds(),
	})
	return summary, nil
}

// collectAll runs the selected sources in the fixed ingestion order.
func collectAll(ctx context.Context, opts Options, sources []string, now time.Time, summary *Summary) ([]*hackathon.Record, error) {
	selected := make(map[string]bool, len(sources))
	for _, s := range sources {
		selected[s] = true
	}

	var records []*hackathon.Record
	for _, key := range hackathon.SupportedSources {
		if !selected[key] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ingestion cancelled: %w", err)
		}

		src, ok := opts.Registry[key]
		if !ok {
			logger.Warn("No collector registered for source", logger.Fields{"source": key})
			continue
		}

		c := src.Collect(ctx, now)
		if c.Err != nil {
			summary.SourceErrors++
			fields := logger.Fields{
				"source":  key,
				"fetched": c.Fetched,
			}
			if code := scraper.StatusCode(c.Err); code != 0 {
				fields["status"] = code
			}
			logger.Error("Source fetch incomplete", fields, c.Err)
		}
		if opts.Metrics != nil {
			opts.Metrics.ObserveSource(key, c.Fetched, len(c.Records), c.Err)
		}
		logger.Info("Collected source", logger.Fields{
			"source":     key,
			"fetched":    c.Fetched,
			"normalized": len(c.Records),
		})

		records = append(records, c.Records...)
	}
	return records, nil
}

func persist(ctx context.Context, store storage.Store, runID string, sources []string, records []*hackathon.Record, started time.Time, now func() time.Time, summary *Summary) error {
	platforms := hackathon.PlatformsForSources(sources)

	stored, err := store.Stored(ctx, platforms)
	if err != nil {
		return fmt.Errorf("loading stored hackathons: %w", err)
	}

	rec := hackathon.Reconcile(records, platforms, stored)
	result, err := store.Apply(ctx, rec)
	if err != nil {
		return fmt.Errorf("applying reconciliation: %w", err)
	}
	summary.WrittenToDB = result.Written
	summary.DeactivatedInDB = result.Deactivated

	logger.Info("Reconciled store", logger.Fields{
		"eligible_platforms": rec.EligiblePlatforms,
		"written":            result.Written,
		"deactivated":        result.Deactivated,
	})

	err = store.RecordRun(ctx, storage.Run{
		ID:              runID,
		StartedAt:       started,
		FinishedAt:      now().UTC(),
		Sources:         sources,
		Fetched:         summary.Fetched,
		WrittenToDB:     result.Written,
		DeactivatedInDB: result.Deactivated,
	})
	if err != nil {
		return fmt.Errorf("recording ingestion run: %w", err)
	}
	return nil
}

func export(opts Options, records []*hackathon.Record, summary *Summary) error {
	if opts.JSONOutput == "" && opts.ICSOutput == "" {
		return nil
	}

	ordered := append([]*hackathon.Record(nil), records...)
	hackathon.SortRecords(ordered, opts.Sort)

	if opts.JSONOutput != "" {
		n, err := storage.WriteExport(opts.JSONOutput, ordered)
		if err != nil {
			return err
		}
		summary.WrittenToJSON = n
		logger.Info("Wrote JSON export", logger.Fields{"path": opts.JSONOutput, "records": n})
	}

	if opts.ICSOutput != "" {
		path, err := storage.ExpandPath(opts.ICSOutput)
		if err != nil {
			return err
		}
		name := opts.CalendarName
		if name == "" {
			name = calendar.DefaultCalendarName
		}
		n, err := calendar.WriteICS(path, name, ordered)
		if err != nil {
			return err
		}
		summary.WrittenToICS = n
		logger.Info("Wrote deadline calendar", logger.Fields{"path": path, "events": n})
	}
	return nil
}

// scopeLogger tags every line logged during the run, including those of the
// collaborators, with the run id. The returned func restores the previous
// default.
func scopeLogger(runID string) func() {
	prev := logger.Default()
	logger.SetDefault(prev.With(logger.Fields{"run_id": runID}))
	return func() { logger.SetDefault(prev) }
}
