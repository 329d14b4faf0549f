// Package metrics records per-run ingestion metrics in a private Prometheus
// registry and writes them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hackhunt"

// Recorder holds the metrics of one ingestion run.
type Recorder struct {
	registry *prometheus.Registry

	fetched      *prometheus.CounterVec
	normalized   *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	sourceErrors *prometheus.CounterVec
	geocode      *prometheus.CounterVec

	written     prometheus.Gauge
	deactivated prometheus.Gauge
	duration    prometheus.Gauge
	lastRun     prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.fetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_fetched_total",
		Help:      "Raw records returned by each source",
	}, []string{"source"})
	r.normalized = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_normalized_total",
		Help:      "Records that survived normalization, per source",
	}, []string{"source"})
	r.dropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_dropped_total",
		Help:      "Raw records rejected by normalization, per source",
	}, []string{"source"})
	r.sourceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_errors_total",
		Help:      "Fetches that abandoned a page or the whole source",
	}, []string{"source"})
	r.geocode = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocode_lookups_total",
		Help:      "Geocoding outcomes by result",
	}, []string{"result"})

	r.written = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records_written",
		Help:      "Records upserted into the store by the last run",
	})
	r.deactivated = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records_deactivated",
		Help:      "Stored records marked inactive by the last run",
	})
	r.duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run",
	})
	r.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp at which the last run finished",
	})

	r.registry.MustRegister(
		r.fetched, r.normalized, r.dropped, r.sourceErrors, r.geocode,
		r.written, r.deactivated, r.duration, r.lastRun,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// InitSources creates zero-valued series for every selected source so that
// an empty source still shows up in the output.
func (r *Recorder) InitSources(sources []string) {
	for _, s := range sources {
		r.fetched.WithLabelValues(s)
		r.normalized.WithLabelValues(s)
		r.dropped.WithLabelValues(s)
		r.sourceErrors.WithLabelValues(s)
	}
}

// ObserveSource records the outcome of collecting and normalizing one source.
func (r *Recorder) ObserveSource(source string, fetched, normalized int, err error) {
	r.fetched.WithLabelValues(source).Add(float64(fetched))
	r.normalized.WithLabelValues(source).Add(float64(normalized))
	if fetched > normalized {
		r.dropped.WithLabelValues(source).Add(float64(fetched - normalized))
	}
	if err != nil {
		r.sourceErrors.WithLabelValues(source).Inc()
	}
}

// ObserveGeocode counts one geocoding outcome.
func (r *Recorder) ObserveGeocode(result string) {
	r.geocode.WithLabelValues(result).Inc()
}

// ObserveRun records the store totals and timing of a finished run.
func (r *Recorder) ObserveRun(written, deactivated int, duration time.Duration, finished time.Time) {
	r.written.Set(float64(written))
	r.deactivated.Set(float64(deactivated))
	r.duration.Set(duration.Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path atomically, creating the parent
// directory when needed.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
