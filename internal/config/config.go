// Package config loads ingestion settings from .env, an optional YAML file,
// the environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/retry"
)

const (
	DefaultDBPath      = "data/hackhunt.db"
	DefaultJSONOutput  = "data/ingested_hackathons.json"
	DefaultHTTPTimeout = 30 * time.Second

	// configName is looked up in the working directory when --config is not
	// given.
	configName = "hackhunt"
)

// Config is the resolved configuration of one ingestion run.
type Config struct {
	MaxPages         int        `mapstructure:"max_pages"`
	Sources          []string   `mapstructure:"-"`
	MLHSeasonYear    int        `mapstructure:"mlh_season_year"`
	DBPath           string     `mapstructure:"db_path"`
	DatabaseURL      string     `mapstructure:"database_url"`
	JSONOutput       string     `mapstructure:"json_output"`
	ICSOutput        string     `mapstructure:"ics_output"`
	MetricsFile      string     `mapstructure:"metrics_file"`
	DisableGeocoding bool       `mapstructure:"disable_geocoding"`
	OfflineGeocoding bool       `mapstructure:"-"`
	NominatimURL     string     `mapstructure:"nominatim_url"`
	SkipDB           bool       `mapstructure:"skip_db"`
	SkipJSON         bool       `mapstructure:"skip_json"`
	Sort             string     `mapstructure:"sort"`
	LogLevel         string     `mapstructure:"log_level"`
	HTTP             HTTPConfig `mapstructure:"-"`
}

// HTTPConfig controls outbound source requests.
type HTTPConfig struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// RetryPolicy returns the retry policy described by the HTTP settings.
func (h HTTPConfig) RetryPolicy() retry.Policy {
	return retry.Policy{Attempts: h.Retries, Step: h.Backoff}
}

// binding ties a configuration key to its flag and environment variable.
// Either name may be empty.
type binding struct {
	key  string
	flag string
	env  string
}

var bindings = []binding{
	{"max_pages", "max-pages", "HACKHUNT_INGEST_MAX_PAGES"},
	{"sources", "sources", "HACKHUNT_INGEST_SOURCES"},
	{"mlh_season_year", "mlh-season-year", "HACKHUNT_MLH_SEASON_YEAR"},
	{"db_path", "db-path", "HACKHUNT_DB_PATH"},
	{"database_url", "database-url", "HACKHUNT_DATABASE_URL"},
	{"json_output", "json-output", "HACKHUNT_JSON_OUTPUT"},
	{"ics_output", "ics-output", "HACKHUNT_ICS_OUTPUT"},
	{"metrics_file", "metrics-file", "HACKHUNT_METRICS_FILE"},
	{"disable_geocoding", "disable-geocoding", ""},
	{"offline_geocoding", "", "HACKHUNT_DISABLE_GEOCODING"},
	{"nominatim_url", "", "HACKHUNT_NOMINATIM_URL"},
	{"skip_db", "skip-db", ""},
	{"skip_json", "skip-json", ""},
	{"sort", "sort", "HACKHUNT_SORT"},
	{"log_level", "log-level", "HACKHUNT_LOG_LEVEL"},
	{"http.timeout", "", "HACKHUNT_HTTP_TIMEOUT"},
	{"http.retries", "", "HACKHUNT_HTTP_RETRIES"},
	{"http.backoff", "", "HACKHUNT_HTTP_BACKOFF"},
}

// RegisterFlags defines the ingestion flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("max-pages", 0, "Pages to fetch for paginated sources (0 means all pages)")
	fs.String("sources", "", "Comma-separated sources to ingest: "+strings.Join(hackathon.SupportedSources, ","))
	fs.Int("mlh-season-year", 0, "MLH season year to ingest (defaults to the current UTC year)")
	fs.String("db-path", DefaultDBPath, "SQLite database path; empty skips the database")
	fs.String("database-url", "", "PostgreSQL URL; overrides --db-path when set")
	fs.String("json-output", DefaultJSONOutput, "JSON export path")
	fs.String("ics-output", "", "Deadline calendar path (skipped when empty)")
	fs.String("metrics-file", "", "Prometheus textfile path (skipped when empty)")
	fs.Bool("disable-geocoding", false, "Do not geocode offline and hybrid events")
	fs.Bool("skip-db", false, "Skip database writes")
	fs.Bool("skip-json", false, "Skip the JSON export")
	fs.String("sort", "", "Export order: start, deadline, platform, title or none")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
}

// Load resolves the configuration. configFile may be empty, in which case
// hackhunt.yaml is read from the working directory when it exists. flags may
// be nil.
func Load(configFile string, flags *pflag.FlagSet, now time.Time) (*Config, error) {
	// A missing .env is not an error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, now)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	for _, b := range bindings {
		if b.env != "" {
			if err := v.BindEnv(b.key, b.env); err != nil {
				return nil, fmt.Errorf("binding %s: %w", b.env, err)
			}
		}
		if b.flag == "" || flags == nil {
			continue
		}
		if f := flags.Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", b.flag, err)
			}
		}
	}

	return fromViper(v, now)
}

func setDefaults(v *viper.Viper, now time.Time) {
	v.SetDefault("max_pages", 0)
	v.SetDefault("sources", "")
	v.SetDefault("mlh_season_year", now.UTC().Year())
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("database_url", "")
	v.SetDefault("json_output", DefaultJSONOutput)
	v.SetDefault("ics_output", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("disable_geocoding", false)
	v.SetDefault("offline_geocoding", "")
	v.SetDefault("nominatim_url", "")
	v.SetDefault("skip_db", false)
	v.SetDefault("skip_json", false)
	v.SetDefault("sort", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("http.timeout", DefaultHTTPTimeout.String())
	v.SetDefault("http.retries", retry.DefaultAttempts)
	v.SetDefault("http.backoff", retry.DefaultStep.String())
}

func fromViper(v *viper.Viper, now time.Time) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	// An explicit zero means "not given".
	if cfg.MLHSeasonYear <= 0 {
		cfg.MLHSeasonYear = now.UTC().Year()
	}
	cfg.Sources = hackathon.ResolveSources(rawSources(v.Get("sources")))
	cfg.OfflineGeocoding = truthy(v.GetString("offline_geocoding"))

	if _, err := hackathon.ParseSortOrder(cfg.Sort); err != nil {
		return nil, err
	}

	timeout, err := parseDuration(v.GetString("http.timeout"))
	if err != nil {
		return nil, fmt.Errorf("parsing http.timeout: %w", err)
	}
	backoff, err := parseDuration(v.GetString("http.backoff"))
	if err != nil {
		return nil, fmt.Errorf("parsing http.backoff: %w", err)
	}
	retries := v.GetInt("http.retries")
	if retries < 1 {
		retries = 1
	}
	cfg.HTTP = HTTPConfig{Timeout: timeout, Retries: retries, Backoff: backoff}

	return &cfg, nil
}

// StoreEnabled reports whether the run writes to a database. A PostgreSQL
// URL takes precedence over the SQLite path.
func (c *Config) StoreEnabled() bool {
	if c.SkipDB {
		return false
	}
	return c.DatabaseURL != "" || strings.TrimSpace(c.DBPath) != ""
}

// JSONPath returns the export path, or "" when the export is skipped.
func (c *Config) JSONPath() string {
	if c.SkipJSON {
		return ""
	}
	return strings.TrimSpace(c.JSONOutput)
}

// GeocodingEnabled reports whether records should be geocoded at all.
func (c *Config) GeocodingEnabled() bool {
	return !c.DisableGeocoding
}

// rawSources accepts the comma-separated string used by flags and the
// environment as well as a YAML list.
func rawSources(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// truthy accepts 1, true and yes in any case.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// parseDuration accepts Go durations ("30s") and bare seconds ("30", "1.5").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
