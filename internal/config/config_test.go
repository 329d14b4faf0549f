package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
)

var testNow = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", newFlags(t), testNow)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxPages != 0 {
		t.Errorf("MaxPages = %d, want 0", cfg.MaxPages)
	}
	if !reflect.DeepEqual(cfg.Sources, hackathon.SupportedSources) {
		t.Errorf("Sources = %v, want all sources", cfg.Sources)
	}
	if cfg.MLHSeasonYear != 2026 {
		t.Errorf("MLHSeasonYear = %d, want 2026", cfg.MLHSeasonYear)
	}
	if cfg.DBPath != DefaultDBPath || cfg.JSONPath() != DefaultJSONOutput {
		t.Errorf("unexpected paths %q %q", cfg.DBPath, cfg.JSONPath())
	}
	if !cfg.StoreEnabled() || !cfg.GeocodingEnabled() || cfg.OfflineGeocoding {
		t.Error("store and geocoding should be enabled by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	want := HTTPConfig{Timeout: 30 * time.Second, Retries: 2, Backoff: 2 * time.Second}
	if cfg.HTTP != want {
		t.Errorf("HTTP = %+v, want %+v", cfg.HTTP, want)
	}
	if p := cfg.HTTP.RetryPolicy(); p.Attempts != 2 || p.Step != 2*time.Second {
		t.Errorf("unexpected retry policy %+v", p)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HACKHUNT_INGEST_MAX_PAGES", "-4")
	t.Setenv("HACKHUNT_INGEST_SOURCES", " MLH, bogus ,devpost,mlh")
	t.Setenv("HACKHUNT_MLH_SEASON_YEAR", "2025")
	t.Setenv("HACKHUNT_DISABLE_GEOCODING", "Yes")
	t.Setenv("HACKHUNT_HTTP_TIMEOUT", "12")
	t.Setenv("HACKHUNT_HTTP_BACKOFF", "500ms")
	t.Setenv("HACKHUNT_HTTP_RETRIES", "4")

	cfg, err := Load("", newFlags(t), testNow)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxPages != 0 {
		t.Errorf("negative max pages should clamp to 0, got %d", cfg.MaxPages)
	}
	if want := []string{"mlh", "devpost"}; !reflect.DeepEqual(cfg.Sources, want) {
		t.Errorf("Sources = %v, want %v", cfg.Sources, want)
	}
	if cfg.MLHSeasonYear != 2025 {
		t.Errorf("MLHSeasonYear = %d, want 2025", cfg.MLHSeasonYear)
	}
	if !cfg.OfflineGeocoding {
		t.Error("HACKHUNT_DISABLE_GEOCODING=Yes should enable offline geocoding")
	}
	want := HTTPConfig{Timeout: 12 * time.Second, Retries: 4, Backoff: 500 * time.Millisecond}
	if cfg.HTTP != want {
		t.Errorf("HTTP = %+v, want %+v", cfg.HTTP, want)
	}
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("HACKHUNT_INGEST_MAX_PAGES", "7")
	t.Setenv("HACKHUNT_DB_PATH", "env.db")

	cfg, err := Load("", newFlags(t, "--max-pages=3", "--skip-json", "--disable-geocoding", "--sort", "deadline"), testNow)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxPages != 3 {
		t.Errorf("MaxPages = %d, want 3", cfg.MaxPages)
	}
	if cfg.DBPath != "env.db" {
		t.Errorf("DBPath = %q, want env.db", cfg.DBPath)
	}
	if cfg.JSONPath() != "" {
		t.Error("--skip-json should clear the JSON path")
	}
	if cfg.GeocodingEnabled() {
		t.Error("--disable-geocoding should disable geocoding")
	}
	if cfg.Sort != "deadline" {
		t.Errorf("Sort = %q", cfg.Sort)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hackhunt.yaml")
	content := `sources:
  - unstop
  - hackerearth
db_path: ""
database_url: postgres://hackhunt@localhost/hackhunt
ics_output: out/deadlines.ics
http:
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path, newFlags(t), testNow)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if want := []string{"unstop", "hackerearth"}; !reflect.DeepEqual(cfg.Sources, want) {
		t.Errorf("Sources = %v, want %v", cfg.Sources, want)
	}
	if !cfg.StoreEnabled() {
		t.Error("a database URL should enable the store without a db path")
	}
	if cfg.ICSOutput != "out/deadlines.ics" {
		t.Errorf("ICSOutput = %q", cfg.ICSOutput)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.HTTP.Timeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil, testNow); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}

	if _, err := Load("", newFlags(t, "--sort", "random"), testNow); err == nil {
		t.Error("expected an error for an invalid sort order")
	}

	t.Setenv("HACKHUNT_HTTP_TIMEOUT", "soon")
	if _, err := Load("", nil, testNow); err == nil {
		t.Error("expected an error for an invalid timeout")
	}
}

func TestStoreEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"sqlite path", Config{DBPath: "data/x.db"}, true},
		{"empty path", Config{DBPath: "  "}, false},
		{"postgres only", Config{DatabaseURL: "postgres://localhost/x"}, true},
		{"skipped", Config{DBPath: "data/x.db", SkipDB: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.StoreEnabled(); got != tt.want {
				t.Errorf("StoreEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"2", 2 * time.Second, false},
		{"1.5", 1500 * time.Millisecond, false},
		{"", 0, false},
		{"later", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDuration(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
