package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/config"
	"github.com/pfrederiksen/hackhunt/internal/logger"
	"github.com/pfrederiksen/hackhunt/internal/pipeline"
)

func execute(t *testing.T, ingest ingestFunc, args ...string) (string, error) {
	t.Helper()
	prev := logger.Default()
	t.Cleanup(func() { logger.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	cmd := newApp(&stdout, &stderr, ingest).rootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func fakeSummary(cfg *config.Config) *pipeline.Summary {
	return &pipeline.Summary{
		RunID:           "run-42",
		Status:          pipeline.StatusOK,
		Sources:         cfg.Sources,
		Fetched:         7,
		WrittenToDB:     7,
		WrittenToJSON:   7,
		DeactivatedInDB: 2,
		Duration:        1500 * time.Millisecond,
	}
}

func TestIngest_JSONSummary(t *testing.T) {
	var got *config.Config
	ingest := func(ctx context.Context, cfg *config.Config) (*pipeline.Summary, error) {
		got = cfg
		return fakeSummary(cfg), nil
	}

	out, err := execute(t, ingest, "ingest", "--sources", "mlh,devpost", "--max-pages", "2", "--skip-db")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if got == nil {
		t.Fatal("ingest was not called")
	}
	if want := []string{"mlh", "devpost"}; !reflect.DeepEqual(got.Sources, want) {
		t.Errorf("Sources = %v, want %v", got.Sources, want)
	}
	if got.MaxPages != 2 || !got.SkipDB {
		t.Errorf("flags not applied: %+v", got)
	}

	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected a single JSON line, got %q", out)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	want := map[string]interface{}{
		"run_id":            "run-42",
		"status":            "ok",
		"sources":           []interface{}{"mlh", "devpost"},
		"fetched":           float64(7),
		"written_to_db":     float64(7),
		"written_to_json":   float64(7),
		"deactivated_in_db": float64(2),
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("summary = %v, want %v", decoded, want)
	}
}

func TestRootRunsIngest(t *testing.T) {
	called := false
	ingest := func(ctx context.Context, cfg *config.Config) (*pipeline.Summary, error) {
		called = true
		return fakeSummary(cfg), nil
	}

	if _, err := execute(t, ingest, "--format", "TEXT"); err != nil {
		t.Fatalf("root command failed: %v", err)
	}
	if !called {
		t.Error("root command should run an ingestion")
	}
}

func TestIngest_TextSummary(t *testing.T) {
	ingest := func(ctx context.Context, cfg *config.Config) (*pipeline.Summary, error) {
		return fakeSummary(cfg), nil
	}

	out, err := execute(t, ingest, "ingest", "--format", "text", "--sources", "unstop")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	for _, want := range []string{
		"Ingestion ok (run run-42)",
		"Sources:          unstop",
		"Deactivated:      2",
		"Duration:         1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Source errors") {
		t.Error("zero source errors should be omitted")
	}
}

func TestIngest_Errors(t *testing.T) {
	boom := errors.New("applying reconciliation: disk full")
	failing := func(ctx context.Context, cfg *config.Config) (*pipeline.Summary, error) {
		return nil, boom
	}
	unused := func(ctx context.Context, cfg *config.Config) (*pipeline.Summary, error) {
		t.Error("ingest should not run")
		return nil, nil
	}

	tests := []struct {
		name   string
		ingest ingestFunc
		args   []string
		want   string
	}{
		{"pipeline failure", failing, []string{"ingest"}, "disk full"},
		{"invalid format", unused, []string{"ingest", "--format", "yaml"}, "invalid format"},
		{"invalid sort", unused, []string{"ingest", "--sort", "random"}, "invalid sort order"},
		{"invalid log level", unused, []string{"ingest", "--log-level", "loud"}, "unknown log level"},
		{"unexpected argument", unused, []string{"ingest", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.ingest, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			if out != "" {
				t.Errorf("nothing should be printed on failure, got %q", out)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	prev := Version
	Version = "1.2.3"
	defer func() { Version = prev }()

	out, err := execute(t, nil, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "hackhunt 1.2.3\n" {
		t.Errorf("version output = %q", out)
	}
}
