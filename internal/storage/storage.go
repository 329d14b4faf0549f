package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
)

// Store is the persisted catalog.
type Store interface {
	// Stored lists the stored rows of the given platforms.
	Stored(ctx context.Context, platforms []hackathon.Platform) ([]hackathon.StoredRecord, error)
	// Apply deactivates and upserts in one transaction.
	Apply(ctx context.Context, rec *hackathon.Reconciliation) (ApplyResult, error)
	// RecordRun stores the bookkeeping row of a finished run.
	RecordRun(ctx context.Context, run Run) error
	Close() error
}

// ApplyResult counts the rows touched by Apply.
type ApplyResult struct {
	Written     int
	Deactivated int
}

// Run is one ingestion run as recorded in ingestion_runs.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	Sources         []string
	Fetched         int
	WrittenToDB     int
	DeactivatedInDB int
}

// Open opens the store selected by databaseURL. A postgres:// or
// postgresql:// URL selects PostgreSQL; anything else opens the SQLite file
// at dbPath.
func Open(ctx context.Context, databaseURL, dbPath string) (Store, error) {
	if IsPostgresURL(databaseURL) {
		return OpenPostgres(ctx, databaseURL)
	}
	return OpenSQLite(ctx, dbPath)
}

// IsPostgresURL reports whether u names a PostgreSQL database.
func IsPostgresURL(u string) bool {
	u = strings.ToLower(strings.TrimSpace(u))
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

// ExpandPath expands a leading ~/ to the home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// ensureParent creates the directory that will hold path.
func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// formatTime renders t as an RFC 3339 UTC string.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func encodeThemes(themes []string) ([]byte, error) {
	if themes == nil {
		themes = []string{}
	}
	data, err := json.Marshal(themes)
	if err != nil {
		return nil, fmt.Errorf("encoding themes: %w", err)
	}
	return data, nil
}

func encodePrizes(prizes []hackathon.Prize) ([]byte, error) {
	if len(prizes) == 0 {
		prizes = []hackathon.Prize{hackathon.PrizeUnspecified}
	}
	data, err := json.Marshal(prizes)
	if err != nil {
		return nil, fmt.Errorf("encoding prizes: %w", err)
	}
	return data, nil
}

func platformStrings(platforms []hackathon.Platform) []string {
	out := make([]string, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, string(p))
	}
	return out
}
