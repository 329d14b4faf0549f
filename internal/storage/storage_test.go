package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
)

func testRecord(id string, platform hackathon.Platform) *hackathon.Record {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &hackathon.Record{
		ID:                  id,
		Title:               "Event " + id,
		URL:                 "https://example.com/" + id,
		SourcePlatform:      platform,
		Format:              hackathon.FormatOnline,
		LocationText:        hackathon.LocationGlobal,
		StartDate:           now,
		FinalSubmissionDate: now,
		Themes:              []string{},
		Prizes:              []hackathon.Prize{hackathon.PrizeUnspecified},
		CreatedAt:           now,
	}
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "hackhunt.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// runBatch reconciles batch against the store the way an ingestion run does.
func runBatch(t *testing.T, store Store, sources []string, batch []*hackathon.Record) ApplyResult {
	t.Helper()
	ctx := context.Background()
	platforms := hackathon.PlatformsForSources(sources)

	stored, err := store.Stored(ctx, platforms)
	if err != nil {
		t.Fatalf("Stored failed: %v", err)
	}
	result, err := store.Apply(ctx, hackathon.Reconcile(batch, platforms, stored))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return result
}

func activeStates(t *testing.T, store *SQLiteStore) map[string]bool {
	t.Helper()
	rows, err := store.db.Query(`SELECT id, is_active FROM hackathons ORDER BY id`)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	states := make(map[string]bool)
	for rows.Next() {
		var id string
		var active int
		if err := rows.Scan(&id, &active); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		states[id] = active == 1
	}
	return states
}

func TestSQLiteStore_DeactivatesStaleRecordsForSelectedSource(t *testing.T) {
	store := openTestStore(t)

	first := runBatch(t, store, []string{"devpost"}, []*hackathon.Record{
		testRecord("devpost-1", hackathon.PlatformDevpost),
		testRecord("devpost-2", hackathon.PlatformDevpost),
	})
	if first.Written != 2 || first.Deactivated != 0 {
		t.Errorf("first run: got %+v", first)
	}

	second := runBatch(t, store, []string{"devpost"}, []*hackathon.Record{
		testRecord("devpost-1", hackathon.PlatformDevpost),
	})
	if second.Written != 1 || second.Deactivated != 1 {
		t.Errorf("second run: got %+v", second)
	}

	want := map[string]bool{"devpost-1": true, "devpost-2": false}
	if got := activeStates(t, store); !reflect.DeepEqual(got, want) {
		t.Errorf("active states = %v, want %v", got, want)
	}

	// Already inactive rows are not counted again.
	third := runBatch(t, store, []string{"devpost"}, []*hackathon.Record{
		testRecord("devpost-1", hackathon.PlatformDevpost),
	})
	if third.Deactivated != 0 {
		t.Errorf("third run deactivated %d, want 0", third.Deactivated)
	}
}

func TestSQLiteStore_DoesNotDeactivateUnselectedSources(t *testing.T) {
	store := openTestStore(t)

	runBatch(t, store, []string{"devpost", "unstop"}, []*hackathon.Record{
		testRecord("devpost-1", hackathon.PlatformDevpost),
		testRecord("unstop-1", hackathon.PlatformUnstop),
	})
	runBatch(t, store, []string{"devpost"}, []*hackathon.Record{
		testRecord("devpost-1", hackathon.PlatformDevpost),
	})

	want := map[string]bool{"devpost-1": true, "unstop-1": true}
	if got := activeStates(t, store); !reflect.DeepEqual(got, want) {
		t.Errorf("active states = %v, want %v", got, want)
	}
}

func TestSQLiteStore_EmptyBatchLeavesDataUntouched(t *testing.T) {
	store := openTestStore(t)

	runBatch(t, store, []string{"mlh"}, []*hackathon.Record{
		testRecord("mlh-1", hackathon.PlatformMLH),
	})
	result := runBatch(t, store, []string{"mlh"}, nil)
	if result.Deactivated != 0 || result.Written != 0 {
		t.Errorf("empty run changed rows: %+v", result)
	}
	if got := activeStates(t, store); !got["mlh-1"] {
		t.Error("expected mlh-1 to stay active")
	}
}

func TestSQLiteStore_UpsertReactivatesAndOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runBatch(t, store, []string{"devpost"}, []*hackathon.Record{
		testRecord("devpost-1", hackathon.PlatformDevpost),
		testRecord("devpost-2", hackathon.PlatformDevpost),
	})
	runBatch(t, store, []string{"devpost"}, []*hackathon.Record{
		testRecord("devpost-1", hackathon.PlatformDevpost),
	})

	updated := testRecord("devpost-2", hackathon.PlatformDevpost)
	updated.Title = "Renamed"
	updated.Format = hackathon.FormatOffline
	updated.LocationText = "London"
	updated.SetCoordinates(51.5074, -0.1278)
	updated.Themes = []string{"AI/ML"}
	updated.Prizes = []hackathon.Prize{hackathon.PrizeCash, hackathon.PrizeSwag}
	runBatch(t, store, []string{"devpost"}, []*hackathon.Record{updated})

	var (
		title, format, themes, prizes, start string
		lat, lng                             float64
		active                               int
	)
	err := store.db.QueryRowContext(ctx,
		`SELECT title, format, themes, prizes, start_date, latitude, longitude, is_active FROM hackathons WHERE id = ?`,
		"devpost-2").Scan(&title, &format, &themes, &prizes, &start, &lat, &lng, &active)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if title != "Renamed" || format != "Offline" || active != 1 {
		t.Errorf("expected overwritten, active row; got %s %s %d", title, format, active)
	}
	if themes != `["AI/ML"]` || prizes != `["Cash","Swag"]` {
		t.Errorf("unexpected serialized lists %s %s", themes, prizes)
	}
	if start != "2026-03-01T00:00:00Z" {
		t.Errorf("expected RFC 3339 UTC timestamp, got %s", start)
	}
	if lat != 51.5074 || lng != -0.1278 {
		t.Errorf("unexpected coordinates %v,%v", lat, lng)
	}
}

func TestSQLiteStore_Stored(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runBatch(t, store, []string{"devpost", "mlh"}, []*hackathon.Record{
		testRecord("devpost-1", hackathon.PlatformDevpost),
		testRecord("mlh-1", hackathon.PlatformMLH),
	})

	stored, err := store.Stored(ctx, []hackathon.Platform{hackathon.PlatformMLH})
	if err != nil {
		t.Fatalf("Stored failed: %v", err)
	}
	want := []hackathon.StoredRecord{{ID: "mlh-1", SourcePlatform: hackathon.PlatformMLH, IsActive: true}}
	if !reflect.DeepEqual(stored, want) {
		t.Errorf("Stored = %+v, want %+v", stored, want)
	}

	none, err := store.Stored(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("expected no rows for no platforms, got %v, %v", none, err)
	}
}

func TestSQLiteStore_RejectsInvalidFormat(t *testing.T) {
	store := openTestStore(t)

	bad := testRecord("devpost-9", hackathon.PlatformDevpost)
	bad.Format = "Teleport"
	_, err := store.Apply(context.Background(), &hackathon.Reconciliation{ToUpsert: []*hackathon.Record{
		testRecord("devpost-8", hackathon.PlatformDevpost),
		bad,
	}})
	if err == nil {
		t.Fatal("expected the CHECK constraint to reject the record")
	}
	if got := activeStates(t, store); len(got) != 0 {
		t.Errorf("expected the transaction to roll back, found %v", got)
	}
}

func TestSQLiteStore_RecordRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := Run{
		ID:              "0b7e3c1e-1f7a-4a51-9b2c-6f1e0b8c9d00",
		StartedAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:      time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC),
		Sources:         []string{"devpost", "mlh"},
		Fetched:         12,
		WrittenToDB:     10,
		DeactivatedInDB: 1,
	}
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	var sources string
	var fetched, written, deactivated int
	err := store.db.QueryRowContext(ctx,
		`SELECT sources, fetched, written_to_db, deactivated_in_db FROM ingestion_runs WHERE id = ?`, run.ID).
		Scan(&sources, &fetched, &written, &deactivated)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if sources != "devpost,mlh" || fetched != 12 || written != 10 || deactivated != 1 {
		t.Errorf("unexpected run row %s %d %d %d", sources, fetched, written, deactivated)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hackhunt.db")
	for i := 0; i < 2; i++ {
		store, err := OpenSQLite(context.Background(), path)
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		var version int
		if err := store.db.QueryRow(`SELECT version FROM schema_migrations`).Scan(&version); err != nil {
			t.Fatalf("reading schema version: %v", err)
		}
		if version != 2 {
			t.Errorf("schema version = %d, want 2", version)
		}
		store.Close()
	}
}

func TestIsPostgresURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"postgres://user@localhost/hackhunt", true},
		{"POSTGRESQL://user@localhost/hackhunt", true},
		{"", false},
		{"sqlite:///tmp/x.db", false},
		{"data/hackhunt.db", false},
	}
	for _, tt := range tests {
		if got := IsPostgresURL(tt.in); got != tt.want {
			t.Errorf("IsPostgresURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/data/x.json")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if got != filepath.Join(home, "data", "x.json") {
		t.Errorf("ExpandPath = %s", got)
	}
	if got, _ := ExpandPath("relative/x.json"); got != "relative/x.json" {
		t.Errorf("expected relative path unchanged, got %s", got)
	}
}

func TestWriteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ingested_hackathons.json")

	offline := testRecord("mlh-7", hackathon.PlatformMLH)
	offline.Format = hackathon.FormatOffline
	offline.LocationText = "Pune, India"
	offline.SetCoordinates(18.5204, 73.8567)
	offline.DaysToFinal = 3

	n, err := WriteExport(path, []*hackathon.Record{testRecord("devpost-1", hackathon.PlatformDevpost), nil, offline})
	if err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 records written, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	text := string(data)
	for _, key := range []string{`"sourcePlatform": "Devpost"`, `"coordinates": null`, `"finalSubmissionDate": "2026-03-01T00:00:00Z"`, `"organizerPastEvents": 0`} {
		if !strings.Contains(text, key) {
			t.Errorf("export missing %s", key)
		}
	}
	if !strings.HasPrefix(text, "[\n  {") {
		t.Errorf("expected 2-space indented array, got prefix %q", text[:10])
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	coords, ok := raw[1]["coordinates"].(map[string]interface{})
	if !ok || coords["lat"] != 18.5204 || coords["lng"] != 73.8567 {
		t.Errorf("unexpected coordinates %v", raw[1]["coordinates"])
	}
	if _, ok := raw[0]["latitude"]; ok {
		t.Error("latitude must be folded into coordinates")
	}

	records, err := ReadExport(path)
	if err != nil {
		t.Fatalf("ReadExport failed: %v", err)
	}
	if len(records) != 2 || records[1].DaysToFinal != 3 {
		t.Errorf("unexpected read back %+v", records)
	}
	if ts, err := ExportTime(records[0].CreatedAt); err != nil || !ts.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ExportTime(%q) = %v, %v", records[0].CreatedAt, ts, err)
	}

	back, err := FromExport(records[1])
	if err != nil {
		t.Fatalf("FromExport failed: %v", err)
	}
	if !reflect.DeepEqual(back, offline) {
		t.Errorf("FromExport = %+v, want %+v", back, offline)
	}
}

func TestFromExport_BadTimestamp(t *testing.T) {
	e := ToExport(testRecord("mlh-1", hackathon.PlatformMLH))
	e.FinalSubmissionDate = "next week"
	if _, err := FromExport(e); err == nil {
		t.Error("expected an error for an unparseable timestamp")
	}
}

func TestReadExport_Missing(t *testing.T) {
	records, err := ReadExport(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil || len(records) != 0 {
		t.Errorf("expected empty result for missing file, got %v, %v", records, err)
	}
}
