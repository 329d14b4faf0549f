package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/logger"

	_ "modernc.org/sqlite"
)

const upsertHackathonSQL = `
INSERT INTO hackathons (
	id, title, url, source_platform, format, location_text,
	latitude, longitude, start_date, final_submission_date, days_to_final,
	themes, organizer_past_events, prizes, created_at, is_active
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	url = excluded.url,
	source_platform = excluded.source_platform,
	format = excluded.format,
	location_text = excluded.location_text,
	latitude = excluded.latitude,
	longitude = excluded.longitude,
	start_date = excluded.start_date,
	final_submission_date = excluded.final_submission_date,
	days_to_final = excluded.days_to_final,
	themes = excluded.themes,
	organizer_past_events = excluded.organizer_past_events,
	prizes = excluded.prizes,
	created_at = excluded.created_at,
	is_active = 1`

// SQLiteStore keeps the catalog in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it
// to the latest schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	if err := ensureParent(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("SQLite schema ready", logger.Fields{
		"path":    path,
		"version": version,
		"dirty":   dirty,
	})

	return &SQLiteStore{db: db}, nil
}

// Stored lists the stored rows of the given platforms.
func (s *SQLiteStore) Stored(ctx context.Context, platforms []hackathon.Platform) ([]hackathon.StoredRecord, error) {
	if len(platforms) == 0 {
		return []hackathon.StoredRecord{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(platforms)), ", ")
	args := make([]interface{}, 0, len(platforms))
	for _, p := range platformStrings(platforms) {
		args = append(args, p)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_platform, is_active FROM hackathons WHERE source_platform IN (`+placeholders+`) ORDER BY id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying stored hackathons: %w", err)
	}
	defer rows.Close()

	stored := make([]hackathon.StoredRecord, 0)
	for rows.Next() {
		var (
			rec      hackathon.StoredRecord
			platform string
			active   int
		)
		if err := rows.Scan(&rec.ID, &platform, &active); err != nil {
			return nil, fmt.Errorf("scanning stored hackathon: %w", err)
		}
		rec.SourcePlatform = hackathon.Platform(platform)
		rec.IsActive = active == 1
		stored = append(stored, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stored hackathons: %w", err)
	}
	return stored, nil
}

// Apply deactivates stale rows and upserts the batch in one transaction.
func (s *SQLiteStore) Apply(ctx context.Context, rec *hackathon.Reconciliation) (ApplyResult, error) {
	var result ApplyResult
	if rec == nil {
		return result, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	if len(rec.ToDeactivate) > 0 {
		stmt, err := tx.PrepareContext(ctx, `UPDATE hackathons SET is_active = 0 WHERE id = ? AND is_active = 1`)
		if err != nil {
			return result, fmt.Errorf("preparing deactivation: %w", err)
		}
		defer stmt.Close()

		for _, id := range rec.ToDeactivate {
			res, err := stmt.ExecContext(ctx, id)
			if err != nil {
				return result, fmt.Errorf("deactivating %s: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return result, fmt.Errorf("counting deactivated rows: %w", err)
			}
			result.Deactivated += int(n)
		}
	}

	if len(rec.ToUpsert) > 0 {
		stmt, err := tx.PrepareContext(ctx, upsertHackathonSQL)
		if err != nil {
			return result, fmt.Errorf("preparing upsert: %w", err)
		}
		defer stmt.Close()

		for _, r := range rec.ToUpsert {
			themes, err := encodeThemes(r.Themes)
			if err != nil {
				return result, err
			}
			prizes, err := encodePrizes(r.Prizes)
			if err != nil {
				return result, err
			}
			if _, err := stmt.ExecContext(ctx,
				r.ID, r.Title, r.URL, string(r.SourcePlatform), string(r.Format), r.LocationText,
				nullFloat(r.Latitude), nullFloat(r.Longitude), formatTime(r.StartDate), formatTime(r.FinalSubmissionDate), r.DaysToFinal,
				string(themes), r.OrganizerPastEvents, string(prizes), formatTime(r.CreatedAt),
			); err != nil {
				return result, fmt.Errorf("upserting %s: %w", r.ID, err)
			}
			result.Written++
		}
	}

	if err := tx.Commit(); err != nil {
		return ApplyResult{}, fmt.Errorf("committing transaction: %w", err)
	}
	return result, nil
}

// RecordRun stores the bookkeeping row of a finished run.
func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingestion_runs (id, started_at, finished_at, sources, fetched, written_to_db, deactivated_in_db)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), strings.Join(run.Sources, ","),
		run.Fetched, run.WrittenToDB, run.DeactivatedInDB)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
