package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const upsertBatchSize = 200

type hackathonRow struct {
	ID                  string         `gorm:"column:id;type:text;primaryKey"`
	Title               string         `gorm:"column:title;type:text;not null"`
	URL                 string         `gorm:"column:url;type:text;not null"`
	SourcePlatform      string         `gorm:"column:source_platform;type:varchar(32);not null;index"`
	Format              string         `gorm:"column:format;type:varchar(16);not null;index;check:format IN ('Online','Offline','Hybrid')"`
	LocationText        string         `gorm:"column:location_text;type:text;not null"`
	Latitude            *float64       `gorm:"column:latitude;type:double precision"`
	Longitude           *float64       `gorm:"column:longitude;type:double precision"`
	StartDate           time.Time      `gorm:"column:start_date;type:timestamptz;not null;index"`
	FinalSubmissionDate time.Time      `gorm:"column:final_submission_date;type:timestamptz;not null"`
	DaysToFinal         int            `gorm:"column:days_to_final;type:int;not null;index;check:days_to_final >= 0"`
	Themes              datatypes.JSON `gorm:"column:themes;type:jsonb;not null"`
	OrganizerPastEvents int            `gorm:"column:organizer_past_events;type:int;not null;default:0"`
	Prizes              datatypes.JSON `gorm:"column:prizes;type:jsonb;not null"`
	CreatedAt           time.Time      `gorm:"column:created_at;type:timestamptz;not null;index;autoCreateTime:false"`
	IsActive            bool           `gorm:"column:is_active;type:boolean;not null;default:true"`
}

func (hackathonRow) TableName() string { return "hackathons" }

type runRow struct {
	ID              string    `gorm:"column:id;type:uuid;primaryKey"`
	StartedAt       time.Time `gorm:"column:started_at;type:timestamptz;not null"`
	FinishedAt      time.Time `gorm:"column:finished_at;type:timestamptz;not null"`
	Sources         string    `gorm:"column:sources;type:text;not null"`
	Fetched         int       `gorm:"column:fetched;type:int;not null"`
	WrittenToDB     int       `gorm:"column:written_to_db;type:int;not null"`
	DeactivatedInDB int       `gorm:"column:deactivated_in_db;type:int;not null"`
}

func (runRow) TableName() string { return "ingestion_runs" }

// PostgresStore keeps the catalog in PostgreSQL.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and creates or updates the tables.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&hackathonRow{}, &runRow{}); err != nil {
		return nil, fmt.Errorf("migrating postgres schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Stored lists the stored rows of the given platforms.
func (s *PostgresStore) Stored(ctx context.Context, platforms []hackathon.Platform) ([]hackathon.StoredRecord, error) {
	if len(platforms) == 0 {
		return []hackathon.StoredRecord{}, nil
	}

	var rows []hackathonRow
	if err := s.db.WithContext(ctx).
		Select("id", "source_platform", "is_active").
		Where("source_platform IN ?", platformStrings(platforms)).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying stored hackathons: %w", err)
	}

	stored := make([]hackathon.StoredRecord, 0, len(rows))
	for _, r := range rows {
		stored = append(stored, hackathon.StoredRecord{
			ID:             r.ID,
			SourcePlatform: hackathon.Platform(r.SourcePlatform),
			IsActive:       r.IsActive,
		})
	}
	return stored, nil
}

// Apply deactivates stale rows and upserts the batch in one transaction.
func (s *PostgresStore) Apply(ctx context.Context, rec *hackathon.Reconciliation) (ApplyResult, error) {
	var result ApplyResult
	if rec == nil {
		return result, nil
	}

	rows := make([]hackathonRow, 0, len(rec.ToUpsert))
	for _, r := range rec.ToUpsert {
		row, err := toRow(r)
		if err != nil {
			return result, err
		}
		rows = append(rows, row)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rec.ToDeactivate) > 0 {
			res := tx.Model(&hackathonRow{}).
				Where("id IN ? AND is_active = ?", rec.ToDeactivate, true).
				Update("is_active", false)
			if res.Error != nil {
				return fmt.Errorf("deactivating hackathons: %w", res.Error)
			}
			result.Deactivated = int(res.RowsAffected)
		}

		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).CreateInBatches(rows, upsertBatchSize).Error; err != nil {
				return fmt.Errorf("upserting hackathons: %w", err)
			}
			result.Written = len(rows)
		}
		return nil
	})
	if err != nil {
		return ApplyResult{}, err
	}
	return result, nil
}

// RecordRun stores the bookkeeping row of a finished run.
func (s *PostgresStore) RecordRun(ctx context.Context, run Run) error {
	row := runRow{
		ID:              run.ID,
		StartedAt:       run.StartedAt.UTC(),
		FinishedAt:      run.FinishedAt.UTC(),
		Sources:         strings.Join(run.Sources, ","),
		Fetched:         run.Fetched,
		WrittenToDB:     run.WrittenToDB,
		DeactivatedInDB: run.DeactivatedInDB,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(r *hackathon.Record) (hackathonRow, error) {
	themes, err := encodeThemes(r.Themes)
	if err != nil {
		return hackathonRow{}, err
	}
	prizes, err := encodePrizes(r.Prizes)
	if err != nil {
		return hackathonRow{}, err
	}
	return hackathonRow{
		ID:                  r.ID,
		Title:               r.Title,
		URL:                 r.URL,
		SourcePlatform:      string(r.SourcePlatform),
		Format:              string(r.Format),
		LocationText:        r.LocationText,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		StartDate:           r.StartDate.UTC(),
		FinalSubmissionDate: r.FinalSubmissionDate.UTC(),
		DaysToFinal:         r.DaysToFinal,
		Themes:              datatypes.JSON(themes),
		OrganizerPastEvents: r.OrganizerPastEvents,
		Prizes:              datatypes.JSON(prizes),
		CreatedAt:           r.CreatedAt.UTC(),
		IsActive:            true,
	}, nil
}
