package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/hackathon"
)

// Coordinates is the export form of a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ExportRecord is one entry of the JSON batch export.
type ExportRecord struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	URL                 string            `json:"url"`
	SourcePlatform      string            `json:"sourcePlatform"`
	Format              string            `json:"format"`
	LocationText        string            `json:"locationText"`
	Coordinates         *Coordinates      `json:"coordinates"`
	StartDate           string            `json:"startDate"`
	FinalSubmissionDate string            `json:"finalSubmissionDate"`
	DaysToFinal         int               `json:"daysToFinal"`
	Themes              []string          `json:"themes"`
	OrganizerPastEvents int               `json:"organizerPastEvents"`
	Prizes              []hackathon.Prize `json:"prizes"`
	CreatedAt           string            `json:"createdAt"`
}

// ToExport converts a record to its export form. Coordinates are present
// only when both latitude and longitude are known.
func ToExport(r *hackathon.Record) ExportRecord {
	themes := r.Themes
	if themes == nil {
		themes = []string{}
	}
	prizes := r.Prizes
	if len(prizes) == 0 {
		prizes = []hackathon.Prize{hackathon.PrizeUnspecified}
	}

	out := ExportRecord{
		ID:                  r.ID,
		Title:               r.Title,
		URL:                 r.URL,
		SourcePlatform:      string(r.SourcePlatform),
		Format:              string(r.Format),
		LocationText:        r.LocationText,
		StartDate:           formatTime(r.StartDate),
		FinalSubmissionDate: formatTime(r.FinalSubmissionDate),
		DaysToFinal:         r.DaysToFinal,
		Themes:              themes,
		OrganizerPastEvents: r.OrganizerPastEvents,
		Prizes:              prizes,
		CreatedAt:           formatTime(r.CreatedAt),
	}
	if r.HasCoordinates() {
		out.Coordinates = &Coordinates{Lat: *r.Latitude, Lng: *r.Longitude}
	}
	return out
}

// WriteExport writes records as a pretty-printed JSON array to path,
// creating parent directories as needed. It returns the number of records
// written.
func WriteExport(path string, records []*hackathon.Record) (int, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return 0, err
	}
	if err := ensureParent(path); err != nil {
		return 0, err
	}

	out := make([]ExportRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		out = append(out, ToExport(r))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding export: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}

	return len(out), nil
}

// ReadExport loads a file written by WriteExport.
func ReadExport(path string) ([]ExportRecord, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []ExportRecord{}, nil
		}
		return nil, fmt.Errorf("reading export: %w", err)
	}

	var records []ExportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	return records, nil
}

// ExportTime parses a timestamp written by WriteExport.
func ExportTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// FromExport converts an exported entry back into a record.
func FromExport(e ExportRecord) (*hackathon.Record, error) {
	start, err := ExportTime(e.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parsing startDate of %s: %w", e.ID, err)
	}
	final, err := ExportTime(e.FinalSubmissionDate)
	if err != nil {
		return nil, fmt.Errorf("parsing finalSubmissionDate of %s: %w", e.ID, err)
	}
	created, err := ExportTime(e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing createdAt of %s: %w", e.ID, err)
	}

	r := &hackathon.Record{
		ID:                  e.ID,
		Title:               e.Title,
		URL:                 e.URL,
		SourcePlatform:      hackathon.Platform(e.SourcePlatform),
		Format:              hackathon.Format(e.Format),
		LocationText:        e.LocationText,
		StartDate:           start,
		FinalSubmissionDate: final,
		DaysToFinal:         e.DaysToFinal,
		Themes:              e.Themes,
		OrganizerPastEvents: e.OrganizerPastEvents,
		Prizes:              e.Prizes,
		CreatedAt:           created,
	}
	if e.Coordinates != nil {
		r.SetCoordinates(e.Coordinates.Lat, e.Coordinates.Lng)
	}
	return r, nil
}
