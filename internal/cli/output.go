package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/hackhunt/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteSummary writes the run summary in the specified format
func WriteSummary(w io.Writer, summary *pipeline.Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, summary)
	case FormatText:
		return writeText(w, summary)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as a single JSON line
func writeJSON(w io.Writer, summary *pipeline.Summary) error {
	return json.NewEncoder(w).Encode(summary)
}

// writeText outputs the summary as a human-readable block
func writeText(w io.Writer, s *pipeline.Summary) error {
	fmt.Fprintf(w, "Ingestion %s (run %s)\n", s.Status, s.RunID)
	fmt.Fprintf(w, "  Sources:          %s\n", strings.Join(s.Sources, ", "))
	fmt.Fprintf(w, "  Fetched:          %d\n", s.Fetched)
	fmt.Fprintf(w, "  Written to DB:    %d\n", s.WrittenToDB)
	fmt.Fprintf(w, "  Deactivated:      %d\n", s.DeactivatedInDB)
	fmt.Fprintf(w, "  Written to JSON:  %d\n", s.WrittenToJSON)
	if s.WrittenToICS > 0 {
		fmt.Fprintf(w, "  Calendar events:  %d\n", s.WrittenToICS)
	}
	if s.Geocoded > 0 {
		fmt.Fprintf(w, "  Geocoded:         %d\n", s.Geocoded)
	}
	if s.SourceErrors > 0 {
		fmt.Fprintf(w, "  Source errors:    %d\n", s.SourceErrors)
	}
	_, err := fmt.Fprintf(w, "  Duration:         %s\n", s.Duration.Round(time.Millisecond))
	return err
}
