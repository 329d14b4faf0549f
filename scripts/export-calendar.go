//go:build ignore

// export-calendar renders a deadline calendar from an existing JSON export
// without running an ingestion.
//
//	go run scripts/export-calendar.go data/ingested_hackathons.json deadlines.ics
package main

import (
	"fmt"
	"os"

	"github.com/pfrederiksen/hackhunt/internal/calendar"
	"github.com/pfrederiksen/hackhunt/internal/hackathon"
	"github.com/pfrederiksen/hackhunt/internal/storage"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: export-calendar <export.json> <out.ics>")
		os.Exit(2)
	}

	exported, err := storage.ReadExport(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	records := make([]*hackathon.Record, 0, len(exported))
	for _, e := range exported {
		r, err := storage.FromExport(e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping record: %v\n", err)
			continue
		}
		records = append(records, r)
	}
	hackathon.SortRecords(records, hackathon.SortByFinal)

	n, err := calendar.WriteICS(os.Args[2], calendar.DefaultCalendarName, records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d deadlines to %s\n", n, os.Args[2])
}
