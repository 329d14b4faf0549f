package hackathon

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder selects the ordering applied to exported records.
type SortOrder string

const (
	SortNone     SortOrder = ""
	SortByStart  SortOrder = "start"
	SortByFinal  SortOrder = "deadline"
	SortBySource SortOrder = "platform"
	SortByTitle  SortOrder = "title"
)

// ParseSortOrder validates a sort order name. "none" and "" keep batch order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case SortNone, SortByStart, SortByFinal, SortBySource, SortByTitle:
		return order, nil
	case "none":
		return SortNone, nil
	default:
		return SortNone, fmt.Errorf("invalid sort order: %s (must be start, deadline, platform, title or none)", s)
	}
}

// SortRecords sorts records in place. Ties fall back to the deadline, then id,
// so output is stable across runs.
func SortRecords(records []*Record, order SortOrder) {
	switch order {
	case SortByStart:
		sort.SliceStable(records, func(i, j int) bool {
			if !records[i].StartDate.Equal(records[j].StartDate) {
				return records[i].StartDate.Before(records[j].StartDate)
			}
			return compareByDeadline(records[i], records[j])
		})
	case SortByFinal:
		sort.SliceStable(records, func(i, j int) bool {
			return compareByDeadline(records[i], records[j])
		})
	case SortBySource:
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].SourcePlatform != records[j].SourcePlatform {
				return records[i].SourcePlatform < records[j].SourcePlatform
			}
			return compareByDeadline(records[i], records[j])
		})
	case SortByTitle:
		sort.SliceStable(records, func(i, j int) bool {
			ti, tj := strings.ToLower(records[i].Title), strings.ToLower(records[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByDeadline(records[i], records[j])
		})
	}
}

func compareByDeadline(a, b *Record) bool {
	if !a.FinalSubmissionDate.Equal(b.FinalSubmissionDate) {
		return a.FinalSubmissionDate.Before(b.FinalSubmissionDate)
	}
	return a.ID < b.ID
}
