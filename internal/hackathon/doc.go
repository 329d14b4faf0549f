// Package hackathon defines the canonical hackathon record and the pure logic
// applied to batches of records during an ingestion run.
//
// The package covers the shared vocabulary (formats, platforms, prize
// categories), the free-text submission-period parser, theme and prize
// canonicalization, per-batch organizer counts, deduplication by id, and the
// reconciliation step that decides which stored listings have gone stale after
// a refresh of a subset of sources.
package hackathon
