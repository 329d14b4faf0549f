// Package normalize maps each source's raw listing shape onto the canonical
// hackathon.Record.
//
// There is one pure function per source. Each takes the raw records of a
// single fetch plus the reference time of the run and returns the records it
// could map, in input order. A raw record missing its identity, its dates, or
// carrying an inverted date range is skipped; normalizers never return an
// error for malformed input.
package normalize
