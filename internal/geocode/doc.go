// Package geocode resolves free-text event locations to coordinates.
//
// A Geocoder consults, in order, its per-run cache (which also remembers
// misses), a static table of well-known locations embedded from
// known_locations.yaml, and finally an external Lookup such as the public
// Nominatim search API. Online placeholders like "Global" never resolve.
//
// A Geocoder is meant to live for a single ingestion run; create a new one
// for every run so cached misses do not leak between runs.
package geocode
