package geocode

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed known_locations.yaml
var knownLocationsYAML string

// KnownLocation is one entry of the static location table.
type KnownLocation struct {
	Key string  `yaml:"key"`
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// LoadKnown reads a location table. Keys are lowercased and entries with an
// empty key are dropped; file order is kept.
func LoadKnown(r io.Reader) ([]KnownLocation, error) {
	var entries []KnownLocation
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return []KnownLocation{}, nil
		}
		return nil, fmt.Errorf("decoding known locations: %w", err)
	}

	out := make([]KnownLocation, 0, len(entries))
	for _, e := range entries {
		e.Key = strings.ToLower(strings.TrimSpace(e.Key))
		if e.Key == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// DefaultKnown returns the embedded location table.
func DefaultKnown() []KnownLocation {
	known, err := LoadKnown(strings.NewReader(knownLocationsYAML))
	if err != nil {
		panic(fmt.Sprintf("geocode: embedded known_locations.yaml: %v", err))
	}
	return known
}

// matchKnown returns the first entry whose key occurs in normalized.
func matchKnown(known []KnownLocation, normalized string) (*Point, bool) {
	for _, k := range known {
		if strings.Contains(normalized, k.Key) {
			return &Point{Lat: k.Lat, Lng: k.Lng}, true
		}
	}
	return nil, false
}
