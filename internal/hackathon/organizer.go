package hackathon

import "strings"

// OrganizerTally counts how many records of one normalization batch share a
// case-folded organizer name.
type OrganizerTally map[string]int

// TallyOrganizers counts the non-empty organizer names in a batch.
func TallyOrganizers(names []string) OrganizerTally {
	tally := make(OrganizerTally)
	for _, name := range names {
		key := organizerKey(name)
		if key == "" {
			continue
		}
		tally[key]++
	}
	return tally
}

// PastEvents returns how many other records in the batch share the
// organizer. Unknown and empty organizers have zero.
func (t OrganizerTally) PastEvents(name string) int {
	n := t[organizerKey(name)]
	if n <= 1 {
		return 0
	}
	return n - 1
}

func organizerKey(name string) string {
	return fold(strings.TrimSpace(name))
}
