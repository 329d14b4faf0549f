package hackathon

// Dedupe collapses records sharing an id. A later record replaces an earlier
// one entirely but takes over its position, so the output keeps first-seen
// order. Records without an id are dropped.
func Dedupe(records []*Record) []*Record {
	index := make(map[string]int, len(records))
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		if r == nil || r.ID == "" {
			continue
		}
		if i, exists := index[r.ID]; exists {
			out[i] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}
