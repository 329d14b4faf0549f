package hackathon

import "testing"

func TestDedupe(t *testing.T) {
	first := &Record{ID: "a", Title: "first"}
	second := &Record{ID: "a", Title: "second"}
	other := &Record{ID: "b", Title: "other"}

	got := Dedupe([]*Record{first, other, {ID: ""}, nil, second})

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "a" || got[0].Title != "second" {
		t.Errorf("expected surviving 'a' to be the later record, got %+v", got[0])
	}
	if got[1] != other {
		t.Errorf("expected 'b' in second position, got %+v", got[1])
	}
}

func TestDedupe_Empty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d records", len(got))
	}
}
