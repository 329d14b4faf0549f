package hackathon

import (
	"reflect"
	"testing"
)

func rec(id string, p Platform) *Record {
	return &Record{ID: id, SourcePlatform: p}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name         string
		batch        []*Record
		selected     []Platform
		stored       []StoredRecord
		wantInactive []string
		wantEligible []Platform
	}{
		{
			name:     "stale record of refreshed platform is deactivated",
			batch:    []*Record{rec("devpost-1", PlatformDevpost)},
			selected: []Platform{PlatformDevpost},
			stored: []StoredRecord{
				{ID: "devpost-1", SourcePlatform: PlatformDevpost, IsActive: true},
				{ID: "devpost-2", SourcePlatform: PlatformDevpost, IsActive: true},
			},
			wantInactive: []string{"devpost-2"},
			wantEligible: []Platform{PlatformDevpost},
		},
		{
			name:     "unselected platform is untouched",
			batch:    []*Record{rec("devpost-1", PlatformDevpost)},
			selected: []Platform{PlatformDevpost},
			stored: []StoredRecord{
				{ID: "devpost-1", SourcePlatform: PlatformDevpost, IsActive: true},
				{ID: "unstop-1", SourcePlatform: PlatformUnstop, IsActive: true},
			},
			wantInactive: []string{},
			wantEligible: []Platform{PlatformDevpost},
		},
		{
			name:     "selected platform absent from batch is untouched",
			batch:    []*Record{rec("devpost-1", PlatformDevpost)},
			selected: []Platform{PlatformDevpost, PlatformUnstop},
			stored: []StoredRecord{
				{ID: "unstop-1", SourcePlatform: PlatformUnstop, IsActive: true},
			},
			wantInactive: []string{},
			wantEligible: []Platform{PlatformDevpost},
		},
		{
			name:     "empty batch deactivates nothing",
			batch:    nil,
			selected: []Platform{PlatformDevpost},
			stored: []StoredRecord{
				{ID: "devpost-1", SourcePlatform: PlatformDevpost, IsActive: true},
			},
			wantInactive: []string{},
			wantEligible: []Platform{},
		},
		{
			name:     "batch platform not selected is not eligible",
			batch:    []*Record{rec("mlh-1", PlatformMLH)},
			selected: []Platform{PlatformDevpost},
			stored: []StoredRecord{
				{ID: "mlh-2", SourcePlatform: PlatformMLH, IsActive: true},
			},
			wantInactive: []string{},
			wantEligible: []Platform{},
		},
		{
			name:     "already inactive records are not repeated",
			batch:    []*Record{rec("devpost-1", PlatformDevpost)},
			selected: []Platform{PlatformDevpost},
			stored: []StoredRecord{
				{ID: "devpost-3", SourcePlatform: PlatformDevpost, IsActive: true},
				{ID: "devpost-2", SourcePlatform: PlatformDevpost, IsActive: false},
			},
			wantInactive: []string{"devpost-3"},
			wantEligible: []Platform{PlatformDevpost},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.batch, tt.selected, tt.stored)
			if !reflect.DeepEqual(got.ToDeactivate, tt.wantInactive) {
				t.Errorf("ToDeactivate = %v, want %v", got.ToDeactivate, tt.wantInactive)
			}
			if !reflect.DeepEqual(got.EligiblePlatforms, tt.wantEligible) {
				t.Errorf("EligiblePlatforms = %v, want %v", got.EligiblePlatforms, tt.wantEligible)
			}
			if len(got.ToUpsert) != len(tt.batch) {
				t.Errorf("ToUpsert has %d records, want %d", len(got.ToUpsert), len(tt.batch))
			}
		})
	}
}
