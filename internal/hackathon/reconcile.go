package hackathon

import "sort"

// StoredRecord is the persisted liveness state of a record.
type StoredRecord struct {
	ID             string
	SourcePlatform Platform
	IsActive       bool
}

// Reconciliation is the set of changes to apply to the persisted catalog
// after a run.
type Reconciliation struct {
	// ToUpsert is written with is_active forced on.
	ToUpsert []*Record
	// ToDeactivate holds ids of active stored records that were not observed.
	ToDeactivate []string
	// EligiblePlatforms were both selected and present in the batch.
	EligiblePlatforms []Platform
}

// Reconcile compares a batch against stored records. Only platforms that
// were selected for the run and produced at least one record are eligible
// for deactivation, so a partial run never touches platforms it did not
// query and an empty fetch never wipes prior data.
func Reconcile(batch []*Record, selected []Platform, stored []StoredRecord) *Reconciliation {
	result := &Reconciliation{
		ToUpsert:          batch,
		ToDeactivate:      make([]string, 0),
		EligiblePlatforms: make([]Platform, 0),
	}

	isSelected := make(map[Platform]bool, len(selected))
	for _, p := range selected {
		isSelected[p] = true
	}

	observed := make(map[string]bool, len(batch))
	eligible := make(map[Platform]bool)
	for _, r := range batch {
		if r == nil || r.ID == "" {
			continue
		}
		observed[r.ID] = true
		if isSelected[r.SourcePlatform] {
			eligible[r.SourcePlatform] = true
		}
	}
	if len(eligible) == 0 {
		return result
	}

	for p := range eligible {
		result.EligiblePlatforms = append(result.EligiblePlatforms, p)
	}
	sort.Slice(result.EligiblePlatforms, func(i, j int) bool {
		return result.EligiblePlatforms[i] < result.EligiblePlatforms[j]
	})

	for _, s := range stored {
		if !s.IsActive || !eligible[s.SourcePlatform] || observed[s.ID] {
			continue
		}
		result.ToDeactivate = append(result.ToDeactivate, s.ID)
	}
	sort.Strings(result.ToDeactivate)

	return result
}
