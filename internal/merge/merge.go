// Package merge reconciles local and remote copies of a document collection.
package merge

import (
	"sort"

	"stockledger/pkg/models"
)

// Priority ranks payment states so a settled local copy is not overwritten
// by a stale remote snapshot.
func Priority(s models.PaymentStatus) int {
	switch s {
	case models.PaymentPaid:
		return 2
	case models.PaymentPartial:
		return 1
	default:
		return 0
	}
}

// Merge combines local and remote by id. Remote-only documents are added;
// for shared ids the higher priority wins and remote wins ties. The result
// is sorted by date, newest first.
//
// A remote correction that lowers the status (a refund reverting paid to
// unpaid) is masked by a local paid copy.
func Merge(local, remote []models.Document) []models.Document {
	merged := make([]models.Document, 0, len(local)+len(remote))
	index := make(map[string]int, len(local))

	for _, d := range local {
		if i, ok := index[d.ID]; ok {
			merged[i] = d
			continue
		}
		index[d.ID] = len(merged)
		merged = append(merged, d)
	}

	for _, d := range remote {
		i, ok := index[d.ID]
		if !ok {
			index[d.ID] = len(merged)
			merged = append(merged, d)
			continue
		}
		if Priority(d.PaymentStatus) >= Priority(merged[i].PaymentStatus) {
			merged[i] = d
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date > merged[j].Date
	})
	return merged
}
