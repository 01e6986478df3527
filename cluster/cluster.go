// Package cluster partitions fingerprinted image records into groups of
// near-duplicates.
//
// The partition is greedy and first-come-first-served: records are visited
// in input order, and the earliest unclaimed record absorbs every later
// unclaimed record within the distance threshold. This is deliberately not
// a transitive closure. If A~B and B~C but A and C are far apart, C is
// compared against A (the cluster's original), not B, and may end up on its
// own. Which file survives as the original therefore depends on the input
// enumeration order; callers must feed records in a stable order.
package cluster

import (
	"fmt"

	"imagedupes/fingerprint"
	"imagedupes/types"
)

// Partition groups records whose fingerprint distance to a cluster original
// is at most threshold. Records that attract no duplicates contribute no
// cluster and remain implicit singletons.
//
// The only error condition is comparing fingerprints of different widths,
// which cannot happen when all records come from one scan.
func Partition(records []types.ImageRecord, threshold int) ([]types.DuplicateCluster, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("similarity threshold must be non-negative, got %d", threshold)
	}

	claimed := make([]bool, len(records))
	var clusters []types.DuplicateCluster

	for i := range records {
		if claimed[i] {
			continue
		}

		var duplicates []types.DuplicatePair
		for j := i + 1; j < len(records); j++ {
			if claimed[j] {
				continue
			}

			distance, err := fingerprint.Distance(records[i].Fingerprint, records[j].Fingerprint)
			if err != nil {
				return nil, fmt.Errorf("comparing %s with %s: %w", records[i].Path, records[j].Path, err)
			}

			if distance <= threshold {
				duplicates = append(duplicates, types.DuplicatePair{Record: records[j], Distance: distance})
				claimed[j] = true
			}
		}

		if len(duplicates) > 0 {
			claimed[i] = true
			clusters = append(clusters, types.DuplicateCluster{
				Original:   records[i],
				Duplicates: duplicates,
			})
		}
	}

	return clusters, nil
}
