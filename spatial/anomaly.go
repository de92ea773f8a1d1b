// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

// AnomalyReason is the single user-facing reason reported for a scattered
// point set. Flagged points carry the detail for callers that want it.
const AnomalyReason = "Обнаружены аномальные координаты, значительно удаленные от других"

// DefaultAnomalyThresholdKm is the average-distance cutoff used when the
// caller does not tune it. Historical deployments ranged 5–20 km.
const DefaultAnomalyThresholdKm = 20

// Flagged is a point whose average distance to its peers exceeded the threshold.
type Flagged struct {
	Index int
	Point Point
}

// DetectAnomalies looks for points that sit significantly further away
// from the rest of the set. A point is flagged when its average
// great-circle distance to every other point exceeds thresholdKm;
// averaging over all peers keeps the check robust when two or three bad
// points hide among many good ones. Fewer than 3 points cannot be judged.
func DetectAnomalies(points []Point, thresholdKm float64) (bool, string, []Flagged) {
	if len(points) < 3 {
		return false, "", nil
	}

	var flagged []Flagged

	for i, p := range points {
		var sum float64

		for j, q := range points {
			if i == j {
				continue
			}

			sum += p.HaversineKm(q)
		}

		if avg := sum / float64(len(points)-1); avg > thresholdKm {
			flagged = append(flagged, Flagged{Index: i, Point: p})
		}
	}

	if len(flagged) > 0 {
		return true, AnomalyReason, flagged
	}

	return false, "", nil
}
