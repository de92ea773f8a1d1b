// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"sort"
)

// Centroid returns the arithmetic mean of the points. Good enough for
// the small parcel outlines this tool deals with; no area weighting.
func Centroid(points []Point) (lon, lat float64) {
	if len(points) == 0 {
		return 0, 0
	}

	for _, p := range points {
		lon += p.Lon
		lat += p.Lat
	}

	n := float64(len(points))

	return lon / n, lat / n
}

// SortByAngle orders points counterclockwise around their centroid and
// returns a new slice. Registry rows often list polygon vertices in
// survey order rather than ring order; sorting by bearing recovers a
// non-self-intersecting ring for convex outlines.
func SortByAngle(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)

	cLon, cLat := Centroid(out)

	sort.SliceStable(out, func(i, j int) bool {
		ai := math.Atan2(out[i].Lat-cLat, out[i].Lon-cLon)
		aj := math.Atan2(out[j].Lat-cLat, out[j].Lon-cLon)

		return ai < aj
	})

	return out
}
