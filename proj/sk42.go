// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package proj

import "math"

// SK42 transforms СК-42 geographic coordinates (degrees on the
// Krassovsky ellipsoid) into WGS84 geographic degrees: geodetic →
// geocentric → Helmert (rotation and scale included) → WGS84 geodetic.
// The same textual ДМС notation can carry either native WGS84 degrees
// or СК-42 degrees; the two differ by tens to hundreds of meters, so
// this shift only runs for inputs positively identified as СК-42.
type SK42 struct{}

// ToWGS84 implements Transformer. x is longitude, y latitude, degrees.
func (SK42) ToWGS84(lonDeg, latDeg float64) (float64, float64, error) {
	lat, lon := shiftGeodetic(
		sk42Shift,
		Krassovsky, WGS84,
		latDeg*math.Pi/180, lonDeg*math.Pi/180,
	)

	return lon * 180 / math.Pi, lat * 180 / math.Pi, nil
}
