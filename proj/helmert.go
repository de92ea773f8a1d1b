// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package proj

import "math"

const arcsecToRad = math.Pi / (180 * 3600)

// Helmert is a 7-parameter datum shift between geocentric frames.
// Translations are in meters, rotations in arcseconds, scale in ppm.
type Helmert struct {
	Dx, Dy, Dz float64
	Rx, Ry, Rz float64
	Scale      float64

	// CoordinateFrame selects the rotation convention. PROJ's +towgs84
	// uses the position-vector convention; the СК-42 pipeline constants
	// are published in the coordinate-frame convention.
	CoordinateFrame bool
}

// IsZero reports whether the shift is the identity.
func (t Helmert) IsZero() bool {
	return t.Dx == 0 && t.Dy == 0 && t.Dz == 0 &&
		t.Rx == 0 && t.Ry == 0 && t.Rz == 0 && t.Scale == 0
}

// Apply shifts an ECEF coordinate into the target frame.
func (t Helmert) Apply(x, y, z float64) (float64, float64, float64) {
	rx := t.Rx * arcsecToRad
	ry := t.Ry * arcsecToRad
	rz := t.Rz * arcsecToRad

	if t.CoordinateFrame {
		rx, ry, rz = -rx, -ry, -rz
	}

	m := 1 + t.Scale*1e-6

	x2 := t.Dx + m*(x-rz*y+ry*z)
	y2 := t.Dy + m*(rz*x+y-rx*z)
	z2 := t.Dz + m*(-ry*x+rx*y+z)

	return x2, y2, z2
}

// sk42Shift is the fixed СК-42 (Pulkovo 1942) → WGS84 datum shift,
// ГОСТ Р 51794-2008 parameters in the coordinate-frame convention.
var sk42Shift = Helmert{
	Dx: 23.57, Dy: -140.95, Dz: -79.8,
	Rx: 0, Ry: -0.35, Rz: -0.79,
	Scale:           -0.22,
	CoordinateFrame: true,
}

// shiftGeodetic runs a geodetic coordinate (radians) on the source
// ellipsoid through the Helmert shift and returns geodetic coordinates
// on the target ellipsoid. Height is pushed through and discarded by
// callers that only care about the horizontal position.
func shiftGeodetic(t Helmert, src, dst Ellipsoid, lat, lon float64) (float64, float64) {
	x, y, z := src.Geocentric(lat, lon, 0)
	x, y, z = t.Apply(x, y, z)
	lat2, lon2, _ := dst.Geodetic(x, y, z)

	return lat2, lon2
}
