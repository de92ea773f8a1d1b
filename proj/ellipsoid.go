// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package proj converts local planar and geocentric coordinate systems
// into WGS84 geographic coordinates. Definitions come in as PROJ4-style
// strings; the math (inverse Gauss–Krüger, 7-parameter Helmert) is
// native, which is plenty for regional cadastral zones that stay within
// a few degrees of their central meridian.
package proj

import (
	"fmt"
	"math"
)

// Ellipsoid is a reference ellipsoid given by its semi-major axis (m)
// and inverse flattening.
type Ellipsoid struct {
	Name string
	A    float64
	InvF float64
}

var (
	// Krassovsky 1940, the ellipsoid of СК-42 and the МСК zones.
	Krassovsky = Ellipsoid{Name: "krass", A: 6378245.0, InvF: 298.3}
	// WGS84 reference ellipsoid.
	WGS84 = Ellipsoid{Name: "WGS84", A: 6378137.0, InvF: 298.257223563}
	// Bessel 1841, used by the Moscow city grid (МГГТ).
	Bessel = Ellipsoid{Name: "bessel", A: 6377397.155, InvF: 299.1528128}
)

// EllipsoidByName resolves the +ellps= names used in the registry config.
func EllipsoidByName(name string) (Ellipsoid, error) {
	switch name {
	case "krass":
		return Krassovsky, nil
	case "WGS84", "wgs84":
		return WGS84, nil
	case "bessel":
		return Bessel, nil
	default:
		return Ellipsoid{}, fmt.Errorf("неизвестный эллипсоид %q", name)
	}
}

// E2 returns the first eccentricity squared.
func (e Ellipsoid) E2() float64 {
	f := 1 / e.InvF

	return f * (2 - f)
}

// Ep2 returns the second eccentricity squared.
func (e Ellipsoid) Ep2() float64 {
	e2 := e.E2()

	return e2 / (1 - e2)
}

// Geocentric converts geodetic coordinates (radians, ellipsoidal height
// in meters) to ECEF cartesian coordinates on this ellipsoid.
func (e Ellipsoid) Geocentric(lat, lon, h float64) (x, y, z float64) {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	e2 := e.E2()
	n := e.A / math.Sqrt(1-e2*sinLat*sinLat)

	x = (n + h) * cosLat * cosLon
	y = (n + h) * cosLat * sinLon
	z = (n*(1-e2) + h) * sinLat

	return x, y, z
}

// Geodetic converts ECEF cartesian coordinates back to geodetic
// latitude/longitude (radians) and ellipsoidal height on this ellipsoid.
func (e Ellipsoid) Geodetic(x, y, z float64) (lat, lon, h float64) {
	e2 := e.E2()
	lon = math.Atan2(y, x)
	p := math.Hypot(x, y)

	if p == 0 {
		// Pole: latitude is ±90°, height measured along the axis.
		lat = math.Copysign(math.Pi/2, z)
		b := e.A * (1 - 1/e.InvF)

		return lat, lon, math.Abs(z) - b
	}

	lat = math.Atan2(z, p*(1-e2))

	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		n := e.A / math.Sqrt(1-e2*sinLat*sinLat)
		h = p/math.Cos(lat) - n
		next := math.Atan2(z, p*(1-e2*n/(n+h)))

		if math.Abs(next-lat) < 1e-13 {
			lat = next

			break
		}

		lat = next
	}

	return lat, lon, h
}
