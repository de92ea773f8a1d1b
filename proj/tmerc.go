// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package proj

import "math"

// tmercInverse converts transverse-Mercator (Gauss–Krüger) planar
// coordinates to geodetic latitude/longitude in radians on the given
// ellipsoid, using the USGS (Snyder) series. x is easting, y northing,
// both including the false offsets.
func tmercInverse(e Ellipsoid, lat0, lon0, k0, x0, y0, x, y float64) (lat, lon float64) {
	a := e.A
	e2 := e.E2()
	ep2 := e.Ep2()

	m := meridianArc(e, lat0) + (y-y0)/k0
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sincos(phi1)
	tanPhi1 := sinPhi1 / cosPhi1

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := a / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := a * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (x - x0) / (n1 * k0)

	lat = phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)

	lon = lon0 + (d-
		(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosPhi1

	return lat, lon
}

// meridianArc returns the distance along the meridian from the equator
// to latitude phi (radians) in meters.
func meridianArc(e Ellipsoid, phi float64) float64 {
	e2 := e.E2()
	e4 := e2 * e2
	e6 := e4 * e2

	return e.A * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}
