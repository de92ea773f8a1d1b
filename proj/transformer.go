// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package proj

import (
	"fmt"
	"math"
)

// Transformer converts coordinates of one source system to WGS84
// geographic coordinates. Inputs are supplied as (x, y) — easting and
// northing for planar systems, longitude and latitude in degrees for
// geographic ones — and outputs are always (longitude, latitude) in
// degrees.
type Transformer interface {
	ToWGS84(x, y float64) (lon, lat float64, err error)
}

// NewTransformer builds a reusable Transformer from a parsed definition.
func NewTransformer(def Definition) (Transformer, error) {
	switch def.Projection {
	case "tmerc":
		return &tmercTransformer{def: def}, nil
	case "longlat":
		return &geographicTransformer{def: def}, nil
	default:
		return nil, fmt.Errorf("проекция %q не поддерживается", def.Projection)
	}
}

// FromProj4 is a convenience used by the debug tooling: parse and build
// in one step.
func FromProj4(s string) (Transformer, error) {
	def, err := ParseDefinition(s)
	if err != nil {
		return nil, err
	}

	return NewTransformer(def)
}

type tmercTransformer struct {
	def Definition
}

func (t *tmercTransformer) ToWGS84(x, y float64) (float64, float64, error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, fmt.Errorf("некорректные плановые координаты (x=%v, y=%v)", x, y)
	}

	d := t.def
	lat, lon := tmercInverse(
		d.Ellps,
		d.Lat0*math.Pi/180, d.Lon0*math.Pi/180,
		d.K0, d.X0, d.Y0,
		x, y,
	)

	if d.HasShift && !d.ToWGS84.IsZero() {
		lat, lon = shiftGeodetic(d.ToWGS84, d.Ellps, WGS84, lat, lon)
	}

	return lon * 180 / math.Pi, lat * 180 / math.Pi, nil
}

type geographicTransformer struct {
	def Definition
}

func (t *geographicTransformer) ToWGS84(lonDeg, latDeg float64) (float64, float64, error) {
	if math.Abs(latDeg) > 90 || math.Abs(lonDeg) > 180 {
		return 0, 0, fmt.Errorf("географические координаты вне диапазона (lat=%v, lon=%v)", latDeg, lonDeg)
	}

	if !t.def.HasShift || t.def.ToWGS84.IsZero() {
		return lonDeg, latDeg, nil
	}

	lat, lon := shiftGeodetic(
		t.def.ToWGS84,
		t.def.Ellps, WGS84,
		latDeg*math.Pi/180, lonDeg*math.Pi/180,
	)

	return lon * 180 / math.Pi, lat * 180 / math.Pi, nil
}
