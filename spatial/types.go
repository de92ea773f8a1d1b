// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
)

const earthRadiusKm = 6371 // spherical Earth, fine for cadastral data

// ErrOutOfRange reports a coordinate outside the WGS84 domain.
var ErrOutOfRange = errors.New("координаты вне допустимого диапазона WGS84")

// Point is a named geographic point in WGS84 decimal degrees.
// Longitude and latitude are rounded to 6 decimals (~0.11 m).
type Point struct {
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

// NewPoint builds a Point, enforcing the WGS84 range. Values are
// rounded to 6 decimals before the range check.
func NewPoint(name string, lon, lat float64) (Point, error) {
	lon = Round6(lon)
	lat = Round6(lat)

	if !InWGS84Range(lat, lon) {
		return Point{}, fmt.Errorf("%w (lat=%v, lon=%v)", ErrOutOfRange, lat, lon)
	}

	return Point{Name: name, Lon: lon, Lat: lat}, nil
}

// InWGS84Range reports whether a (lat, lon) pair is a valid geographic coordinate.
func InWGS84Range(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Round6 rounds to 6 decimal places.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// IsZero reports whether the point is the (0, 0) placeholder some
// registries use for unset coordinates.
func (p Point) IsZero() bool {
	return p.Lon == 0 && p.Lat == 0
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lon, p.Lat)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		p.Lon, p.Lat = 0, 0

		return nil
	}

	switch v := value.(type) {
	case []byte:
		// The format from DuckDB is "POINT (lon lat)"
		_, err := fmt.Sscanf(string(v), "POINT (%f %f)", &p.Lon, &p.Lat)

		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT (%f %f)", &p.Lon, &p.Lat)

		return err
	case map[string]interface{}:
		x, okX := v["x"].(float64)
		y, okY := v["y"].(float64)

		if !okX || !okY {
			return fmt.Errorf("spatial: invalid map for point: expected 'x' and 'y' float64 fields, got %+v", v)
		}

		p.Lon = x
		p.Lat = y

		return nil
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

// HaversineKm calculates the great-circle distance between two points in kilometers.
func (p Point) HaversineKm(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLon := (other.Lon - p.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
