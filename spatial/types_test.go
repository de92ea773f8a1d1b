// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		wantErr  bool
	}{
		{"samara", 50.036125, 53.137306, false},
		{"equator", 0, 0, false},
		{"lat edge", 10, 90, false},
		{"lon edge", -180, 10, false},
		{"lat above range", 40, 91, true},
		{"lat below range", 40, -90.5, true},
		{"lon above range", 180.2, 40, true},
		{"rounded back into range", -180.0000004, 40, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPoint(tc.name, tc.lon, tc.lat)
			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrOutOfRange)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.name, p.Name)
		})
	}
}

func TestNewPointRounds(t *testing.T) {
	p, err := NewPoint("x", 50.0361254999, 53.1373055001)
	require.NoError(t, err)
	assert.Equal(t, 50.036125, p.Lon)
	assert.Equal(t, 53.137306, p.Lat)
}

func TestHaversineKm(t *testing.T) {
	moscow := Point{Name: "Москва", Lon: 37.6173, Lat: 55.7558}
	spb := Point{Name: "Санкт-Петербург", Lon: 30.3351, Lat: 59.9343}

	d := moscow.HaversineKm(spb)
	// Published great-circle distance is ~634 km.
	assert.InDelta(t, 634, d, 5)

	assert.Zero(t, moscow.HaversineKm(moscow))
	assert.InDelta(t, d, spb.HaversineKm(moscow), 1e-9)
}

func TestPointScanValue(t *testing.T) {
	p := Point{Name: "т", Lon: 50.0625, Lat: 53.1424}

	v, err := p.Value()
	require.NoError(t, err)
	assert.Equal(t, "POINT(50.062500 53.142400)", v)

	var scanned Point
	require.NoError(t, scanned.Scan([]byte("POINT (50.0625 53.1424)")))
	assert.InDelta(t, p.Lon, scanned.Lon, 1e-9)
	assert.InDelta(t, p.Lat, scanned.Lat, 1e-9)

	require.NoError(t, scanned.Scan(map[string]interface{}{"x": 30.5, "y": 59.5}))
	assert.Equal(t, 30.5, scanned.Lon)
	assert.Equal(t, 59.5, scanned.Lat)

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	err = scanned.Scan(42)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrOutOfRange))
}

func TestRound6(t *testing.T) {
	assert.Equal(t, 53.137306, Round6(53.0+8.0/60+14.3/3600))
	assert.Equal(t, -1.000001, Round6(-1.0000005))
	assert.True(t, math.Signbit(Round6(-0.0000001)) == false || Round6(-0.0000001) == 0)
}
