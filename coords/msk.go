// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package coords

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/rudi-ru/aquakml/proj"
	"github.com/rudi-ru/aquakml/spatial"
)

// mskCoordRegex matches one metric-grid point: a point number followed
// by two meter values, northing first ("1: 381631.8м., 1368949.26м.").
var mskCoordRegex = regexp.MustCompile(`(\d+):\s*([-\d.]+)\s*м\.,\s*([-\d.]+)\s*м\.`)

// ParseMSK extracts metric-grid points from s and transforms each into
// WGS84 degrees through tr. The first captured value is the northing,
// the second the easting; tr takes easting then northing. Points at
// exactly (0, 0) are dropped. No metric points in s yields no points
// and no error.
func ParseMSK(s string, tr proj.Transformer) ([]spatial.Point, error) {
	matches := mskCoordRegex.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	points := make([]spatial.Point, 0, len(matches))

	for _, m := range matches {
		idx, northStr, eastStr := m[1], m[2], m[3]

		north, err := strconv.ParseFloat(northStr, 64)
		if err != nil {
			return nil, transformError(err, northStr, eastStr)
		}

		east, err := strconv.ParseFloat(eastStr, 64)
		if err != nil {
			return nil, transformError(err, northStr, eastStr)
		}

		if north == 0 && east == 0 {
			continue
		}

		lon, lat, err := tr.ToWGS84(east, north)
		if err != nil {
			return nil, transformError(err, northStr, eastStr)
		}

		if !spatial.InWGS84Range(lat, lon) {
			return nil, newParseError(ErrorKindMSKOutOfRange,
				"Координаты МСК вне допустимого диапазона WGS84 (lat=%v, lon=%v) после трансформации.",
				lat, lon)
		}

		points = append(points, spatial.Point{
			Name: "точка " + idx,
			Lon:  spatial.Round6(lon),
			Lat:  spatial.Round6(lat),
		})
	}

	return points, nil
}

func transformError(err error, northStr, eastStr string) *ParseError {
	return &ParseError{
		Kind: ErrorKindTransform,
		Message: fmt.Sprintf("Ошибка трансформации МСК координат: %v. Исходные: x='%s', y='%s'.",
			err, northStr, eastStr),
		Err: err,
	}
}
