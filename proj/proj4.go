// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package proj

import (
	"fmt"
	"strconv"
	"strings"
)

// Definition is a parsed PROJ4-style coordinate system definition.
// Only the parameter surface actually present in the МСК registry
// configs is supported; anything else fails loudly at load time so a
// typo never degrades into silently wrong coordinates.
type Definition struct {
	Projection string // "tmerc" or "longlat"
	Lat0       float64
	Lon0       float64
	K0         float64
	X0         float64
	Y0         float64
	Ellps      Ellipsoid
	ToWGS84    Helmert
	HasShift   bool
}

// ParseDefinition parses a "+proj=tmerc +lat_0=0 …" string.
func ParseDefinition(s string) (Definition, error) {
	def := Definition{K0: 1, Ellps: WGS84}
	seenProj := false

	for _, field := range strings.Fields(s) {
		if !strings.HasPrefix(field, "+") {
			return Definition{}, fmt.Errorf("параметр proj4 %q должен начинаться с '+'", field)
		}

		key, value, _ := strings.Cut(strings.TrimPrefix(field, "+"), "=")

		var err error

		switch key {
		case "proj":
			switch value {
			case "tmerc", "longlat", "latlong":
				def.Projection = value
				if value == "latlong" {
					def.Projection = "longlat"
				}
			default:
				return Definition{}, fmt.Errorf("неподдерживаемая проекция %q", value)
			}

			seenProj = true
		case "lat_0":
			def.Lat0, err = parseFloat(key, value)
		case "lon_0":
			def.Lon0, err = parseFloat(key, value)
		case "k", "k_0":
			def.K0, err = parseFloat(key, value)
		case "x_0":
			def.X0, err = parseFloat(key, value)
		case "y_0":
			def.Y0, err = parseFloat(key, value)
		case "ellps":
			def.Ellps, err = EllipsoidByName(value)
		case "a":
			def.Ellps.A, err = parseFloat(key, value)
			def.Ellps.Name = "custom"
		case "rf":
			def.Ellps.InvF, err = parseFloat(key, value)
			def.Ellps.Name = "custom"
		case "towgs84":
			def.ToWGS84, err = parseTowgs84(value)
			def.HasShift = true
		case "units":
			if value != "m" {
				return Definition{}, fmt.Errorf("поддерживаются только метры, получено +units=%s", value)
			}
		case "no_defs", "wktext", "type":
			// accepted and ignored
		default:
			return Definition{}, fmt.Errorf("неизвестный параметр proj4 %q", field)
		}

		if err != nil {
			return Definition{}, err
		}
	}

	if !seenProj {
		return Definition{}, fmt.Errorf("в строке proj4 отсутствует +proj: %q", s)
	}

	return def, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное значение +%s=%s: %w", key, value, err)
	}

	return v, nil
}

// parseTowgs84 accepts the 3- and 7-parameter forms. Rotations follow
// PROJ's position-vector convention.
func parseTowgs84(value string) (Helmert, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 && len(parts) != 7 {
		return Helmert{}, fmt.Errorf("+towgs84 ожидает 3 или 7 параметров, получено %d", len(parts))
	}

	vals := make([]float64, len(parts))

	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Helmert{}, fmt.Errorf("некорректный параметр +towgs84 %q: %w", p, err)
		}

		vals[i] = v
	}

	t := Helmert{Dx: vals[0], Dy: vals[1], Dz: vals[2]}
	if len(vals) == 7 {
		t.Rx, t.Ry, t.Rz, t.Scale = vals[3], vals[4], vals[5], vals[6]
	}

	return t, nil
}
