// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
	"strings"

	"github.com/rudi-ru/aquakml/spatial"
)

// WaterUsageType classifies a permit row by its stated purpose.
type WaterUsageType int

const (
	// UsageOther any purpose that is neither intake nor discharge.
	UsageOther WaterUsageType = iota
	// UsageIntake water intake («забор»).
	UsageIntake
	// UsageDischarge waste water discharge («сброс»).
	UsageDischarge
)

func (t WaterUsageType) String() string {
	switch t {
	case UsageIntake:
		return "забор"
	case UsageDischarge:
		return "сброс"
	default:
		return "прочее"
	}
}

// WaterUsageTypeOf reads the usage type out of the «Цель
// водопользования» text. Discharge wins when both words occur.
func WaterUsageTypeOf(goalText string) WaterUsageType {
	goal := strings.ToLower(goalText)

	switch {
	case strings.Contains(goal, "сброс"):
		return UsageDischarge
	case strings.Contains(goal, "забор"):
		return UsageIntake
	default:
		return UsageOther
	}
}

// PointName builds the placemark name for a standalone point. Intake
// and discharge points are numbered by their kind («№ п/п 12 - забор
// 1»); other points keep the parsed point label when there is one.
func PointName(mainName string, usage WaterUsageType, index int, pointName string) string {
	base := "№ п/п " + mainName

	switch usage {
	case UsageDischarge:
		return fmt.Sprintf("%s - сброс %d", base, index)
	case UsageIntake:
		return fmt.Sprintf("%s - забор %d", base, index)
	default:
		if pointName != "" {
			return base + " - " + pointName
		}

		return base
	}
}

// Geometry is the KML shape chosen for one row's points.
type Geometry int

const (
	// GeometryPoints standalone placemarks, one per point.
	GeometryPoints Geometry = iota
	// GeometryLine an open path.
	GeometryLine
	// GeometryPolygon a closed outline.
	GeometryPolygon
)

// classifyGeometry decides how a row's points are rendered. Four or
// more points make a polygon unless the purpose text carries a skip
// term (intake and discharge sites list independent locations, not an
// outline). Three or more anonymous points of other usage form a line.
// Everything else becomes standalone points.
func classifyGeometry(points []spatial.Point, goalText string, usage WaterUsageType, skipTerms []string) Geometry {
	if len(points) > 3 && !containsAny(goalText, skipTerms) {
		return GeometryPolygon
	}

	if len(points) > 2 && usage == UsageOther && allGenericNames(points) {
		return GeometryLine
	}

	return GeometryPoints
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}

	return false
}

func allGenericNames(points []spatial.Point) bool {
	for _, p := range points {
		if !strings.HasPrefix(p.Name, "точка") {
			return false
		}
	}

	return true
}
