// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"

	kml "github.com/twpayne/go-kml/v2"

	"github.com/rudi-ru/aquakml/config"
	"github.com/rudi-ru/aquakml/spatial"
)

// randomColor picks an opaque color per row so adjacent parcels stay
// distinguishable on the map overlay.
func randomColor() color.RGBA {
	return color.RGBA{
		R: uint8(rand.Intn(256)),
		G: uint8(rand.Intn(256)),
		B: uint8(rand.Intn(256)),
		A: 0xff,
	}
}

func coordinates(points []spatial.Point) []kml.Coordinate {
	coords := make([]kml.Coordinate, len(points))
	for i, p := range points {
		coords[i] = kml.Coordinate{Lon: p.Lon, Lat: p.Lat}
	}

	return coords
}

func pointPlacemark(name, description string, p spatial.Point, c color.RGBA, cfg config.Config) kml.Element {
	return kml.Placemark(
		kml.Name(name),
		kml.Description(description),
		kml.Style(
			kml.IconStyle(
				kml.Color(c),
				kml.Scale(cfg.KMLIconScale),
			),
			kml.LabelStyle(
				kml.Scale(cfg.KMLLabelScale),
			),
		),
		kml.Point(
			kml.Coordinates(kml.Coordinate{Lon: p.Lon, Lat: p.Lat}),
		),
	)
}

func linePlacemark(name, description string, points []spatial.Point, c color.RGBA, cfg config.Config) kml.Element {
	return kml.Placemark(
		kml.Name(name),
		kml.Description(description),
		kml.Style(
			kml.LineStyle(
				kml.Color(c),
				kml.Width(cfg.KMLLineWidth),
			),
		),
		kml.LineString(
			kml.Coordinates(coordinates(points)...),
		),
	)
}

func polygonPlacemark(name, description string, points []spatial.Point, c color.RGBA, cfg config.Config) kml.Element {
	// A linear ring must be closed.
	ring := points
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(append([]spatial.Point{}, ring...), ring[0])
	}

	fill := color.RGBA{R: c.R, G: c.G, B: c.B, A: cfg.KMLPolygonAlpha}

	return kml.Placemark(
		kml.Name(name),
		kml.Description(description),
		kml.Style(
			kml.LineStyle(
				kml.Color(c),
				kml.Width(cfg.KMLPolygonLineWidth),
			),
			kml.PolyStyle(
				kml.Color(fill),
			),
		),
		kml.Polygon(
			kml.OuterBoundaryIs(
				kml.LinearRing(
					kml.Coordinates(coordinates(ring)...),
				),
			),
		),
	)
}

// writeKML serializes the placemarks into a KML document at path,
// creating parent directories as needed.
func writeKML(path string, placemarks []kml.Element) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("создание папки для KML: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("создание файла KML: %w", err)
	}

	doc := kml.KML(kml.Document(placemarks...))
	if err := doc.WriteIndent(f, "", "  "); err != nil {
		f.Close()

		return fmt.Errorf("запись KML %q: %w", path, err)
	}

	return f.Close()
}
