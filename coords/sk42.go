// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package coords

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rudi-ru/aquakml/proj"
	"github.com/rudi-ru/aquakml/spatial"
)

// sk42SystemKey is the only datum the catalog can currently resolve.
const sk42SystemKey = "СК-42"

// Catalog maps known coordinate cell texts to the datum their degrees
// are written in. The config is a JSON object of system key to a list
// of verbatim cell strings ({"СК-42": ["…", "…"]}). Unlike the
// projection registry the catalog is optional: a missing or malformed
// file degrades to an empty catalog with a warning, because most
// deployments never need it.
type Catalog struct {
	path string

	once    sync.Once
	entries map[string]string
}

// NewCatalog returns a catalog bound to a config path. Nothing is read
// until the first lookup.
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

func (c *Catalog) load() {
	c.once.Do(func() {
		c.entries = make(map[string]string)

		data, err := os.ReadFile(c.path)
		if err != nil {
			log.Warn().Err(err).Str("path", c.path).
				Msg("файл соответствий систем координат не найден, определение СК-42 пропускается")

			return
		}

		var info map[string][]string
		if err := json.Unmarshal(data, &info); err != nil {
			log.Warn().Err(err).Str("path", c.path).
				Msg("не удалось разобрать файл соответствий систем координат, определение СК-42 пропускается")

			return
		}

		for systemKey, texts := range info {
			for _, s := range texts {
				c.entries[strings.TrimSpace(s)] = systemKey
			}
		}
	})
}

// SystemFor returns the datum key registered for the exact (trimmed)
// cell text, if any.
func (c *Catalog) SystemFor(text string) (string, bool) {
	c.load()

	key, ok := c.entries[strings.TrimSpace(text)]

	return key, ok
}

// TransformSK42 shifts points whose degrees are on the СК-42 datum
// into WGS84 degrees, preserving names.
func TransformSK42(points []spatial.Point) ([]spatial.Point, error) {
	var tr proj.SK42

	out := make([]spatial.Point, 0, len(points))

	for _, p := range points {
		lon, lat, err := tr.ToWGS84(p.Lon, p.Lat)
		if err != nil {
			return nil, &ParseError{
				Kind:    ErrorKindTransform,
				Message: "Ошибка преобразования СК-42→WGS84.",
				Err:     err,
			}
		}

		if !spatial.InWGS84Range(lat, lon) {
			return nil, newParseError(ErrorKindSK42OutOfRange,
				"Координаты после преобразования СК-42→WGS84 вне диапазона (lat=%v, lon=%v).",
				lat, lon)
		}

		out = append(out, spatial.Point{
			Name: p.Name,
			Lon:  spatial.Round6(lon),
			Lat:  spatial.Round6(lat),
		})
	}

	return out, nil
}
