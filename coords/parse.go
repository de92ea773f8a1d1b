// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package coords turns the free-text coordinate cells of water-use
// registries into WGS84 points. A cell may carry градусы-минуты-секунды
// values, metric МСК grid values naming their zone, or ДМС degrees on
// the СК-42 datum; the parser detects the notation and routes the cell
// to the matching decoder.
package coords

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rudi-ru/aquakml/config"
	"github.com/rudi-ru/aquakml/proj"
	"github.com/rudi-ru/aquakml/spatial"
)

// SystemRegistry resolves named planar coordinate systems out of free
// text. *proj.Registry satisfies it; tests substitute their own.
type SystemRegistry interface {
	Match(text string) (name string, tr proj.Transformer, err error)
	Ambiguous(text string) (prefix string, zones []string, err error)
}

// Parser is the coordinate parsing engine. It is stateless apart from
// the lazily loaded registry and catalog and is safe for concurrent
// use once constructed.
type Parser struct {
	registry SystemRegistry
	catalog  *Catalog
	cfg      config.Config
}

// NewParser builds a parser. A nil registry or catalog falls back to
// lazy loading from the configured default paths.
func NewParser(registry SystemRegistry, catalog *Catalog, cfg config.Config) *Parser {
	if registry == nil {
		registry = proj.NewRegistry(cfg.Proj4Path)
	}

	if catalog == nil {
		catalog = NewCatalog(cfg.ObjectsInfoPath)
	}

	return &Parser{registry: registry, catalog: catalog, cfg: cfg}
}

// looksLikeDMS reports the presence of the degree marker.
func (p *Parser) looksLikeDMS(s string) bool {
	return strings.Contains(s, p.cfg.DegreeMarker)
}

// looksLikeMSK reports a metric-grid candidate: a meter marker without
// any degree marker. The meter marker alone is too weak ("3 км." and
// similar), so it must follow a value or end the string.
func (p *Parser) looksLikeMSK(s string) bool {
	m := p.cfg.MeterMarker

	return (strings.Contains(s, " "+m) ||
		strings.Contains(s, ", "+m) ||
		strings.HasSuffix(s, m)) &&
		!strings.Contains(s, p.cfg.DegreeMarker)
}

// prioritizeDMS reports the ГСК marker, which forces ДМС parsing even
// when metric values are also present: such cells carry the same
// geometry twice and the degree rendition is the authoritative one.
func (p *Parser) prioritizeDMS(s string) bool {
	return strings.Contains(strings.ToLower(s), p.cfg.DMSPriorityMarker)
}

// Parse converts one coordinate cell into WGS84 points.
//
// Decision order: a cell whose exact text is registered in the datum
// catalog as СК-42 is parsed as ДМС and datum-shifted; the ГСК marker
// forces plain ДМС parsing; otherwise a metric-grid candidate goes
// through the projection registry; otherwise a cell without a degree
// marker is treated as carrying no coordinates at all. Any result of
// three or more points is screened for anomalies.
//
// A cell with no coordinates yields (nil, nil): absence is not an
// error, only malformed or implausible coordinates are.
func (p *Parser) Parse(coordStr string) ([]spatial.Point, error) {
	s := strings.TrimSpace(coordStr)
	if s == "" {
		return nil, nil
	}

	if systemKey, ok := p.catalog.SystemFor(s); ok {
		if strings.ToUpper(strings.TrimSpace(systemKey)) == sk42SystemKey {
			return p.parseSK42(s)
		}

		// Only СК-42 has a configured shift; other datum labels fall
		// through to the regular detectors.
		log.Debug().Str("system", systemKey).
			Msg("система координат из каталога не поддерживается, продолжаем обычный разбор")
	}

	switch {
	case p.prioritizeDMS(s):
		log.Debug().Msg("обнаружен маркер гск, приоритет ДМС")
	case p.looksLikeMSK(s):
		return p.parseMSK(s)
	}

	if !p.looksLikeDMS(s) {
		log.Debug().Msg("маркеры координат не найдены, пустой результат")

		return nil, nil
	}

	points, err := ParseDMS(s)
	if err != nil {
		return nil, err
	}

	if err := p.checkAnomalies(points); err != nil {
		return nil, err
	}

	return points, nil
}

func (p *Parser) parseSK42(s string) ([]spatial.Point, error) {
	points, err := ParseDMS(s)
	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, nil
	}

	points, err = TransformSK42(points)
	if err != nil {
		return nil, err
	}

	if err := p.checkAnomalies(points); err != nil {
		return nil, err
	}

	return points, nil
}

func (p *Parser) parseMSK(s string) ([]spatial.Point, error) {
	name, tr, err := p.registry.Match(s)
	if err != nil {
		log.Warn().Err(err).Str("строка", truncate(s, 50)).
			Msg("описания проекций недоступны")

		return nil, &ParseError{
			Kind:    ErrorKindRegistryUnavailable,
			Message: "Не удалось загрузить описания проекций для МСК.",
			Err:     err,
		}
	}

	if tr == nil {
		if prefix, zones, _ := p.registry.Ambiguous(s); prefix != "" {
			return nil, newParseError(ErrorKindAmbiguousSystem,
				"Неоднозначная система координат МСК: '%s' имеет несколько зон (%s). Укажите зону явно.",
				prefix, strings.Join(zones, ", "))
		}

		log.Warn().Str("строка", truncate(s, 50)).
			Msg("метрические координаты без известной системы")

		return nil, newParseError(ErrorKindUnknownSystem,
			"Обнаружены координаты 'м.', но не найдена известная система координат МСК в строке.")
	}

	log.Debug().Str("system", name).Msg("найдена система координат")

	points, err := ParseMSK(s, tr)
	if err != nil {
		return nil, err
	}

	if err := p.checkAnomalies(points); err != nil {
		return nil, err
	}

	return points, nil
}

// checkAnomalies rejects point sets with implausible outliers. Fewer
// than three points never trip the detector: a pair has no quorum.
func (p *Parser) checkAnomalies(points []spatial.Point) error {
	if len(points) < 3 {
		return nil
	}

	anomalous, reason, flagged := spatial.DetectAnomalies(points, p.cfg.AnomalyThresholdKm)
	if !anomalous {
		return nil
	}

	log.Warn().Int("flagged", len(flagged)).Msg("детектор аномалий отклонил координаты")

	return newParseError(ErrorKindAnomaly, "%s", reason)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
