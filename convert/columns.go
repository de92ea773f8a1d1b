// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rudi-ru/aquakml/config"
)

// headerFold strips combining marks so that the header match survives
// the stray diacritics and homoglyph accents the registries carry.
var headerFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeHeader(s string) string {
	folded, _, err := transform.String(headerFold, s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.TrimSpace(folded))
}

// Columns maps logical column keys ("coord", "name", …) to zero-based
// sheet indices; -1 marks a column the sheet does not have.
type Columns map[string]int

// Has reports whether the sheet carries the column.
func (c Columns) Has(key string) bool {
	idx, ok := c[key]

	return ok && idx >= 0
}

// findColumn scans the header rows for any of the target names. The
// registries are inconsistent about header wording, so by default a
// cell matches when it contains a target as a substring; exact match
// is reserved for short labels like «№ п/п» that would otherwise match
// unrelated columns.
func findColumn(rows [][]string, maxRow int, targets []string, exact bool) int {
	normTargets := make([]string, len(targets))
	for i, t := range targets {
		normTargets[i] = normalizeHeader(t)
	}

	for r := 0; r < len(rows) && r < maxRow; r++ {
		for idx, cell := range rows[r] {
			if cell == "" {
				continue
			}

			cellNorm := normalizeHeader(cell)

			for _, target := range normTargets {
				if (exact && cellNorm == target) ||
					(!exact && strings.Contains(cellNorm, target)) {
					return idx
				}
			}
		}
	}

	return -1
}

// DiscoverColumns locates every configured column in the sheet's
// header rows.
func DiscoverColumns(rows [][]string, cfg config.Config) Columns {
	exact := make(map[string]bool, len(cfg.ExcelExactMatchKeys))
	for _, key := range cfg.ExcelExactMatchKeys {
		exact[key] = true
	}

	cols := make(Columns, len(cfg.ExcelColumns))

	for key, targets := range cfg.ExcelColumns {
		cols[key] = findColumn(rows, cfg.HeaderScanMaxRow, targets, exact[key])
		if cols[key] == -1 {
			log.Debug().Str("column", targets[0]).
				Msg("столбец не найден в заголовке")
		}
	}

	return cols
}

// cellAt reads a cell by index, tolerating the short rows excelize
// returns when trailing cells are empty.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}
