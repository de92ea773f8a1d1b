// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package coords

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rudi-ru/aquakml/spatial"
)

var (
	// dmsCoordRegex matches one градусы-минуты-секунды value. The symbol
	// alternatives cover the degree, prime and double-prime homoglyphs
	// that occur in the source spreadsheets; fractional seconds use
	// either a dot or a comma.
	dmsCoordRegex = regexp.MustCompile(`(\d+)[°º]\s*(\d+)['′΄]\s*(\d+(?:[.,]\d+)?)["″′˝]`)

	// dmsPointRegex matches an explicit point number ("1:" or "1.")
	// immediately followed by a degree value. The degree value is part
	// of the match only to anchor the number to a coordinate; the
	// coordinate itself is re-scanned by dmsCoordRegex.
	dmsPointRegex = regexp.MustCompile(`(\d+)[:.]\s*\d+[°º]`)

	// altPointRegex matches a spelled-out point label.
	altPointRegex = regexp.MustCompile(`(?i)точка\s*(\d+)`)
)

// hemisphere tokens that flip a sign when they occur standalone.
var (
	southTokens = []*regexp.Regexp{standaloneToken("ЮШ"), standaloneToken("S")}
	westTokens  = []*regexp.Regexp{standaloneToken("ЗД"), standaloneToken("W")}
)

// standaloneToken builds a matcher for token occurring as its own
// word or label: " ЗД" in a coordinate counts, "ЮЗД-25" does not.
// Both Cyrillic and Latin neighbors suppress the match.
func standaloneToken(token string) *regexp.Regexp {
	const letter = `A-Za-zА-Яа-яЁё`

	return regexp.MustCompile(
		`(?i)(?:\A|[^` + letter + `])` + regexp.QuoteMeta(token) + `(?:[^` + letter + `]|\z)`)
}

func hasStandaloneToken(text string, tokens []*regexp.Regexp) bool {
	for _, re := range tokens {
		if re.MatchString(text) {
			return true
		}
	}

	return false
}

// dmsValue is one raw ДМС triple together with the semicolon-separated
// segment it was found in.
type dmsValue struct {
	deg, min, sec string
	part          string
	partIndex     int
}

// extractDMS scans the semicolon-separated segments of s for ДМС
// values and explicit point numbers. Point numbers are grouped per
// segment: a segment may carry the numbers for all of its pairs, or
// none at all.
func extractDMS(s string) ([]dmsValue, map[int][]string) {
	var (
		values  []dmsValue
		numbers = make(map[int][]string)
		idx     int
	)

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		for _, m := range dmsPointRegex.FindAllStringSubmatch(part, -1) {
			numbers[idx] = append(numbers[idx], m[1])
		}

		for _, m := range dmsCoordRegex.FindAllStringSubmatch(part, -1) {
			values = append(values, dmsValue{
				deg: m[1], min: m[2], sec: m[3],
				part:      part,
				partIndex: idx,
			})
		}

		idx++
	}

	return values, numbers
}

func dmsToDecimal(v dmsValue) (float64, error) {
	deg, err := strconv.ParseFloat(v.deg, 64)
	if err != nil {
		return 0, fmt.Errorf("градусы %q: %w", v.deg, err)
	}

	min, err := strconv.ParseFloat(v.min, 64)
	if err != nil {
		return 0, fmt.Errorf("минуты %q: %w", v.min, err)
	}

	sec, err := strconv.ParseFloat(strings.ReplaceAll(v.sec, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("секунды %q: %w", v.sec, err)
	}

	return deg + min/60 + sec/3600, nil
}

// derivePointName names the pair at global index pairIdx. An explicit
// number found in the pair's segment wins, then a spelled-out "точка N"
// label, then the one-based pair index.
func derivePointName(partIdx, pairIdx int, numbers map[int][]string, partText string) string {
	if ns := numbers[partIdx]; pairIdx < len(ns) {
		return "точка " + ns[pairIdx]
	}

	if m := altPointRegex.FindStringSubmatch(partText); m != nil {
		return "точка " + m[1]
	}

	return fmt.Sprintf("точка %d", pairIdx+1)
}

// ParseDMS extracts latitude/longitude pairs written in ДМС notation.
// Values pair up in order of appearance, latitude first. ЮШ/S and ЗД/W
// hemisphere tokens in the surrounding text negate the respective
// angle. Pairs at exactly (0, 0) are dropped. An input with no ДМС
// values at all yields no points and no error.
func ParseDMS(s string) ([]spatial.Point, error) {
	values, numbers := extractDMS(s)
	if len(values) == 0 {
		return nil, nil
	}

	if len(values)%2 != 0 {
		return nil, newParseError(ErrorKindOddCount,
			"Нечетное количество найденных ДМС координат (%d). Ожидается пара (широта, долгота).",
			len(values))
	}

	points := make([]spatial.Point, 0, len(values)/2)

	for j := 0; j < len(values); j += 2 {
		latVal, lonVal := values[j], values[j+1]

		lat, err := dmsToDecimal(latVal)
		if err != nil {
			return nil, &ParseError{
				Kind:    ErrorKindUnknown,
				Message: fmt.Sprintf("Внутренняя ошибка при обработке пары ДМС: %v.", err),
				Err:     err,
			}
		}

		lon, err := dmsToDecimal(lonVal)
		if err != nil {
			return nil, &ParseError{
				Kind:    ErrorKindUnknown,
				Message: fmt.Sprintf("Внутренняя ошибка при обработке пары ДМС: %v.", err),
				Err:     err,
			}
		}

		combined := latVal.part + " " + lonVal.part
		if hasStandaloneToken(combined, southTokens) {
			log.Debug().Float64("lat", lat).Msg("найден маркер ЮШ, широта отрицательная")

			lat = -lat
		}

		if hasStandaloneToken(combined, westTokens) {
			log.Debug().Float64("lon", lon).Msg("найден маркер ЗД, долгота отрицательная")

			lon = -lon
		}

		if !spatial.InWGS84Range(lat, lon) {
			return nil, newParseError(ErrorKindDMSOutOfRange,
				"Координаты ДМС вне допустимого диапазона WGS84 (lat=%v, lon=%v).", lat, lon)
		}

		if lat == 0 && lon == 0 {
			continue
		}

		points = append(points, spatial.Point{
			Name: derivePointName(latVal.partIndex, j/2, numbers, latVal.part),
			Lon:  spatial.Round6(lon),
			Lat:  spatial.Round6(lat),
		})
	}

	return points, nil
}
