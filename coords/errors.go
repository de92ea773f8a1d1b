// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package coords

import (
	"errors"
	"fmt"
)

// ErrorKind classifies parse failures so that reports can group them
// without matching on message text.
type ErrorKind int

const (
	// ErrorKindUnknown failure without a more specific class.
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindOddCount odd number of ДМС values, a pair is expected.
	ErrorKindOddCount
	// ErrorKindDMSOutOfRange parsed ДМС degrees outside WGS84 bounds.
	ErrorKindDMSOutOfRange
	// ErrorKindMSKOutOfRange transformed МСК point outside WGS84 bounds.
	ErrorKindMSKOutOfRange
	// ErrorKindSK42OutOfRange СК-42 shifted point outside WGS84 bounds.
	ErrorKindSK42OutOfRange
	// ErrorKindUnknownSystem metric coordinates with no registered system.
	ErrorKindUnknownSystem
	// ErrorKindAmbiguousSystem bare МСК prefix matching several zones.
	ErrorKindAmbiguousSystem
	// ErrorKindTransform projection math failed on the input numbers.
	ErrorKindTransform
	// ErrorKindAnomaly points are implausibly far apart.
	ErrorKindAnomaly
	// ErrorKindRegistryUnavailable the proj4 config could not be loaded.
	ErrorKindRegistryUnavailable
)

// group labels used by the statistics report.
var errorKindLabels = map[ErrorKind]string{
	ErrorKindUnknown:             "Прочие ошибки разбора",
	ErrorKindOddCount:            "Нечетное количество найденных ДМС координат",
	ErrorKindDMSOutOfRange:       "Координаты ДМС вне допустимого диапазона WGS84",
	ErrorKindMSKOutOfRange:       "Координаты МСК вне допустимого диапазона WGS84",
	ErrorKindSK42OutOfRange:      "Координаты СК-42 вне допустимого диапазона WGS84",
	ErrorKindUnknownSystem:       "Не найдена известная система координат МСК",
	ErrorKindAmbiguousSystem:     "Неоднозначная система координат МСК",
	ErrorKindTransform:           "Ошибка трансформации МСК координат",
	ErrorKindAnomaly:             "Обнаружены аномальные координаты",
	ErrorKindRegistryUnavailable: "Не удалось загрузить описания проекций",
}

func (k ErrorKind) String() string {
	if label, ok := errorKindLabels[k]; ok {
		return label
	}

	return errorKindLabels[ErrorKindUnknown]
}

// ParseError reports a coordinate cell the engine refused to convert.
// Message carries the full operator-facing text with the offending
// values interpolated; Kind carries the class for aggregation.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(kind ErrorKind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsParseError unwraps err into a *ParseError when one is in the chain.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}

	return nil, false
}

// KindOf returns the class of err, ErrorKindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	if pe, ok := AsParseError(err); ok {
		return pe.Kind
	}

	return ErrorKindUnknown
}
