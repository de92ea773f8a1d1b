// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package config carries the application configuration. Defaults mirror
// the registry layouts the tool is fed in production; everything here is
// overridable from command-line flags.
package config

// Config is the application configuration.
type Config struct {
	// Directories.
	InputDir      string
	XLSXOutputDir string
	KMLOutputDir  string

	// Data files.
	Proj4Path       string
	ObjectsInfoPath string

	// Coordinate parsing.
	AnomalyThresholdKm float64
	MeterMarker        string
	DegreeMarker       string
	DMSPriorityMarker  string

	// Spreadsheet geometry.
	HeaderRowsCount       int
	MergeColumns          [2]int // full-width merge range, 1-based (A–G)
	HeaderScanMaxRow      int
	DataStartScanMaxRow   int
	DefaultDataStartRow   int
	ExcelColumns          map[string][]string
	ExcelExactMatchKeys   []string
	PipelineSkipTerms     []string
	PolygonSortRowNumbers []int

	// KML styling.
	KMLIconScale        float64
	KMLLabelScale       float64
	KMLLineWidth        float64
	KMLPolygonLineWidth float64
	KMLPolygonAlpha     uint8

	// Execution.
	MaxWorkers int    // 0 = NumCPU
	DBPath     string // run-history database directory, "" disables
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		InputDir:      "input",
		XLSXOutputDir: "output/xlsx",
		KMLOutputDir:  "output/kml",

		Proj4Path:       "data/proj4.json",
		ObjectsInfoPath: "data/objects_info.json",

		AnomalyThresholdKm: 20,
		MeterMarker:        "м.",
		DegreeMarker:       "°",
		DMSPriorityMarker:  "гск",

		HeaderRowsCount:     5,
		MergeColumns:        [2]int{1, 7},
		HeaderScanMaxRow:    8,
		DataStartScanMaxRow: 30,
		DefaultDataStartRow: 6,
		ExcelColumns: map[string][]string{
			"name":            {"№ п/п"},
			"coord":           {"Место водопользования", "Координаты"},
			"organ":           {"Уполномоченный орган"},
			"additional_name": {"Наименование водного объекта", "Водный объект"},
			"goal":            {"Цель водопользования"},
			"vid":             {"Вид водопользования"},
			"owner":           {"Владелец", "Водопользователь"},
			"inn":             {"ИНН"},
			"start_date":      {"Дата начала водопользования"},
			"end_date":        {"Дата окончания водопользования"},
		},
		ExcelExactMatchKeys: []string{"name"},
		PipelineSkipTerms:   []string{"забор", "сброс"},

		KMLIconScale:        1.0,
		KMLLabelScale:       0.8,
		KMLLineWidth:        3,
		KMLPolygonLineWidth: 2,
		KMLPolygonAlpha:     100,

		MaxWorkers: 0,
		DBPath:     "db",
	}
}
