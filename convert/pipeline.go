// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package convert turns water-use registry spreadsheets into KML map
// overlays. Each data row contributes one placemark group: a polygon
// for parcel outlines, a line for channel-like objects, or standalone
// points for intake and discharge sites. Rows whose coordinates are
// rejected end up in a side report next to the KML.
package convert

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	kml "github.com/twpayne/go-kml/v2"
	"github.com/xuri/excelize/v2"

	"github.com/rudi-ru/aquakml/config"
	"github.com/rudi-ru/aquakml/coords"
	"github.com/rudi-ru/aquakml/spatial"
)

// descriptionOrder fixes the field order of the placemark balloon.
var descriptionOrder = []string{
	"organ", "additional_name", "goal", "vid", "owner",
	"inn", "start_date", "end_date", "coord",
}

// dateKeys carry a time suffix that is noise in the balloon.
var dateKeys = map[string]bool{"start_date": true, "end_date": true}

const descriptionFooter = "\n == Разработано RUDI.ru =="

// Placemark is one converted point kept for the run history.
type Placemark struct {
	Name  string
	Point spatial.Point
}

// Result summarizes the conversion of one spreadsheet.
type Result struct {
	Filename           string
	TotalRows          int
	SuccessfulRows     int
	FailedRows         int
	AnomalyRows        int
	Errors             []error
	Placemarks         []Placemark
	ProcessingTime     time.Duration
	AnomalyFileCreated bool
}

// SuccessRate returns the share of parsed rows, in percent.
func (r *Result) SuccessRate() float64 {
	if r.TotalRows == 0 {
		return 0
	}

	return float64(r.SuccessfulRows) / float64(r.TotalRows) * 100
}

// FailureRate returns the share of rejected rows, in percent.
func (r *Result) FailureRate() float64 {
	if r.TotalRows == 0 {
		return 0
	}

	return float64(r.FailedRows) / float64(r.TotalRows) * 100
}

// anomalyRow is one rejected row bound for the side report.
type anomalyRow struct {
	rowIndex int
	mainName string
	reason   string
	coords   string
}

// Converter runs the row pipeline. Safe for concurrent use: all
// mutable state lives per call.
type Converter struct {
	parser *coords.Parser
	cfg    config.Config
}

// NewConverter builds a converter around a shared coordinate parser.
func NewConverter(parser *coords.Parser, cfg config.Config) *Converter {
	return &Converter{parser: parser, cfg: cfg}
}

// ConvertFile reads the first sheet of the spreadsheet at xlsxPath and
// writes the KML overlay to kmlPath. Rejected rows go into an
// ANO_<имя>.xlsx report next to the KML. Row-level failures are
// recorded in the result, not returned: only file-level problems
// (unreadable workbook, unwritable output) produce an error.
func (c *Converter) ConvertFile(xlsxPath, kmlPath string) (*Result, error) {
	start := time.Now()
	filename := filepath.Base(xlsxPath)
	logger := log.With().Str("file", filename).Logger()

	result := &Result{Filename: filename}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("открытие файла %q: %w", xlsxPath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("чтение листа %q: %w", sheet, err)
	}

	cols := DiscoverColumns(rows, c.cfg)

	var (
		placemarks []kml.Element
		anomalies  []anomalyRow
	)

	for i := c.dataStartRow(rows, cols) - 1; i < len(rows); i++ {
		rowIdx := i + 1

		coordStr := cellAt(rows[i], cols["coord"])
		if strings.TrimSpace(coordStr) == "" {
			continue
		}

		result.TotalRows++

		mainName := cellAt(rows[i], cols["name"])
		if mainName == "" {
			mainName = fmt.Sprintf("Row %d", rowIdx)
		}

		points, err := c.parser.Parse(coordStr)
		if err != nil {
			logger.Warn().Int("row", rowIdx).Str("name", mainName).Err(err).
				Msg("строка пропущена из-за ошибки парсинга")

			result.FailedRows++
			result.Errors = append(result.Errors, err)
			anomalies = append(anomalies, anomalyRow{
				rowIndex: rowIdx,
				mainName: mainName,
				reason:   err.Error(),
				coords:   coordStr,
			})

			continue
		}

		result.SuccessfulRows++

		if len(points) == 0 {
			logger.Debug().Int("row", rowIdx).Str("name", mainName).
				Msg("строка без валидных координат")

			continue
		}

		logger.Debug().Int("row", rowIdx).Str("name", mainName).
			Int("points", len(points)).Msg("координаты распознаны")

		for _, p := range points {
			result.Placemarks = append(result.Placemarks, Placemark{
				Name:  "№ п/п " + mainName + " - " + p.Name,
				Point: p,
			})
		}

		placemarks = append(placemarks, c.rowPlacemarks(rows[i], cols, mainName, points, logger)...)
	}

	if err := writeKML(kmlPath, placemarks); err != nil {
		return nil, err
	}

	if len(anomalies) > 0 {
		result.AnomalyRows = len(anomalies)
		result.AnomalyFileCreated = c.writeAnomalies(anomalies, kmlPath, logger)
	}

	result.ProcessingTime = time.Since(start)

	return result, nil
}

// dataStartRow finds the first data row (1-based) by probing the
// coordinate column for a meter marker or an inch sign within the scan
// window, falling back to the configured default.
func (c *Converter) dataStartRow(rows [][]string, cols Columns) int {
	if !cols.Has("coord") {
		return c.cfg.DefaultDataStartRow
	}

	for i := 0; i < len(rows) && i < c.cfg.DataStartScanMaxRow; i++ {
		v := cellAt(rows[i], cols["coord"])
		if strings.Contains(v, c.cfg.MeterMarker) || strings.Contains(v, `"`) {
			return i + 1
		}
	}

	return c.cfg.DefaultDataStartRow
}

// rowPlacemarks renders one row's points as KML elements.
func (c *Converter) rowPlacemarks(
	row []string, cols Columns, mainName string,
	points []spatial.Point, logger zerolog.Logger,
) []kml.Element {
	clr := randomColor()
	description := c.buildDescription(row, cols)
	goalText := cellAt(row, cols["goal"])
	usage := WaterUsageTypeOf(goalText)
	name := "№ п/п " + mainName

	switch classifyGeometry(points, goalText, usage, c.cfg.PipelineSkipTerms) {
	case GeometryPolygon:
		logger.Debug().Str("name", mainName).Msg("создание полигона")

		if c.shouldSortVertices(mainName, points) {
			points = spatial.SortByAngle(points)
		}

		return []kml.Element{polygonPlacemark(name, description, points, clr, c.cfg)}

	case GeometryLine:
		logger.Debug().Str("name", mainName).Msg("создание линии")

		return []kml.Element{linePlacemark(name, description, points, clr, c.cfg)}

	default:
		out := make([]kml.Element, 0, len(points))

		for i, p := range points {
			full := PointName(mainName, usage, i+1, p.Name)
			out = append(out, pointPlacemark(full, description, p, clr, c.cfg))
		}

		return out
	}
}

// shouldSortVertices reports whether polygon vertices get the
// centroid-angle sort: always for quadrilaterals, otherwise only for
// rows explicitly listed in the config.
func (c *Converter) shouldSortVertices(mainName string, points []spatial.Point) bool {
	if len(points) == 4 {
		return true
	}

	n, err := strconv.Atoi(strings.TrimSpace(mainName))
	if err != nil {
		return false
	}

	for _, want := range c.cfg.PolygonSortRowNumbers {
		if n == want {
			return true
		}
	}

	return false
}

func (c *Converter) buildDescription(row []string, cols Columns) string {
	parts := make([]string, 0, len(descriptionOrder))

	for _, key := range descriptionOrder {
		value := cellAt(row, cols[key])
		if value == "" {
			continue
		}

		if dateKeys[key] {
			value = strings.SplitN(value, " ", 2)[0]
		}

		parts = append(parts, c.cfg.ExcelColumns[key][0]+": "+value)
	}

	return strings.Join(parts, "\n") + descriptionFooter
}

// writeAnomalies saves the rejected rows next to the KML as
// ANO_<имя>.xlsx. A failure here is logged but never fails the
// conversion: the KML is already on disk.
func (c *Converter) writeAnomalies(anomalies []anomalyRow, kmlPath string, logger zerolog.Logger) bool {
	base := filepath.Base(kmlPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	outPath := filepath.Join(filepath.Dir(kmlPath), "ANO_"+name+".xlsx")

	logger.Info().Int("rows", len(anomalies)).Str("path", outPath).
		Msg("сохранение отчета об аномалиях")

	const sheet = "Anomalies"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		logger.Error().Err(err).Msg("не удалось подготовить лист аномалий")

		return false
	}

	headers := []any{"Строка в оригинальном файле", "№ п/п", "Причина", "Координаты"}
	widths := make([]int, len(headers))

	for i, h := range headers {
		widths[i] = len([]rune(h.(string)))
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		logger.Error().Err(err).Msg("не удалось записать заголовок аномалий")

		return false
	}

	for i, a := range anomalies {
		values := []any{a.rowIndex, a.mainName, a.reason, a.coords}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err == nil {
			err = f.SetSheetRow(sheet, cell, &values)
		}

		if err != nil {
			logger.Error().Err(err).Int("row", i+2).Msg("не удалось записать строку аномалий")

			return false
		}

		for j, v := range values {
			if n := len([]rune(fmt.Sprint(v))); n > widths[j] {
				widths[j] = n
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}

		width := float64(w + 2)
		if width > 64 {
			width = 64
		}

		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			logger.Warn().Err(err).Str("column", col).Msg("не удалось выставить ширину столбца")
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		logger.Error().Err(err).Str("path", outPath).Msg("не удалось сохранить отчет об аномалиях")

		return false
	}

	return true
}
