// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package separate splits the federal water-use registry workbook into
// one spreadsheet per region. The registry interleaves data rows with
// full-width merged caption rows naming the basin authority (БВУ) or
// the region, and with «Итого…» total rows closing each section; the
// captions drive the split.
package separate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/rudi-ru/aquakml/config"
)

const (
	instructionText = "Инструкция по использованию KML"
	instructionURL  = "https://www.rudi.ru/kml-instruction.php"

	regionTotalPrefix = "Итого действующих документов по субъекту РФ:"
	basinTotalPrefix  = "Итого действующих документов по зоне деятельности БВУ:"
)

// caption keywords, matched lowercase.
var (
	basinWords  = []string{"бву", "комитет", "департамент"}
	regionWords = []string{
		"область", "край", "автономная", "республика",
		"округ", "севастополь", "москва", "санкт-петербург",
	}
)

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedWhitespace   = regexp.MustCompile(`\s+`)
	repeatedUnderscore   = regexp.MustCompile(`_+`)
)

// SanitizeFilename makes a caption safe to use as a file or folder
// name on every platform the output lands on.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = repeatedWhitespace.ReplaceAllString(name, " ")
	name = strings.Trim(name, "_")
	name = repeatedUnderscore.ReplaceAllString(name, "_")

	if name == "" {
		return "unnamed"
	}

	return name
}

// Result summarizes one split run.
type Result struct {
	FilesCreated  []string
	RowsProcessed int
	DataRows      int
}

// Separator splits registry workbooks.
type Separator struct {
	cfg config.Config
}

// NewSeparator builds a separator.
func NewSeparator(cfg config.Config) *Separator {
	return &Separator{cfg: cfg}
}

// mergeRange is a rectangular merged region in 1-based coordinates.
type mergeRange struct {
	minCol, minRow, maxCol, maxRow int
}

func parseMergeRange(mc excelize.MergeCell) (mergeRange, error) {
	minCol, minRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
	if err != nil {
		return mergeRange{}, err
	}

	maxCol, maxRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
	if err != nil {
		return mergeRange{}, err
	}

	return mergeRange{minCol: minCol, minRow: minRow, maxCol: maxCol, maxRow: maxRow}, nil
}

// Split reads the registry at inputPath and writes one workbook per
// region under outputDir/<БВУ>/<Регион>.xlsx, each carrying the
// original header rows plus an instruction row.
func (s *Separator) Split(inputPath, outputDir string) (*Result, error) {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("открытие файла %q: %w", inputPath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("чтение листа %q: %w", sheet, err)
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("чтение объединенных ячеек: %w", err)
	}

	fullWidthRows, headerMerges, err := s.classifyMerges(merges)
	if err != nil {
		return nil, err
	}

	header := s.buildHeader(rows)
	widths := s.readColWidths(f, sheet)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("создание папки %q: %w", outputDir, err)
	}

	result := &Result{}

	var (
		basinName  string
		regionName string
		regionRows [][]string
	)

	flush := func() error {
		if basinName == "" || regionName == "" || len(regionRows) == 0 {
			return nil
		}

		path := filepath.Join(outputDir, basinName, regionName+".xlsx")
		if err := s.writeRegion(path, header, headerMerges, widths, regionRows); err != nil {
			return err
		}

		result.FilesCreated = append(result.FilesCreated, path)
		regionRows = nil

		return nil
	}

	for i := s.cfg.HeaderRowsCount; i < len(rows); i++ {
		rowIdx := i + 1
		result.RowsProcessed++

		if caption, ok := fullWidthRows[rowIdx]; ok {
			lower := strings.ToLower(caption)

			switch {
			case strings.HasPrefix(caption, regionTotalPrefix),
				strings.HasPrefix(caption, basinTotalPrefix):
				if err := flush(); err != nil {
					return nil, err
				}

				regionName = ""

				if strings.HasPrefix(caption, basinTotalPrefix) {
					basinName = ""
				}

			case containsAny(lower, basinWords):
				if err := flush(); err != nil {
					return nil, err
				}

				basinName = SanitizeFilename(caption)
				regionName = ""
				regionRows = nil

			case containsAny(lower, regionWords):
				if err := flush(); err != nil {
					return nil, err
				}

				regionName = SanitizeFilename(caption)
				regionRows = nil

			default:
				log.Warn().Int("row", rowIdx).Str("caption", caption).
					Msg("неопознанная строка-разделитель")
			}

			continue
		}

		if basinName != "" && regionName != "" && firstCell(rows[i]) != "" {
			regionRows = append(regionRows, rows[i])
			result.DataRows++
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	log.Info().Int("files", len(result.FilesCreated)).Int("rows", result.RowsProcessed).
		Msg("разделение завершено")

	return result, nil
}

// classifyMerges splits the workbook's merges into full-width one-row
// caption markers (keyed by row) and header merges, the latter already
// shifted down to make room for the instruction row at row 3.
func (s *Separator) classifyMerges(merges []excelize.MergeCell) (map[int]string, []mergeRange, error) {
	minCol, maxCol := s.cfg.MergeColumns[0], s.cfg.MergeColumns[1]

	fullWidth := make(map[int]string)
	headerMerges := []mergeRange{
		{minCol: minCol, minRow: 3, maxCol: maxCol, maxRow: 3}, // instruction row
	}

	for _, mc := range merges {
		r, err := parseMergeRange(mc)
		if err != nil {
			return nil, nil, fmt.Errorf("разбор объединенной области %q: %w", mc.GetStartAxis(), err)
		}

		if r.minRow == r.maxRow && r.minCol == minCol && r.maxCol == maxCol {
			fullWidth[r.minRow] = strings.TrimSpace(mc.GetCellValue())
		}

		if r.minRow <= s.cfg.HeaderRowsCount {
			if r.minRow >= 3 {
				r.minRow++
				r.maxRow++
			}

			headerMerges = append(headerMerges, r)
		}
	}

	return fullWidth, headerMerges, nil
}

// buildHeader copies the original header rows and inserts the
// instruction row as the new third row.
func (s *Separator) buildHeader(rows [][]string) [][]string {
	header := make([][]string, 0, s.cfg.HeaderRowsCount+1)

	for i := 0; i < s.cfg.HeaderRowsCount && i < len(rows); i++ {
		header = append(header, rows[i])
	}

	instruction := []string{instructionText}

	if len(header) < 2 {
		return append(header, instruction)
	}

	out := make([][]string, 0, len(header)+1)
	out = append(out, header[:2]...)
	out = append(out, instruction)
	out = append(out, header[2:]...)

	return out
}

func (s *Separator) readColWidths(f *excelize.File, sheet string) map[int]float64 {
	widths := make(map[int]float64)

	for col := 1; col <= s.cfg.MergeColumns[1]; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			continue
		}

		if w, err := f.GetColWidth(sheet, name); err == nil && w > 0 {
			widths[col] = w
		}
	}

	return widths
}

func (s *Separator) writeRegion(
	path string, header [][]string, headerMerges []mergeRange,
	widths map[int]float64, dataRows [][]string,
) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("создание папки %q: %w", filepath.Dir(path), err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	writeRow := func(rowIdx int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}

		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}

		return f.SetSheetRow(sheet, cell, &row)
	}

	for i, row := range header {
		if err := writeRow(i+1, row); err != nil {
			return fmt.Errorf("запись шапки %q: %w", path, err)
		}
	}

	if err := f.SetCellHyperLink(sheet, "A3", instructionURL, "External"); err != nil {
		return fmt.Errorf("ссылка на инструкцию %q: %w", path, err)
	}

	for i, row := range dataRows {
		if err := writeRow(len(header)+1+i, row); err != nil {
			return fmt.Errorf("запись данных %q: %w", path, err)
		}
	}

	for _, m := range headerMerges {
		start, err := excelize.CoordinatesToCellName(m.minCol, m.minRow)
		if err != nil {
			return err
		}

		end, err := excelize.CoordinatesToCellName(m.maxCol, m.maxRow)
		if err != nil {
			return err
		}

		if err := f.MergeCell(sheet, start, end); err != nil {
			log.Warn().Err(err).Str("range", start+":"+end).
				Msg("не удалось объединить ячейки шапки")
		}
	}

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			continue
		}

		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			log.Warn().Err(err).Str("column", name).
				Msg("не удалось выставить ширину столбца")
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("сохранение %q: %w", path, err)
	}

	return nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}

	return false
}

func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}

	return strings.TrimSpace(row[0])
}
