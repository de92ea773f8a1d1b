// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rudi-ru/aquakml/config"
	"github.com/rudi-ru/aquakml/coords"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	// Parsers load lazily; the fixtures below never reach the metric
	// grid branch, so missing config files only cost a warning.
	cfg.Proj4Path = filepath.Join(t.TempDir(), "no_proj4.json")
	cfg.ObjectsInfoPath = filepath.Join(t.TempDir(), "no_objects.json")

	return cfg
}

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	require.NoError(t, f.SaveAs(path))
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Самарская область.xlsx")
	dst := filepath.Join(dir, "kml", "Самарская область.kml")

	writeWorkbook(t, src, [][]any{
		{"", "Реестр действующих документов"},
		{"№ п/п", "Место водопользования", "Цель водопользования", "Владелец"},
		{
			"1",
			`1: 53°8'14.3" СШ 50°2'10.05" ВД 2: 53°8'14.29" СШ 50°2'11.62" ВД 3: 53°8'12.55" СШ 50°2'11.96" ВД 4: 53°8'10.26" СШ 50°2'13.63" ВД`,
			"Орошение земель",
			"ООО Волгарь",
		},
		{
			"2",
			`55° 18' 26"СШ 123° 12' 2" ВД`,
			"Забор (изъятие) водных ресурсов",
			"АО Водоканал",
		},
		{
			"3",
			`53° 8' 26"СШ 50° 3' 44" ВД ; 53° 8' 26"СШ`,
			"Сброс сточных вод",
			"МУП Сток",
		},
	})

	cfg := testConfig(t)
	conv := NewConverter(coords.NewParser(nil, nil, cfg), cfg)

	result, err := conv.ConvertFile(src, dst)
	require.NoError(t, err)

	assert.Equal(t, "Самарская область.xlsx", result.Filename)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.SuccessfulRows)
	assert.Equal(t, 1, result.FailedRows)
	assert.Equal(t, 1, result.AnomalyRows)
	assert.True(t, result.AnomalyFileCreated)
	assert.InDelta(t, 66.7, result.SuccessRate(), 0.1)
	assert.InDelta(t, 33.3, result.FailureRate(), 0.1)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, coords.ErrorKindOddCount, coords.KindOf(result.Errors[0]))

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)

	kml := string(raw)
	assert.Contains(t, kml, "<Polygon>")
	assert.Contains(t, kml, "№ п/п 1")
	assert.Contains(t, kml, "№ п/п 2 - забор 1")
	assert.Contains(t, kml, "Разработано RUDI.ru")
	assert.Contains(t, kml, "Владелец: ООО Волгарь")
	assert.NotContains(t, kml, "№ п/п 3")
}

func TestConvertFileAnomalyReport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "region.xlsx")
	dst := filepath.Join(dir, "region.kml")

	writeWorkbook(t, src, [][]any{
		{"№ п/п", "Место водопользования"},
		{"7", `53° 8' 26"СШ 50° 3' 44" ВД ; 53° 8' 26"СШ`},
	})

	cfg := testConfig(t)
	conv := NewConverter(coords.NewParser(nil, nil, cfg), cfg)

	result, err := conv.ConvertFile(src, dst)
	require.NoError(t, err)
	require.True(t, result.AnomalyFileCreated)

	report, err := excelize.OpenFile(filepath.Join(dir, "ANO_region.xlsx"))
	require.NoError(t, err)

	defer report.Close()

	rows, err := report.GetRows("Anomalies")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Строка в оригинальном файле", rows[0][0])
	assert.Equal(t, "7", rows[1][1])
	assert.Contains(t, rows[1][2], "Нечетное количество")
	assert.Contains(t, rows[1][3], "СШ")
}

func TestConvertFileEmptyCoordinateRowsSkipped(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "region.xlsx")
	dst := filepath.Join(dir, "region.kml")

	writeWorkbook(t, src, [][]any{
		{"№ п/п", "Место водопользования"},
		{"1", `55° 18' 26"СШ 123° 12' 2" ВД`},
		{"2", ""},
		{"3", "Использование акватории без координат"},
	})

	cfg := testConfig(t)
	conv := NewConverter(coords.NewParser(nil, nil, cfg), cfg)

	result, err := conv.ConvertFile(src, dst)
	require.NoError(t, err)

	// The empty cell is skipped outright; the text-only cell counts as
	// a processed row with zero points.
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.SuccessfulRows)
	assert.Zero(t, result.FailedRows)
	assert.False(t, result.AnomalyFileCreated)
}

func TestConvertDir(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	output := filepath.Join(dir, "kml")

	require.NoError(t, os.MkdirAll(filepath.Join(input, "Нижне-Волжское БВУ"), 0o755))

	rows := [][]any{
		{"№ п/п", "Место водопользования"},
		{"1", `55° 18' 26"СШ 123° 12' 2" ВД`},
	}

	writeWorkbook(t, filepath.Join(input, "Нижне-Волжское БВУ", "Астраханская область.xlsx"), rows)
	writeWorkbook(t, filepath.Join(input, "Нижне-Волжское БВУ", "Волгоградская область.xlsx"), rows)

	cfg := testConfig(t)
	conv := NewConverter(coords.NewParser(nil, nil, cfg), cfg)

	results, err := conv.ConvertDir(input, output)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Астраханская область.xlsx", results[0].Filename)
	assert.FileExists(t, filepath.Join(output, "Нижне-Волжское БВУ", "Астраханская область.kml"))
	assert.FileExists(t, filepath.Join(output, "Нижне-Волжское БВУ", "Волгоградская область.kml"))
}

func TestConvertDirEmpty(t *testing.T) {
	cfg := testConfig(t)
	conv := NewConverter(coords.NewParser(nil, nil, cfg), cfg)

	_, err := conv.ConvertDir(t.TempDir(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "нет файлов .xlsx")
}
