// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package separate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rudi-ru/aquakml/config"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Астраханская область", "Астраханская область"},
		{"forbidden characters", `Регион <тест>: "а/б\в"`, "Регион _тест_ _а_б_в"},
		{"collapsed whitespace", "  Нижне-Волжское   БВУ  ", "Нижне-Волжское БВУ"},
		{"empty", "   ", "unnamed"},
		{"only forbidden", "???", "unnamed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeFilename(tc.in))
		})
	}
}

// buildRegistry writes a small registry workbook: five header rows,
// then caption rows merged across A:G around the data rows.
func buildRegistry(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	set := func(row int, values ...any) {
		cell, err := excelize.CoordinatesToCellName(1, row)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	merge := func(row int, text string) {
		set(row, text)

		start, err := excelize.CoordinatesToCellName(1, row)
		require.NoError(t, err)
		end, err := excelize.CoordinatesToCellName(7, row)
		require.NoError(t, err)
		require.NoError(t, f.MergeCell(sheet, start, end))
	}

	merge(1, "Реестр действующих документов на водопользование")
	set(2, "", "")
	set(3, "примечание")
	set(4, "", "")
	set(5, "№ п/п", "Место водопользования", "Цель водопользования")

	merge(6, "Нижне-Волжское БВУ")
	merge(7, "Астраханская область")
	set(8, "1", `55° 18' 26"СШ 123° 12' 2" ВД`, "Орошение")
	set(9, "2", `55° 12' 13"СШ 123° 16' 10" ВД`, "Сброс")
	merge(10, "Итого действующих документов по субъекту РФ: 2")
	merge(11, "Волгоградская область")
	set(12, "1", `55° 18' 26"СШ 123° 12' 2" ВД`, "Забор")
	merge(13, "Итого действующих документов по субъекту РФ: 1")
	merge(14, "Итого действующих документов по зоне деятельности БВУ: 3")

	require.NoError(t, f.SaveAs(path))
}

func TestSplit(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "registry.xlsx")
	output := filepath.Join(dir, "out")

	buildRegistry(t, input)

	result, err := NewSeparator(config.Default()).Split(input, output)
	require.NoError(t, err)

	require.Len(t, result.FilesCreated, 2)
	assert.Equal(t, 3, result.DataRows)

	astrakhan := filepath.Join(output, "Нижне-Волжское БВУ", "Астраханская область.xlsx")
	volgograd := filepath.Join(output, "Нижне-Волжское БВУ", "Волгоградская область.xlsx")

	assert.FileExists(t, astrakhan)
	assert.FileExists(t, volgograd)

	f, err := excelize.OpenFile(astrakhan)
	require.NoError(t, err)

	defer f.Close()

	sheet := f.GetSheetName(0)

	// The instruction sits on row 3, pushing the original rows 3-5 down.
	v, err := f.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Инструкция по использованию KML", v)

	link, target, err := f.GetCellHyperLink(sheet, "A3")
	require.NoError(t, err)
	assert.True(t, link)
	assert.Equal(t, "https://www.rudi.ru/kml-instruction.php", target)

	v, err = f.GetCellValue(sheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "примечание", v)

	v, err = f.GetCellValue(sheet, "A6")
	require.NoError(t, err)
	assert.Equal(t, "№ п/п", v)

	// Data starts after the six header rows.
	v, err = f.GetCellValue(sheet, "A7")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	v, err = f.GetCellValue(sheet, "A8")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	merges, err := f.GetMergeCells(sheet)
	require.NoError(t, err)

	ranges := make([]string, 0, len(merges))
	for _, m := range merges {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}

	assert.Contains(t, ranges, "A1:G1")
	assert.Contains(t, ranges, "A3:G3")
}

func TestSplitWithoutCaptions(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "flat.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"№ п/п", "Место водопользования"}))
	require.NoError(t, f.SetSheetRow(sheet, "A6", &[]any{"1", "данные"}))
	require.NoError(t, f.SaveAs(input))
	require.NoError(t, f.Close())

	result, err := NewSeparator(config.Default()).Split(input, filepath.Join(dir, "out"))
	require.NoError(t, err)

	// No caption rows: nothing to split into.
	assert.Empty(t, result.FilesCreated)
	assert.Zero(t, result.DataRows)
}
