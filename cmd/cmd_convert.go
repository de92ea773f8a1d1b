// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rudi-ru/aquakml/convert"
	"github.com/rudi-ru/aquakml/coords"
	"github.com/rudi-ru/aquakml/stats"
)

var convertOutputDir string

var convertCmd = &cobra.Command{
	Use:   "convert [папка|файл.xlsx]",
	Short: "Конвертировать реестры в KML",
	Long: `Конвертирует один файл .xlsx или все файлы папки (рекурсивно) в KML.
Структура подпапок повторяется в папке результата; для строк с
нераспознанными координатами рядом с KML создается ANO_<имя>.xlsx.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		input := cfg.InputDir
		if len(args) > 0 {
			input = args[0]
		}

		session := stats.NewProcessingStats()
		converter := convert.NewConverter(coords.NewParser(nil, nil, cfg), cfg)

		results, err := runConversion(converter, input, convertOutputDir)
		if err != nil {
			return err
		}

		for _, r := range results {
			session.AddResult(r)
		}

		printSummary(session)

		if cfg.DBPath != "" {
			if err := saveRun(session, results); err != nil {
				log.Warn().Err(err).Msg("история запусков не сохранена")
			}
		}

		return nil
	},
}

func runConversion(converter *convert.Converter, input, output string) ([]*convert.Result, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("вход %q: %w", input, err)
	}

	if info.IsDir() {
		return converter.ConvertDir(input, output)
	}

	base := filepath.Base(input)
	kmlPath := filepath.Join(output, strings.TrimSuffix(base, filepath.Ext(base))+".kml")

	result, err := converter.ConvertFile(input, kmlPath)
	if err != nil {
		return nil, err
	}

	return []*convert.Result{result}, nil
}

func printSummary(session *stats.ProcessingStats) {
	totals := session.Totals()
	score := session.QualityScore()

	fmt.Println("Итоги конвертации:")
	fmt.Printf("  файлов: %d, строк: %d, распознано: %d, отклонено: %d\n",
		totals.TotalFiles, totals.TotalRows, totals.SuccessfulRows, totals.FailedRows)
	fmt.Printf("  отчетов об аномалиях: %d\n", session.AnomalyFilesGenerated)
	fmt.Printf("  время: %s\n", session.ProcessingTime().Round(time.Millisecond))
	fmt.Printf("  качество данных: %.1f (парсинг %.1f / полнота %.1f / консистентность %.1f)\n",
		score.Overall, score.Parsing, score.Completeness, score.Consistency)

	if problematic := session.MostProblematicFiles(5); len(problematic) > 0 {
		fmt.Println("Проблемные файлы:")

		for _, r := range problematic {
			fmt.Printf("  %-50s %5.1f%% отклонено (%d из %d)\n",
				r.Filename, r.FailureRate(), r.FailedRows, r.TotalRows)
		}
	}

	if score.Analysis != nil {
		fmt.Printf("Ошибки (%d всего, %d типов):\n",
			score.Analysis.TotalErrors, score.Analysis.UniqueTypes)

		for _, g := range score.Analysis.TopErrors {
			fmt.Printf("  %4d × %s\n", g.Count, g.Label)
		}
	}
}

// saveRun appends the session to the run-history database.
func saveRun(session *stats.ProcessingStats, results []*convert.Result) error {
	if err := os.MkdirAll(cfg.DBPath, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("duckdb", filepath.Join(cfg.DBPath, "aquakml.duckdb"))
	if err != nil {
		return fmt.Errorf("открытие базы данных: %w", err)
	}
	defer db.Close()

	repo, err := stats.NewSQLRunRepository(db)
	if err != nil {
		return fmt.Errorf("инициализация репозитория: %w", err)
	}

	if err := repo.CreateSchema(); err != nil {
		return fmt.Errorf("создание схемы: %w", err)
	}

	totals := session.Totals()
	score := session.QualityScore()

	run := &stats.Run{
		StartedAt:      session.StartTime,
		Duration:       session.ProcessingTime(),
		TotalFiles:     totals.TotalFiles,
		TotalRows:      totals.TotalRows,
		SuccessfulRows: totals.SuccessfulRows,
		FailedRows:     totals.FailedRows,
		AnomalyRows:    totals.AnomalyRows,
		QualityOverall: score.Overall,
	}

	var groups []stats.ErrorGroup
	if score.Analysis != nil {
		groups = score.Analysis.TopErrors
	}

	if err := repo.SaveRun(run, groups, stats.PlacemarksFromResults(results)); err != nil {
		return err
	}

	log.Info().Int64("run", run.ID).Msg("запуск сохранен в истории")

	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutputDir, "output", "o", cfg.KMLOutputDir,
		"папка для KML и отчетов об аномалиях")
}
