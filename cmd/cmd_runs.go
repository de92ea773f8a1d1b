// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/rudi-ru/aquakml/stats"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "История запусков конвертации",
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.DBPath == "" {
			return fmt.Errorf("история запусков отключена (--db-path пуст)")
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

		runs, err := repo.RecentRuns(runsLimit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("История запусков пуста.")

			return nil
		}

		a, b, c, d := strings.Repeat("─", 4), strings.Repeat("─", 19),
			strings.Repeat("─", 33), strings.Repeat("─", 10)
		fmt.Println("Последние запуски:")
		fmt.Printf("╭─%4s─┬─%-19s─┬─%-33s─┬─%-10s╮\n", a, b, c, d)
		fmt.Printf("│ %4s │ %-19s │ %-33s │ %-10s│\n",
			"Id", "Начало", "Файлы / строки (ок / отклонено)", "Качество")
		fmt.Printf("├─%4s─┼─%-19s─┼─%-33s─┼─%-10s┤\n", a, b, c, d)

		for _, run := range runs {
			counts := fmt.Sprintf("%d / %d (%d / %d)",
				run.TotalFiles, run.TotalRows, run.SuccessfulRows, run.FailedRows)
			fmt.Printf("│ %4d │ %-19s │ %-33s │ %9.1f │\n",
				run.ID, run.StartedAt.Format("2006-01-02 15:04:05"),
				counts, run.QualityOverall)
		}

		fmt.Printf("╰─%4s─┴─%-19s─┴─%-33s─┴─%-10s╯\n", a, b, c, d)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "сколько запусков показать")
}
