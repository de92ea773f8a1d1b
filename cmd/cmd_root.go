// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd is the cobra command surface of aquakml.
package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rudi-ru/aquakml/config"
)

// cfg is the effective configuration; persistent flags write into it.
var cfg = config.Default()

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "aquakml",
	Short: "реестры водопользования → KML",
	Long: `
aquakml читает реестры водопользования (.xlsx), распознает координаты
мест водопользования (ДМС, МСК, СК-42) и строит KML-слои для
картографических сервисов. Строки с нераспознанными координатами
попадают в отчет ANO_<имя>.xlsx рядом с результатом.
`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "подробный вывод (debug)")
	pf.StringVar(&cfg.Proj4Path, "proj4", cfg.Proj4Path,
		"JSON-файл с описаниями проекций МСК")
	pf.StringVar(&cfg.ObjectsInfoPath, "objects-info", cfg.ObjectsInfoPath,
		"JSON-каталог объектов с известной системой координат")
	pf.StringVar(&cfg.DBPath, "db-path", cfg.DBPath,
		"папка базы истории запусков (пустая строка отключает)")
	pf.Float64Var(&cfg.AnomalyThresholdKm, "anomaly-threshold-km", cfg.AnomalyThresholdKm,
		"порог удаленности точки от остальных, км")
	pf.IntVar(&cfg.MaxWorkers, "max-workers", cfg.MaxWorkers,
		"число параллельных обработчиков файлов (0 = число ядер)")
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
