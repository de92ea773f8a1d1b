// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rudi-ru/aquakml/separate"
)

var separateOutputDir string

var separateCmd = &cobra.Command{
	Use:   "separate <реестр.xlsx>",
	Short: "Разделить сводный реестр по регионам",
	Long: `Разрезает сводный реестр на отдельные книги по субъектам РФ.
Строки, объединенные на всю ширину таблицы, считаются заголовками
разделов: название БВУ становится папкой, название региона — файлом
<папка>/<Регион>.xlsx. Каждая книга получает общую шапку, ширины
столбцов и строку со ссылкой на инструкцию.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		result, err := separate.NewSeparator(cfg).Split(args[0], separateOutputDir)
		if err != nil {
			return err
		}

		fmt.Printf("Создано файлов: %d, строк данных: %d\n",
			len(result.FilesCreated), result.DataRows)

		for _, f := range result.FilesCreated {
			fmt.Println("  " + f)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(separateCmd)
	separateCmd.Flags().StringVarP(&separateOutputDir, "output", "o", cfg.XLSXOutputDir,
		"папка для региональных файлов")
}
