// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rudi-ru/aquakml/coords"
	"github.com/rudi-ru/aquakml/proj"
)

// isTerminal reports whether f is an interactive terminal; on error we
// say that it isn't.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Инструменты разработчика",
}

var debugCoordsCmd = &cobra.Command{
	Use:   "coords",
	Short: "Разобрать строки координат со stdin",
	Long: `Читает по одной строке координат со stdin и печатает распознанные
точки в JSON, либо ошибку разбора.

$ echo "1. 54°31'31,87\" СШ 36°17'42,51\" ВД" | aquakml debug coords
1. 54°31'31,87" СШ 36°17'42,51" ВД	[{"name":"точка 1","lon":36.295142,"lat":54.525519}]
`,
	RunE: func(_ *cobra.Command, _ []string) error {
		parser := coords.NewParser(nil, nil, cfg)

		input := os.Stdin
		if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Введите строки координат, по одной на строку…")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			line := scanner.Text()

			points, err := parser.Parse(line)
			if err != nil {
				fmt.Printf("%s\t%q\n", line, err)

				continue
			}

			s, err := json.Marshal(points)
			if err != nil {
				return err
			}

			fmt.Printf("%s\t%s\n", line, s)
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("чтение stdin: %w", err)
		}

		return nil
	},
}

var debugProj4Cmd = &cobra.Command{
	Use:   "proj4 <определение>",
	Short: "Трансформировать пары x y со stdin по PROJ4-определению",
	Long: `Строит преобразование из PROJ4-строки и читает со stdin пары
"x y" (восток север, метры), печатая долготу и широту WGS84.

$ echo "1368949.26 381631.8" | aquakml debug proj4 "+proj=tmerc +lat_0=0 …"
1368949.26 381631.8	50.062209 53.142413
`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		tr, err := proj.FromProj4(args[0])
		if err != nil {
			return fmt.Errorf("разбор определения: %w", err)
		}

		input := os.Stdin
		if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Введите пары \"x y\", по одной на строку…")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			line := scanner.Text()

			fields := strings.Fields(line)
			if len(fields) != 2 {
				fmt.Printf("%s\t%q\n", line, "ожидается пара чисел x y")

				continue
			}

			x, errX := strconv.ParseFloat(fields[0], 64)
			y, errY := strconv.ParseFloat(fields[1], 64)

			if errX != nil || errY != nil {
				fmt.Printf("%s\t%q\n", line, "ожидается пара чисел x y")

				continue
			}

			lon, lat, err := tr.ToWGS84(x, y)
			if err != nil {
				fmt.Printf("%s\t%q\n", line, err)

				continue
			}

			fmt.Printf("%s\t%f %f\n", line, lon, lat)
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("чтение stdin: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugCoordsCmd)
	debugCmd.AddCommand(debugProj4Cmd)
}
