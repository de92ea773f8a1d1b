// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// ConvertDir converts every .xlsx under inputDir, mirroring the
// directory layout into outputDir with a .kml per file. Files are
// processed concurrently; per-file failures are logged and skipped so
// one broken workbook never sinks the batch. Results come back sorted
// by path.
func (c *Converter) ConvertDir(inputDir, outputDir string) ([]*Result, error) {
	files, err := listSpreadsheets(inputDir)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("в папке %q нет файлов .xlsx", inputDir)
	}

	n := len(files)

	maxProcs := c.cfg.MaxWorkers
	if maxProcs == 0 {
		maxProcs = runtime.NumCPU()
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Конвертация "+inputDir),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, maxProcs)
	errChan := make(chan error, n)
	resultChan := make(chan *Result, n)

	for _, rel := range files {
		wg.Add(1)

		go func(rel string) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			src := filepath.Join(inputDir, rel)
			dst := filepath.Join(outputDir, withKMLExt(rel))

			result, err := c.ConvertFile(src, dst)
			if err != nil {
				errChan <- fmt.Errorf("конвертация %s - %w", rel, err)
			}

			if result != nil {
				resultChan <- result
			}

			if bar == nil {
				log.Info().Str("file", rel).Msg("конвертация файла")
			} else {
				if err := bar.Add(1); err != nil {
					errChan <- fmt.Errorf("обновление прогресса для %s: %w", rel, err)
				}
			}
		}(rel)
	}

	wg.Wait()
	close(errChan)
	close(resultChan)

	for err := range errChan {
		log.Error().Err(err).Msg("файл пропущен")
	}

	results := make([]*Result, 0, n)
	for result := range resultChan {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Filename < results[j].Filename
	})

	return results, nil
}

// listSpreadsheets returns the relative paths of all .xlsx files under
// dir, skipping Office lock files ("~$…") and earlier anomaly reports.
func listSpreadsheets(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		base := d.Name()
		if !strings.EqualFold(filepath.Ext(base), ".xlsx") ||
			strings.HasPrefix(base, "~$") ||
			strings.HasPrefix(base, "ANO_") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		files = append(files, rel)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("обход папки %q: %w", dir, err)
	}

	sort.Strings(files)

	return files, nil
}

func withKMLExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".kml"
}
