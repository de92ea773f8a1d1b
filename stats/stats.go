// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package stats aggregates conversion results into a session summary
// with a data quality score, and persists run history in DuckDB.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/rudi-ru/aquakml/convert"
	"github.com/rudi-ru/aquakml/coords"
)

// topErrorCount limits the error analysis to the most frequent groups.
const topErrorCount = 10

// ProcessingStats aggregates per-file conversion results for one
// session. Not safe for concurrent use; the batch layer funnels
// results through a single goroutine.
type ProcessingStats struct {
	StartTime             time.Time
	RegionsDetected       int
	FilesCreated          []string
	FileResults           map[string]*convert.Result
	ConversionErrors      int
	AnomalyFilesGenerated int
}

// NewProcessingStats starts an empty session.
func NewProcessingStats() *ProcessingStats {
	return &ProcessingStats{
		StartTime:   time.Now(),
		FileResults: make(map[string]*convert.Result),
	}
}

// AddResult records one file's conversion outcome.
func (s *ProcessingStats) AddResult(result *convert.Result) {
	s.FileResults[result.Filename] = result

	if result.AnomalyFileCreated {
		s.AnomalyFilesGenerated++
	}
}

// ProcessingTime returns the elapsed session time.
func (s *ProcessingStats) ProcessingTime() time.Duration {
	return time.Since(s.StartTime)
}

// Totals are the session-wide row counters.
type Totals struct {
	TotalFiles     int
	TotalRows      int
	SuccessfulRows int
	FailedRows     int
	AnomalyRows    int
}

// Totals sums the counters over every recorded file.
func (s *ProcessingStats) Totals() Totals {
	t := Totals{TotalFiles: len(s.FileResults)}

	for _, r := range s.FileResults {
		t.TotalRows += r.TotalRows
		t.SuccessfulRows += r.SuccessfulRows
		t.FailedRows += r.FailedRows
		t.AnomalyRows += r.AnomalyRows
	}

	return t
}

// MostProblematicFiles returns up to n files with the highest failure
// rate, worst first. Files without failures are excluded.
func (s *ProcessingStats) MostProblematicFiles(n int) []*convert.Result {
	var problematic []*convert.Result

	for _, r := range s.FileResults {
		if r.TotalRows > 0 && r.FailureRate() > 0 {
			problematic = append(problematic, r)
		}
	}

	sort.Slice(problematic, func(i, j int) bool {
		if problematic[i].FailureRate() != problematic[j].FailureRate() {
			return problematic[i].FailureRate() > problematic[j].FailureRate()
		}

		return problematic[i].Filename < problematic[j].Filename
	})

	if len(problematic) > n {
		problematic = problematic[:n]
	}

	return problematic
}

// ErrorGroup is one class of parse failure and its frequency.
type ErrorGroup struct {
	Label string
	Count int
}

// ErrorAnalysis summarizes the session's parse failures by class.
type ErrorAnalysis struct {
	TotalErrors int
	UniqueTypes int
	TopErrors   []ErrorGroup
}

// QualityScore grades the session's input data. Parsing is the share
// of rows converted; completeness penalizes failures at half weight;
// consistency penalizes the variety of distinct error messages (many
// distinct messages indicate structurally messy input, not one
// systematic defect).
type QualityScore struct {
	Parsing      float64
	Completeness float64
	Consistency  float64
	Overall      float64
	Analysis     *ErrorAnalysis
}

// QualityScore computes the session grade. A session with zero
// processed rows scores zero across the board.
func (s *ProcessingStats) QualityScore() QualityScore {
	totals := s.Totals()
	if totals.TotalRows == 0 {
		return QualityScore{}
	}

	parsing := float64(totals.SuccessfulRows) / float64(totals.TotalRows) * 100

	completeness := 100 - float64(totals.FailedRows)/float64(totals.TotalRows)*50
	if completeness < 0 {
		completeness = 0
	}

	var allErrors []error
	for _, r := range s.FileResults {
		allErrors = append(allErrors, r.Errors...)
	}

	uniqueMessages := make(map[string]bool, len(allErrors))
	for _, err := range allErrors {
		uniqueMessages[err.Error()] = true
	}

	consistency := 100 - float64(len(uniqueMessages))*2
	if consistency < 20 {
		consistency = 20
	}

	score := QualityScore{
		Parsing:      round1(parsing),
		Completeness: round1(completeness),
		Consistency:  round1(consistency),
		Overall:      round1(parsing*0.5 + completeness*0.3 + consistency*0.2),
	}

	if len(allErrors) > 0 {
		score.Analysis = analyzeErrors(allErrors)
	}

	return score
}

// analyzeErrors groups failures by their parse error class; foreign
// errors group by truncated message.
func analyzeErrors(errs []error) *ErrorAnalysis {
	counts := make(map[string]int)

	for _, err := range errs {
		label := coords.KindOf(err).String()
		if coords.KindOf(err) == coords.ErrorKindUnknown {
			label = truncate(err.Error(), 80)
		}

		counts[label]++
	}

	groups := make([]ErrorGroup, 0, len(counts))
	for label, count := range counts {
		groups = append(groups, ErrorGroup{Label: label, Count: count})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}

		return groups[i].Label < groups[j].Label
	})

	analysis := &ErrorAnalysis{
		TotalErrors: len(errs),
		UniqueTypes: len(groups),
		TopErrors:   groups,
	}

	if len(analysis.TopErrors) > topErrorCount {
		analysis.TopErrors = analysis.TopErrors[:topErrorCount]
	}

	return analysis
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "..."
}
