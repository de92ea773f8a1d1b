// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"database/sql"
	"fmt"
	"time"

	h3 "github.com/uber/h3-go/v4"

	"github.com/rudi-ru/aquakml/convert"
	"github.com/rudi-ru/aquakml/spatial"
)

// Run is one recorded conversion session.
type Run struct {
	ID             int64
	StartedAt      time.Time
	Duration       time.Duration
	TotalFiles     int
	TotalRows      int
	SuccessfulRows int
	FailedRows     int
	AnomalyRows    int
	QualityOverall float64
}

// Placemark is one converted point persisted with its H3 index at
// resolutions 1 through 8, coarse to fine, for map aggregation
// queries.
type Placemark struct {
	File  string
	Name  string
	Point spatial.Point

	H3Res1 uint64
	H3Res2 uint64
	H3Res3 uint64
	H3Res4 uint64
	H3Res5 uint64
	H3Res6 uint64
	H3Res7 uint64
	H3Res8 uint64
}

func (p *Placemark) computeH3() error {
	latLng := h3.NewLatLng(p.Point.Lat, p.Point.Lon)

	for res := 1; res <= 8; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("вычисление ячейки h3 на уровне %d: %w", res, err)
		}

		switch res {
		case 1:
			p.H3Res1 = uint64(cell)
		case 2:
			p.H3Res2 = uint64(cell)
		case 3:
			p.H3Res3 = uint64(cell)
		case 4:
			p.H3Res4 = uint64(cell)
		case 5:
			p.H3Res5 = uint64(cell)
		case 6:
			p.H3Res6 = uint64(cell)
		case 7:
			p.H3Res7 = uint64(cell)
		case 8:
			p.H3Res8 = uint64(cell)
		}
	}

	return nil
}

// RunRepository persists conversion run history.
type RunRepository interface {
	// CreateSchema creates the run-history tables.
	CreateSchema() error
	// SaveRun stores one session with its error groups and placemarks.
	SaveRun(run *Run, errorGroups []ErrorGroup, placemarks []*Placemark) error
	// RecentRuns returns the latest runs, newest first.
	RecentRuns(limit int) ([]*Run, error)
	// RunErrors returns the error groups of one run, most frequent first.
	RunErrors(runID int64) ([]ErrorGroup, error)
}

type sqlRunRepository struct {
	db *sql.DB
}

// NewSQLRunRepository wraps a DuckDB connection.
func NewSQLRunRepository(db *sql.DB) (RunRepository, error) {
	// DuckDB needs to load the spatial extension
	if _, err := db.Exec(`INSTALL spatial; LOAD spatial;`); err != nil {
		return nil, err
	}

	return &sqlRunRepository{db: db}, nil
}

func (r *sqlRunRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS runs_seq START 1;

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY DEFAULT nextval('runs_seq'),
			started_at TIMESTAMP NOT NULL,
			duration_ms BIGINT NOT NULL,
			total_files INTEGER NOT NULL,
			total_rows INTEGER NOT NULL,
			successful_rows INTEGER NOT NULL,
			failed_rows INTEGER NOT NULL,
			anomaly_rows INTEGER NOT NULL,
			quality_overall DOUBLE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS run_errors (
			run_id INTEGER NOT NULL,
			label VARCHAR NOT NULL,
			count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS placemarks (
			run_id INTEGER NOT NULL,
			file VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			point POINT_2D NOT NULL,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);
	`)

	return err
}

func (r *sqlRunRepository) SaveRun(run *Run, errorGroups []ErrorGroup, placemarks []*Placemark) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO runs(
			started_at, duration_ms, total_files, total_rows,
			successful_rows, failed_rows, anomaly_rows, quality_overall
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		run.StartedAt,
		run.Duration.Milliseconds(),
		run.TotalFiles,
		run.TotalRows,
		run.SuccessfulRows,
		run.FailedRows,
		run.AnomalyRows,
		run.QualityOverall,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("сохранение запуска: %w", err)
	}

	if len(errorGroups) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO run_errors(run_id, label, count) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}

		for _, g := range errorGroups {
			if _, err := stmt.Exec(run.ID, g.Label, g.Count); err != nil {
				stmt.Close()

				return fmt.Errorf("сохранение группы ошибок %q: %w", g.Label, err)
			}
		}

		stmt.Close()
	}

	if len(placemarks) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO placemarks(
				run_id, file, name, point,
				h3_res1, h3_res2, h3_res3, h3_res4,
				h3_res5, h3_res6, h3_res7, h3_res8
			) VALUES (?, ?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}

		for _, p := range placemarks {
			if err := p.computeH3(); err != nil {
				stmt.Close()

				return err
			}

			_, err := stmt.Exec(
				run.ID,
				p.File,
				p.Name,
				p.Point.Lon,
				p.Point.Lat,
				p.H3Res1,
				p.H3Res2,
				p.H3Res3,
				p.H3Res4,
				p.H3Res5,
				p.H3Res6,
				p.H3Res7,
				p.H3Res8,
			)
			if err != nil {
				stmt.Close()

				return fmt.Errorf("сохранение точки %q: %w", p.Name, err)
			}
		}

		stmt.Close()
	}

	return tx.Commit()
}

func (r *sqlRunRepository) RecentRuns(limit int) ([]*Run, error) {
	rows, err := r.db.Query(`
		SELECT id, started_at, duration_ms, total_files, total_rows,
		       successful_rows, failed_rows, anomaly_rows, quality_overall
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run

	for rows.Next() {
		var (
			run        Run
			durationMS int64
		)

		err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&durationMS,
			&run.TotalFiles,
			&run.TotalRows,
			&run.SuccessfulRows,
			&run.FailedRows,
			&run.AnomalyRows,
			&run.QualityOverall,
		)
		if err != nil {
			return nil, err
		}

		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

func (r *sqlRunRepository) RunErrors(runID int64) ([]ErrorGroup, error) {
	rows, err := r.db.Query(`
		SELECT label, count
		FROM run_errors
		WHERE run_id = ?
		ORDER BY count DESC, label
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []ErrorGroup

	for rows.Next() {
		var g ErrorGroup
		if err := rows.Scan(&g.Label, &g.Count); err != nil {
			return nil, err
		}

		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// PlacemarksFromResults flattens the per-file placemark lists into
// repository rows.
func PlacemarksFromResults(results []*convert.Result) []*Placemark {
	var out []*Placemark

	for _, r := range results {
		for _, p := range r.Placemarks {
			out = append(out, &Placemark{
				File:  r.Filename,
				Name:  p.Name,
				Point: p.Point,
			})
		}
	}

	return out
}
