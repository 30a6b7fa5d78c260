// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

// Package store archives executed runs in a duckdb database. The archive is
// write-mostly history: it is never consulted to answer a query.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Zheng-Bote/get-poi-osm/osm"
	"github.com/Zheng-Bote/get-poi-osm/spatial"
	"github.com/uber/h3-go/v4"
)

// CenterCellResolution is the H3 resolution used to index run centers.
const CenterCellResolution = 7

// ErrRunNotFound is returned by GetRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

// Run is an archived execution.
type Run struct {
	ID         int64               `json:"id"`
	ExecutedAt time.Time           `json:"executed_at"`
	Address    *string             `json:"address"`
	Center     spatial.Point       `json:"center"`
	RadiusM    int                 `json:"radius_m"`
	PoiCount   int                 `json:"poi_count"`
	CenterCell string              `json:"center_cell"`
	Document   *osm.ResultDocument `json:"document,omitempty"`
}

// RunRepository handles persistence of runs.
type RunRepository interface {
	// CreateSchema creates the runs table
	CreateSchema() error

	// SaveRun archives doc and returns the new run id
	SaveRun(doc *osm.ResultDocument) (int64, error)

	// ListRuns returns the most recent runs first, without documents
	ListRuns(limit int) ([]*Run, error)

	// ListRunsNear returns runs whose center falls in the same H3 cell as p
	ListRunsNear(p spatial.Point) ([]*Run, error)

	// GetRun returns a run including its document
	GetRun(id int64) (*Run, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlRunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB) RunRepository {
	return &sqlRunRepository{db: db}
}

func (r *sqlRunRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlRunRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS runs_id_seq START 1;
		CREATE TABLE IF NOT EXISTS runs (
			id BIGINT PRIMARY KEY DEFAULT nextval('runs_id_seq'),
			executed_at TIMESTAMP NOT NULL,
			address VARCHAR,
			center_lat DOUBLE NOT NULL,
			center_lon DOUBLE NOT NULL,
			radius_m INTEGER NOT NULL,
			poi_count INTEGER NOT NULL,
			center_cell BIGINT NOT NULL,
			document VARCHAR NOT NULL
		);
		CREATE INDEX IF NOT EXISTS runs_center_cell_idx ON runs (center_cell);
	`)
	if err != nil {
		return fmt.Errorf("creating runs schema: %w", err)
	}

	return nil
}

func (r *sqlRunRepository) SaveRun(doc *osm.ResultDocument) (int64, error) {
	center := doc.Query.ResolvedCenter

	cell, err := center.Cell(CenterCellResolution)
	if err != nil {
		return 0, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshaling document: %w", err)
	}

	var address sql.NullString
	if in, ok := doc.Query.Input.(osm.AddressInput); ok {
		address = sql.NullString{String: in.Address, Valid: true}
	}

	var id int64

	err = r.db.QueryRow(`
		INSERT INTO runs (executed_at, address, center_lat, center_lon, radius_m, poi_count, center_cell, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		time.Time(doc.Query.TimestampUTC).UTC(),
		address,
		center.Lat,
		center.Lon,
		doc.Query.RadiusM,
		doc.Results.Count,
		int64(cell),
		string(data),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	return id, nil
}

const runColumns = `id, executed_at, address, center_lat, center_lon, radius_m, poi_count, center_cell`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, extra ...any) (*Run, error) {
	var (
		run     Run
		address sql.NullString
		cell    int64
	)

	dest := append([]any{
		&run.ID,
		&run.ExecutedAt,
		&address,
		&run.Center.Lat,
		&run.Center.Lon,
		&run.RadiusM,
		&run.PoiCount,
		&cell,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if address.Valid {
		run.Address = &address.String
	}

	run.ExecutedAt = run.ExecutedAt.UTC()
	run.CenterCell = h3.Cell(cell).String()

	return &run, nil
}

func (r *sqlRunRepository) queryRuns(query string, args ...any) ([]*Run, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *sqlRunRepository) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	return r.queryRuns(`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
}

func (r *sqlRunRepository) ListRunsNear(p spatial.Point) ([]*Run, error) {
	cell, err := p.Cell(CenterCellResolution)
	if err != nil {
		return nil, err
	}

	return r.queryRuns(`SELECT `+runColumns+` FROM runs WHERE center_cell = ? ORDER BY id DESC`, int64(cell))
}

func (r *sqlRunRepository) GetRun(id int64) (*Run, error) {
	var data string

	run, err := scanRun(r.db.QueryRow(`SELECT `+runColumns+`, document FROM runs WHERE id = ?`, id), &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("getting run %d: %w", id, err)
	}

	var doc osm.ResultDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decoding document of run %d: %w", id, err)
	}

	run.Document = &doc

	return run, nil
}
