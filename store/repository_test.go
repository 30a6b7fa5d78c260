// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Zheng-Bote/get-poi-osm/osm"
	"github.com/Zheng-Bote/get-poi-osm/spatial"
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sql.DB, RunRepository) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	repo := NewRunRepository(db)
	if err := repo.CreateSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db, repo
}

func testDocument(input osm.QueryInput, center spatial.Point, at time.Time) *osm.ResultDocument {
	raw := []osm.RawElement{
		{Type: "node", Lat: center.Lat, Lon: center.Lon, Tags: map[string]string{"amenity": "cafe", "name": "Central"}},
		{Type: "node", Lat: center.Lat + 0.001, Lon: center.Lon, Tags: map[string]string{"amenity": "bench"}},
	}

	return osm.Normalize(raw, center, 500, osm.Whitelist{{Key: "amenity"}}, input, at)
}

func TestCreateSchema(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	var tableName string

	err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = 'runs'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "runs", tableName)

	// idempotent
	assert.NoError(t, repo.CreateSchema())
	assert.Same(t, db, repo.DB())
}

func TestSaveAndGetRun(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	center := spatial.Point{Lat: -34.9058916, Lon: -56.1913095}
	at := time.Date(2026, 2, 15, 9, 45, 12, 0, time.UTC)
	doc := testDocument(osm.AddressInput{Address: "Plaza Independencia, Montevideo"}, center, at)

	id, err := repo.SaveRun(doc)
	require.NoError(t, err)
	assert.Positive(t, id)

	run, err := repo.GetRun(id)
	require.NoError(t, err)

	assert.Equal(t, id, run.ID)
	assert.Equal(t, at, run.ExecutedAt)
	require.NotNil(t, run.Address)
	assert.Equal(t, "Plaza Independencia, Montevideo", *run.Address)
	assert.Equal(t, center, run.Center)
	assert.Equal(t, 500, run.RadiusM)
	assert.Equal(t, 2, run.PoiCount)

	cell, err := center.Cell(CenterCellResolution)
	require.NoError(t, err)
	assert.Equal(t, cell.String(), run.CenterCell)

	require.NotNil(t, run.Document)
	assert.Equal(t, doc.Query.Input, run.Document.Query.Input)
	assert.Equal(t, doc.Results, run.Document.Results)
	assert.Equal(t, doc.Source, run.Document.Source)
}

func TestGetRunNotFound(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	_, err := repo.GetRun(42)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestListRuns(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	montevideo := spatial.Point{Lat: -34.9058916, Lon: -56.1913095}
	berlin := spatial.Point{Lat: 52.520008, Lon: 13.404954}
	at := time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)

	var ids []int64

	for i, doc := range []*osm.ResultDocument{
		testDocument(osm.CoordinateInput{Point: montevideo}, montevideo, at),
		testDocument(osm.AddressInput{Address: "Alexanderplatz"}, berlin, at.Add(time.Minute)),
		testDocument(osm.CoordinateInput{Point: montevideo}, montevideo, at.Add(2*time.Minute)),
	} {
		id, err := repo.SaveRun(doc)
		require.NoError(t, err, "run %d", i)

		ids = append(ids, id)
	}

	runs, err := repo.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Nil(t, runs[0].Address)
	assert.Nil(t, runs[0].Document)

	all, err := repo.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	near, err := repo.ListRunsNear(montevideo)
	require.NoError(t, err)
	require.Len(t, near, 2)
	assert.Equal(t, ids[2], near[0].ID)
	assert.Equal(t, ids[0], near[1].ID)

	none, err := repo.ListRunsNear(spatial.Point{Lat: 0, Lon: 0})
	require.NoError(t, err)
	assert.Empty(t, none)
}
