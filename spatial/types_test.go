// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package spatial

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		point   Point
		wantErr bool
	}{
		{name: "origin", point: Point{Lat: 0, Lon: 0}},
		{name: "corners", point: Point{Lat: -90, Lon: 180}},
		{name: "other corner", point: Point{Lat: 90, Lon: -180}},
		{name: "berlin", point: Point{Lat: 52.520008, Lon: 13.404954}},
		{name: "latitude too big", point: Point{Lat: 90.000001, Lon: 0}, wantErr: true},
		{name: "longitude too small", point: Point{Lat: 0, Lon: -180.5}, wantErr: true},
		{name: "nan", point: Point{Lat: math.NaN(), Lon: 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrOutOfBounds))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestHaversineDistance(t *testing.T) {
	// Montevideo, Obelisco -> Palacio Legislativo, roughly 2 km apart.
	a := Point{Lat: -34.894159, Lon: -56.165766}
	b := Point{Lat: -34.891187, Lon: -56.187208}

	d := a.HaversineDistance(b)
	assert.InDelta(t, 1980, d, 50)
	assert.InDelta(t, d, b.HaversineDistance(a), 1e-9)
	assert.Zero(t, a.HaversineDistance(a))
}

func TestCell(t *testing.T) {
	p := Point{Lat: 52.520008, Lon: 13.404954}

	cell, err := p.Cell(7)
	require.NoError(t, err)
	assert.True(t, cell.IsValid())
	assert.Equal(t, 7, cell.Resolution())

	_, err = p.Cell(16)
	assert.Error(t, err)
}

func TestValidateResolution(t *testing.T) {
	for _, res := range []int{0, 7, 15} {
		assert.NoError(t, ValidateResolution(res), "res %d", res)
	}

	for _, res := range []int{-1, 16} {
		assert.ErrorIs(t, ValidateResolution(res), ErrInvalidResolution, "res %d", res)
	}
}
