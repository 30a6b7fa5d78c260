// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

// Package spatial holds the geographic primitives shared by the query pipeline.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// ErrOutOfBounds is returned by Validate for coordinates outside the WGS84 range.
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// ErrInvalidResolution is returned for H3 resolutions outside 0-15.
var ErrInvalidResolution = errors.New("invalid h3 resolution")

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("(%f, %f)", p.Lat, p.Lon)
}

// Validate checks -90 <= lat <= 90 and -180 <= lon <= 180. NaN never validates.
func (p Point) Validate() error {
	if !(p.Lat >= -90 && p.Lat <= 90) {
		return fmt.Errorf("%w: latitude %v not in [-90, 90]", ErrOutOfBounds, p.Lat)
	}

	if !(p.Lon >= -180 && p.Lon <= 180) {
		return fmt.Errorf("%w: longitude %v not in [-180, 180]", ErrOutOfBounds, p.Lon)
	}

	return nil
}

// IsZero reports whether both coordinates are exactly zero.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p Point) HaversineDistance(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLon := (other.Lon - p.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Cell returns the H3 cell containing the point at the given resolution (0-15).
func (p Point) Cell(resolution int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lon), resolution)
	if err != nil {
		return 0, fmt.Errorf("converting %s to h3 cell at res %d: %w", p, resolution, err)
	}

	return cell, nil
}

// ValidateResolution checks that resolution is a valid H3 resolution.
func ValidateResolution(resolution int) error {
	if resolution < 0 || resolution > h3.MaxResolution {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidResolution, resolution, h3.MaxResolution)
	}

	return nil
}
