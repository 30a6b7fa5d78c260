// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package osm

import (
	"time"

	"github.com/Zheng-Bote/get-poi-osm/spatial"
)

// Normalize filters raw by type and whitelist and assembles the document,
// crediting the public endpoints in the source block.
func Normalize(
	raw []RawElement,
	center spatial.Point,
	radiusMeters int,
	wl Whitelist,
	input QueryInput,
	now time.Time,
) *ResultDocument {
	return assemble(DefaultSource(), raw, center, radiusMeters, wl, input, now)
}

func assemble(
	source Source,
	raw []RawElement,
	center spatial.Point,
	radiusMeters int,
	wl Whitelist,
	input QueryInput,
	now time.Time,
) *ResultDocument {
	pois := make([]Poi, 0, len(raw))

	for _, e := range raw {
		if e.Type != "node" || !wl.Matches(e.Tags) {
			continue
		}

		pois = append(pois, newPoi(e))
	}

	if wl == nil {
		wl = Whitelist{}
	}

	return &ResultDocument{
		SchemaVersion: SchemaVersion,
		Source:        source,
		Query: QueryEcho{
			Input:          input,
			ResolvedCenter: center,
			RadiusM:        radiusMeters,
			Whitelist:      wl,
			TimestampUTC:   Timestamp(now.UTC()),
		},
		Results: Results{
			Count: len(pois),
			Pois:  pois,
		},
	}
}

func newPoi(e RawElement) Poi {
	tags := e.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	poi := Poi{Lat: e.Lat, Lon: e.Lon, Tags: tags}

	if name, ok := tags["name"]; ok {
		poi.Name = &name
	}

	return poi
}

// Annotate adds the distance to the resolved center and, when h3Resolution
// is positive, the H3 cell of every POI.
func Annotate(doc *ResultDocument, distance bool, h3Resolution int) error {
	center := doc.Query.ResolvedCenter

	for i := range doc.Results.Pois {
		p := &doc.Results.Pois[i]
		pt := spatial.Point{Lat: p.Lat, Lon: p.Lon}

		if distance {
			d := center.HaversineDistance(pt)
			p.DistanceM = &d
		}

		if h3Resolution > 0 {
			cell, err := pt.Cell(h3Resolution)
			if err != nil {
				return err
			}

			p.H3Cell = cell.String()
		}
	}

	return nil
}
