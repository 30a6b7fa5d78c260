// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package osm

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Zheng-Bote/get-poi-osm/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhitelistEntry(t *testing.T) {
	tests := []struct {
		input   string
		want    WhitelistEntry
		wantErr bool
	}{
		{input: "amenity", want: WhitelistEntry{Key: "amenity"}},
		{input: "amenity=restaurant", want: WhitelistEntry{Key: "amenity", Value: "restaurant"}},
		{input: " shop = bakery ", want: WhitelistEntry{Key: "shop", Value: "bakery"}},
		{input: "name=a=b", want: WhitelistEntry{Key: "name", Value: "a=b"}},
		{input: "amenity=", want: WhitelistEntry{Key: "amenity"}},
		{input: `name=Joe's "Diner"`, want: WhitelistEntry{Key: "name", Value: `Joe's "Diner"`}},
		{input: "=restaurant", wantErr: true},
		{input: "   ", wantErr: true},
		{input: "amenity=bar\x00", wantErr: true},
		{input: "ame\x1bnity", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWhitelistEntry(tt.input)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWhitelist(t *testing.T) {
	wl, err := ParseWhitelist([]string{"amenity", "shop=bakery"})
	require.NoError(t, err)
	assert.Equal(t, Whitelist{{Key: "amenity"}, {Key: "shop", Value: "bakery"}}, wl)

	_, err = ParseWhitelist([]string{"amenity", "=x"})
	assert.Error(t, err)

	wl, err = ParseWhitelist(nil)
	require.NoError(t, err)
	assert.Empty(t, wl)
}

func TestWhitelistMatches(t *testing.T) {
	wl := Whitelist{{Key: "amenity"}, {Key: "shop", Value: "bakery"}}

	tests := []struct {
		name string
		wl   Whitelist
		tags map[string]string
		want bool
	}{
		{name: "pinned value matches", wl: wl, tags: map[string]string{"shop": "bakery"}, want: true},
		{name: "pinned value differs", wl: wl, tags: map[string]string{"shop": "butcher"}, want: false},
		{name: "wildcard key", wl: wl, tags: map[string]string{"amenity": "anything"}, want: true},
		{name: "wildcard key with empty value", wl: wl, tags: map[string]string{"amenity": ""}, want: true},
		{name: "case sensitive", wl: wl, tags: map[string]string{"shop": "Bakery"}, want: false},
		{name: "no tags", wl: wl, tags: nil, want: false},
		{name: "empty whitelist accepts untagged", wl: nil, tags: nil, want: true},
		{name: "empty whitelist accepts anything", wl: Whitelist{}, tags: map[string]string{"x": "y"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.wl.Matches(tt.tags))
		})
	}
}

func TestNewCoordinateInput(t *testing.T) {
	in, err := NewCoordinateInput(48.137154, 11.576124)
	require.NoError(t, err)
	assert.Equal(t, spatial.Point{Lat: 48.137154, Lon: 11.576124}, in.Point)

	_, err = NewCoordinateInput(91, 0)
	assert.ErrorIs(t, err, spatial.ErrOutOfBounds)
}

func TestNewQueryInput(t *testing.T) {
	addr := "Brandenburger Tor"
	blank := "  "
	lat, lon := 52.5163, 13.3777
	badLat := 91.0

	tests := []struct {
		name    string
		address *string
		lat     *float64
		lon     *float64
		want    QueryInput
		wantErr error
	}{
		{name: "address", address: &addr, want: AddressInput{Address: addr}},
		{name: "coordinates", lat: &lat, lon: &lon, want: CoordinateInput{Point: spatial.Point{Lat: lat, Lon: lon}}},
		{name: "neither", wantErr: ErrLocationRequired},
		{name: "both", address: &addr, lat: &lat, lon: &lon, wantErr: ErrLocationAmbiguous},
		{name: "address and lat", address: &addr, lat: &lat, wantErr: ErrLocationAmbiguous},
		{name: "out of bounds", lat: &badLat, lon: &lon, wantErr: spatial.ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewQueryInput(tt.address, tt.lat, tt.lon)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	empty := ""

	_, err := NewQueryInput(&empty, nil, nil)
	assert.Error(t, err)

	got, err := NewQueryInput(&blank, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, AddressInput{Address: blank}, got)

	_, err = NewQueryInput(nil, &lat, nil)
	assert.Error(t, err)
}

func TestQueryInputJSON(t *testing.T) {
	tests := []struct {
		name  string
		input QueryInput
		want  string
	}{
		{
			name:  "address",
			input: AddressInput{Address: "Marienplatz, München"},
			want:  `{"address":"Marienplatz, München","lat":null,"lon":null}`,
		},
		{
			name:  "coordinates",
			input: CoordinateInput{Point: spatial.Point{Lat: 48.1, Lon: 11.5}},
			want:  `{"address":null,"lat":48.1,"lon":11.5}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.input)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			back, err := UnmarshalQueryInput(b)
			require.NoError(t, err)
			assert.Equal(t, tt.input, back)
		})
	}
}

func TestUnmarshalQueryInputRejectsAmbiguous(t *testing.T) {
	for _, s := range []string{
		`{"address":"x","lat":1,"lon":2}`,
		`{"address":null,"lat":null,"lon":null}`,
		`{"lat":1}`,
	} {
		_, err := UnmarshalQueryInput([]byte(s))
		assert.Error(t, err, s)
	}
}

func TestResultDocumentJSON(t *testing.T) {
	name := "Café"
	doc := &ResultDocument{
		SchemaVersion: SchemaVersion,
		Source:        DefaultSource(),
		Query: QueryEcho{
			Input:          AddressInput{Address: "Berlin"},
			ResolvedCenter: spatial.Point{Lat: 52.5, Lon: 13.4},
			RadiusM:        500,
			TimestampUTC:   Timestamp(time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC)),
		},
		Results: Results{
			Count: 2,
			Pois: []Poi{
				{Lat: 52.51, Lon: 13.41, Name: &name, Tags: map[string]string{"name": "Café", "amenity": "cafe"}},
				{Lat: 52.52, Lon: 13.42, Tags: map[string]string{}},
			},
		},
	}

	b, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"schema_version": 1,
		"source": {
			"provider": "OpenStreetMap",
			"geocoder": "Nominatim",
			"overpass_endpoint": "https://overpass-api.de/api/interpreter"
		},
		"query": {
			"input": {"address": "Berlin", "lat": null, "lon": null},
			"resolved_center": {"lat": 52.5, "lon": 13.4},
			"radius_m": 500,
			"whitelist": [],
			"timestamp_utc": "2026-02-15T10:30:00Z"
		},
		"results": {
			"count": 2,
			"pois": [
				{"lat": 52.51, "lon": 13.41, "name": "Café", "tags": {"name": "Café", "amenity": "cafe"}},
				{"lat": 52.52, "lon": 13.42, "name": null, "tags": {}}
			]
		}
	}`, string(b))

	var back ResultDocument
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, AddressInput{Address: "Berlin"}, back.Query.Input)
	assert.Equal(t, time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC), time.Time(back.Query.TimestampUTC))
	assert.Equal(t, 2, back.Results.Count)
}

func TestErrorDocument(t *testing.T) {
	b, err := json.Marshal(NewErrorDocument(newError(KindGeocodingNotFound, "no geocoding result for address", nil)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema_version":1,"error":"no geocoding result for address"}`, string(b))
}
