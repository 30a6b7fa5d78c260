// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

// Package osm resolves a location, queries OpenStreetMap for the points of
// interest around it and normalizes the answer into a ResultDocument.
package osm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Zheng-Bote/get-poi-osm/spatial"
)

// SchemaVersion is the version of the produced document layout.
const SchemaVersion = 1

// Default upstream endpoints.
const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultOverpassURL  = "https://overpass-api.de/api/interpreter"
)

// WhitelistEntry admits tagged features: Key must be present and, unless
// Value is empty, hold exactly Value.
type WhitelistEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewWhitelistEntry validates key and value. Control characters other than
// newline, tab and carriage return are rejected; those three and quotes are
// escaped by BuildQuery.
func NewWhitelistEntry(key, value string) (WhitelistEntry, error) {
	if key == "" {
		return WhitelistEntry{}, errors.New("whitelist entry: empty key")
	}

	for _, s := range []string{key, value} {
		for _, r := range s {
			if isForbiddenRune(r) {
				return WhitelistEntry{}, fmt.Errorf("whitelist entry %q: invalid character %U", s, r)
			}
		}
	}

	return WhitelistEntry{Key: key, Value: value}, nil
}

func isForbiddenRune(r rune) bool {
	switch r {
	case '\n', '\t', '\r':
		return false
	}

	return unicode.IsControl(r)
}

// ParseWhitelistEntry parses `key` or `key=value`, trimming blanks around both parts.
func ParseWhitelistEntry(s string) (WhitelistEntry, error) {
	key, value, _ := strings.Cut(s, "=")

	return NewWhitelistEntry(strings.TrimSpace(key), strings.TrimSpace(value))
}

// ParseWhitelist parses every entry with ParseWhitelistEntry.
func ParseWhitelist(raw []string) (Whitelist, error) {
	wl := make(Whitelist, 0, len(raw))

	for _, s := range raw {
		e, err := ParseWhitelistEntry(s)
		if err != nil {
			return nil, err
		}

		wl = append(wl, e)
	}

	return wl, nil
}

// Whitelist is an ordered set of entries, combined with OR semantics.
type Whitelist []WhitelistEntry

// Matches reports whether tags satisfy at least one entry. An empty
// whitelist matches everything.
func (wl Whitelist) Matches(tags map[string]string) bool {
	if len(wl) == 0 {
		return true
	}

	for _, w := range wl {
		if v, ok := tags[w.Key]; ok && (w.Value == "" || v == w.Value) {
			return true
		}
	}

	return false
}

// MarshalJSON keeps an empty whitelist as [] in the document.
func (wl Whitelist) MarshalJSON() ([]byte, error) {
	if wl == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]WhitelistEntry(wl))
}

// QueryInput is what the user asked for: either an AddressInput or a
// CoordinateInput.
type QueryInput interface {
	json.Marshaler
	isQueryInput()
}

// AddressInput asks for the POIs around a free-text address.
type AddressInput struct {
	Address string
}

// CoordinateInput asks for the POIs around a point.
type CoordinateInput struct {
	Point spatial.Point
}

// NewCoordinateInput validates the coordinates.
func NewCoordinateInput(lat, lon float64) (CoordinateInput, error) {
	p := spatial.Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return CoordinateInput{}, err
	}

	return CoordinateInput{Point: p}, nil
}

// Errors reported by NewQueryInput.
var (
	ErrLocationRequired  = errors.New("either an address or both lat and lon are required")
	ErrLocationAmbiguous = errors.New("address and lat/lon are mutually exclusive")
)

// NewQueryInput picks the input form from optional caller parameters. Exactly
// one of address or the lat/lon pair must be given. A non-empty address is
// passed on as is, the geocoder decides whether it means anything.
func NewQueryInput(address *string, lat, lon *float64) (QueryInput, error) {
	hasPoint := lat != nil || lon != nil

	switch {
	case address != nil && hasPoint:
		return nil, ErrLocationAmbiguous
	case address != nil:
		if *address == "" {
			return nil, errors.New("address is empty")
		}

		return AddressInput{Address: *address}, nil
	case lat != nil && lon != nil:
		return NewCoordinateInput(*lat, *lon)
	case hasPoint:
		return nil, errors.New("both lat and lon are required")
	default:
		return nil, ErrLocationRequired
	}
}

func (AddressInput) isQueryInput()    {}
func (CoordinateInput) isQueryInput() {}

type inputJSON struct {
	Address *string  `json:"address"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// MarshalJSON emits {"address": "...", "lat": null, "lon": null}.
func (in AddressInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(inputJSON{Address: &in.Address})
}

// MarshalJSON emits {"address": null, "lat": ..., "lon": ...}.
func (in CoordinateInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(inputJSON{Lat: &in.Point.Lat, Lon: &in.Point.Lon})
}

// UnmarshalQueryInput decodes the echoed input block of a stored document.
func UnmarshalQueryInput(data []byte) (QueryInput, error) {
	var in inputJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	switch {
	case in.Address != nil && in.Lat == nil && in.Lon == nil:
		return AddressInput{Address: *in.Address}, nil
	case in.Address == nil && in.Lat != nil && in.Lon != nil:
		return CoordinateInput{Point: spatial.Point{Lat: *in.Lat, Lon: *in.Lon}}, nil
	default:
		return nil, fmt.Errorf("query input must hold either an address or lat/lon: %s", data)
	}
}

// RawElement is an Overpass element as received, already decoded leniently.
type RawElement struct {
	Type string
	Lat  float64
	Lon  float64
	Tags map[string]string
}

// Poi is a normalized point of interest.
type Poi struct {
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Name *string           `json:"name"`
	Tags map[string]string `json:"tags"`

	DistanceM *float64 `json:"distance_m,omitempty"`
	H3Cell    string   `json:"h3_cell,omitempty"`
}

// Source names the upstream services.
type Source struct {
	Provider         string `json:"provider"`
	Geocoder         string `json:"geocoder"`
	OverpassEndpoint string `json:"overpass_endpoint"`
}

// DefaultSource is the provenance block for the public endpoints.
func DefaultSource() Source {
	return Source{
		Provider:         "OpenStreetMap",
		Geocoder:         "Nominatim",
		OverpassEndpoint: DefaultOverpassURL,
	}
}

// Timestamp marshals as an ISO-8601 UTC instant with second precision.
type Timestamp time.Time

const timestampLayout = "2006-01-02T15:04:05Z"

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(timestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := time.Parse(timestampLayout, s)
	if err != nil {
		return err
	}

	*t = Timestamp(parsed)

	return nil
}

// QueryEcho repeats what was asked and what was actually queried.
type QueryEcho struct {
	Input          QueryInput    `json:"input"`
	ResolvedCenter spatial.Point `json:"resolved_center"`
	RadiusM        int           `json:"radius_m"`
	Whitelist      Whitelist     `json:"whitelist"`
	TimestampUTC   Timestamp     `json:"timestamp_utc"`
}

// UnmarshalJSON resolves the input union.
func (q *QueryEcho) UnmarshalJSON(data []byte) error {
	type echo QueryEcho

	var aux struct {
		echo
		Input json.RawMessage `json:"input"`
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	input, err := UnmarshalQueryInput(aux.Input)
	if err != nil {
		return err
	}

	*q = QueryEcho(aux.echo)
	q.Input = input

	return nil
}

// Results holds the accepted POIs; Count always equals len(Pois).
type Results struct {
	Count int   `json:"count"`
	Pois  []Poi `json:"pois"`
}

// ResultDocument is the root of a successful run.
type ResultDocument struct {
	SchemaVersion int       `json:"schema_version"`
	Source        Source    `json:"source"`
	Query         QueryEcho `json:"query"`
	Results       Results   `json:"results"`
}

// ErrorDocument is emitted instead of a ResultDocument on failure.
type ErrorDocument struct {
	SchemaVersion int    `json:"schema_version"`
	Error         string `json:"error"`
}

// NewErrorDocument wraps err's message.
func NewErrorDocument(err error) ErrorDocument {
	return ErrorDocument{SchemaVersion: SchemaVersion, Error: err.Error()}
}
