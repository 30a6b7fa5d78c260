// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Zheng-Bote/get-poi-osm/spatial"
)

// Locator resolves a free-text address into coordinates.
type Locator interface {
	Resolve(ctx context.Context, address string) (spatial.Point, error)
}

// NominatimLocator uses the Nominatim search API.
type NominatimLocator struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimLocator creates a locator against baseURL, DefaultNominatimURL when empty.
func NewNominatimLocator(baseURL string, httpClient *http.Client) *NominatimLocator {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &NominatimLocator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Resolve asks for the single best match of address. A (0,0) answer is
// rejected as a placeholder.
func (l *NominatimLocator) Resolve(ctx context.Context, address string) (spatial.Point, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	reqURL := l.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return spatial.Point{}, newError(KindTransport, "building geocoding request", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return spatial.Point{}, newError(KindTransport, "geocoding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return spatial.Point{}, ClassifyHTTPStatus("nominatim", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return spatial.Point{}, newError(KindTransport, "reading geocoding response", err)
	}

	return parseGeocodingResponse(body)
}

func parseGeocodingResponse(body []byte) (spatial.Point, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return spatial.Point{}, newError(KindParse, "JSON parse error", err)
	}

	candidates, ok := doc.([]any)
	if !ok {
		return spatial.Point{}, newError(KindGeocodingInvalidResponse, "invalid geocoding response: not an array", nil)
	}

	if len(candidates) == 0 {
		return spatial.Point{}, newError(KindGeocodingNotFound, "no geocoding result for address", nil)
	}

	first, ok := candidates[0].(map[string]any)
	if !ok {
		return spatial.Point{}, newError(KindGeocodingInvalidResponse, "invalid geocoding response: candidate is not an object", nil)
	}

	lat, err := coordinate(first, "lat")
	if err != nil {
		return spatial.Point{}, err
	}

	lon, err := coordinate(first, "lon")
	if err != nil {
		return spatial.Point{}, err
	}

	p := spatial.Point{Lat: lat, Lon: lon}
	if p.IsZero() {
		return spatial.Point{}, newError(KindGeocodingInvalidCoordinates, "invalid coordinates in geocoding response", nil)
	}

	if err := p.Validate(); err != nil {
		return spatial.Point{}, newError(KindGeocodingInvalidCoordinates, "invalid coordinates in geocoding response", err)
	}

	return p, nil
}

// coordinate reads a decimal-string field; Nominatim never sends numbers
// but they are accepted. A missing field reads as zero.
func coordinate(obj map[string]any, field string) (float64, error) {
	switch v := obj[field].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, newError(KindGeocodingInvalidResponse, fmt.Sprintf("error parsing coordinates: %s", field), err)
		}

		return f, nil
	default:
		return 0, newError(KindGeocodingInvalidResponse, fmt.Sprintf("error parsing coordinates: %s is a %T", field, v), nil)
	}
}
