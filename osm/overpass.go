// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package osm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Zheng-Bote/get-poi-osm/utils/htmlutils"
)

// AreaSearcher runs an Overpass QL query and returns its elements.
type AreaSearcher interface {
	Search(ctx context.Context, query string) ([]RawElement, error)
	Endpoint() string
}

// OverpassClient posts queries to a single interpreter endpoint.
type OverpassClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewOverpassClient creates a client for endpoint, DefaultOverpassURL when empty.
func NewOverpassClient(endpoint string, httpClient *http.Client) *OverpassClient {
	if endpoint == "" {
		endpoint = DefaultOverpassURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OverpassClient{endpoint: endpoint, httpClient: httpClient}
}

// Endpoint returns the interpreter URL queries are sent to.
func (c *OverpassClient) Endpoint() string {
	return c.endpoint
}

// Search sends query as the `data` form field.
func (c *OverpassClient) Search(ctx context.Context, query string) ([]RawElement, error) {
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, newError(KindTransport, "building overpass request", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindTransport, "overpass request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, ClassifyHTTPStatus("overpass", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransport, "reading overpass response", err)
	}

	return parseOverpassResponse(body, resp.Header.Get("Content-Type"))
}

func parseOverpassResponse(body []byte, contentType string) ([]RawElement, error) {
	var doc map[string]json.RawMessage

	parseErr := json.Unmarshal(body, &doc)

	elements, hasElements := doc["elements"]
	if parseErr == nil && doc != nil && hasElements {
		return decodeElements(elements)
	}

	if remark, ok := doc["remark"]; ok && parseErr == nil {
		var msg string
		if err := json.Unmarshal(remark, &msg); err != nil {
			msg = string(remark)
		}

		return nil, newError(KindUpstreamApplication, "overpass API error: "+msg, nil)
	}

	if htmlutils.LooksLikeHTML(body) {
		msg := "overpass API returned HTML error (server might be busy)"
		if summary, err := htmlutils.Summary(body, contentType); err == nil && summary != "" {
			msg += ": " + summary
		}

		return nil, newError(KindUpstreamOverloaded, msg, nil)
	}

	if parseErr != nil && json.Valid(body) {
		// well-formed JSON that is not an object
		return nil, newError(KindUpstreamMalformed, "invalid overpass JSON response: not an object", nil)
	}

	if parseErr != nil {
		return nil, newError(KindParse, "JSON parse error", parseErr)
	}

	return nil, newError(KindUpstreamMalformed, "invalid overpass JSON response: missing elements", nil)
}

func decodeElements(data json.RawMessage) ([]RawElement, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, newError(KindUpstreamMalformed, "invalid overpass JSON response: elements is null", nil)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, newError(KindUpstreamMalformed, "invalid overpass JSON response: elements is not an array", err)
	}

	out := make([]RawElement, 0, len(items))
	for _, item := range items {
		out = append(out, decodeElement(item))
	}

	return out, nil
}

// decodeElement never fails: every malformed field is left at its zero value.
func decodeElement(data json.RawMessage) RawElement {
	var fields map[string]json.RawMessage

	var e RawElement
	if err := json.Unmarshal(data, &fields); err != nil {
		return e
	}

	_ = json.Unmarshal(fields["type"], &e.Type)
	_ = json.Unmarshal(fields["lat"], &e.Lat)
	_ = json.Unmarshal(fields["lon"], &e.Lon)

	var tags map[string]json.RawMessage
	if err := json.Unmarshal(fields["tags"], &tags); err == nil && tags != nil {
		e.Tags = make(map[string]string, len(tags))

		for k, raw := range tags {
			var v string
			if err := json.Unmarshal(raw, &v); err == nil {
				e.Tags[k] = v
			}
		}
	}

	return e
}
