// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Zheng-Bote/get-poi-osm/spatial"
	"github.com/Zheng-Bote/get-poi-osm/utils/httputils"
)

// ClientOptions configuration for Client.
type ClientOptions struct {
	// NominatimURL is the base URL of the geocoding service
	NominatimURL string

	// OverpassURL is the interpreter endpoint of the area-search service
	OverpassURL string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Timeout of each HTTP round trip, zero leaves it to the transport
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// TraceWriter receives the HTTP traces
	TraceWriter io.Writer

	// AnnotateDistance adds distance_m to every POI
	AnnotateDistance bool

	// AnnotateH3Resolution adds h3_cell to every POI when positive
	AnnotateH3Resolution int
}

// Validate rejects options that would only fail after the network calls.
func (o ClientOptions) Validate() error {
	if o.AnnotateH3Resolution == 0 {
		return nil
	}

	if o.AnnotateH3Resolution < 0 {
		return fmt.Errorf("annotate h3 resolution: %w: %d not in [1, 15]", spatial.ErrInvalidResolution, o.AnnotateH3Resolution)
	}

	if err := spatial.ValidateResolution(o.AnnotateH3Resolution); err != nil {
		return fmt.Errorf("annotate h3 resolution: %w", err)
	}

	return nil
}

// Stage names reported to Client.Progress.
const (
	StageGeocoding = "geocoding"
	StageSearching = "searching"
	StageDone      = "done"
)

// Client runs a whole query: geocode if needed, search, normalize.
type Client struct {
	locator  Locator
	searcher AreaSearcher
	options  ClientOptions
	now      func() time.Time

	// Progress, when set, is told about every stage transition.
	Progress func(stage string)
}

// NewClient wires the Nominatim locator and the Overpass searcher through a
// shared HTTP client.
func NewClient(options ClientOptions) *Client {
	var traceWriter io.Writer
	if options.EnableHTTPTrace || options.EnableHTTPBodyTrace {
		traceWriter = options.TraceWriter
		if traceWriter == nil {
			traceWriter = log.Writer()
		}
	}

	userAgent := "get-poi-osm/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	httpClient := httputils.NewClient(httputils.ClientOptions{
		UserAgent:   userAgent,
		Referer:     "https://github.com/Zheng-Bote/get-poi-osm",
		Timeout:     options.Timeout,
		TraceWriter: traceWriter,
		TraceBody:   options.EnableHTTPBodyTrace,
	})

	return NewClientWith(
		NewNominatimLocator(options.NominatimURL, httpClient),
		NewOverpassClient(options.OverpassURL, httpClient),
		options,
	)
}

// NewClientWith builds a Client on arbitrary collaborators.
func NewClientWith(locator Locator, searcher AreaSearcher, options ClientOptions) *Client {
	return &Client{
		locator:  locator,
		searcher: searcher,
		options:  options,
		now:      time.Now,
	}
}

func (c *Client) stage(name string) {
	if c.Progress != nil {
		c.Progress(name)
	}
}

// Center returns the point a query for input is centered on, geocoding
// addresses.
func (c *Client) Center(ctx context.Context, input QueryInput) (spatial.Point, error) {
	switch in := input.(type) {
	case CoordinateInput:
		return in.Point, nil
	case AddressInput:
		c.stage(StageGeocoding)

		center, err := c.locator.Resolve(ctx, in.Address)
		if err != nil {
			return spatial.Point{}, err
		}

		log.Printf("Resolved %q to %s", in.Address, center)

		return center, nil
	default:
		return spatial.Point{}, fmt.Errorf("unsupported query input %T", input)
	}
}

// Execute resolves input, performs exactly one area search and returns the
// normalized document. The first failure is returned unwrapped so callers
// see the upstream message verbatim.
func (c *Client) Execute(ctx context.Context, input QueryInput, radiusMeters int, wl Whitelist) (*ResultDocument, error) {
	if err := c.options.Validate(); err != nil {
		return nil, err
	}

	center, err := c.Center(ctx, input)
	if err != nil {
		return nil, err
	}

	query := BuildQuery(center, radiusMeters, wl)

	c.stage(StageSearching)

	raw, err := c.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	source := DefaultSource()
	source.OverpassEndpoint = c.searcher.Endpoint()

	doc := assemble(source, raw, center, radiusMeters, wl, input, c.now())

	if c.options.AnnotateDistance || c.options.AnnotateH3Resolution > 0 {
		if err := Annotate(doc, c.options.AnnotateDistance, c.options.AnnotateH3Resolution); err != nil {
			return nil, fmt.Errorf("annotating POIs: %w", err)
		}
	}

	c.stage(StageDone)

	log.Printf("Accepted %d of %d elements", doc.Results.Count, len(raw))

	return doc, nil
}
