// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package osm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies the failures of a query run. Every kind is terminal.
type ErrorKind int

const (
	// KindUnknown is reported for errors not produced by this package.
	KindUnknown ErrorKind = iota
	// KindTransport network or transport failure.
	KindTransport
	// KindUpstreamHTTP non-success status from a service.
	KindUpstreamHTTP
	// KindGeocodingNotFound the geocoder returned no candidates.
	KindGeocodingNotFound
	// KindGeocodingInvalidResponse the geocoder answer has an unexpected shape.
	KindGeocodingInvalidResponse
	// KindGeocodingInvalidCoordinates the geocoder answered the (0,0) placeholder.
	KindGeocodingInvalidCoordinates
	// KindUpstreamApplication the area-search service reported a remark.
	KindUpstreamApplication
	// KindUpstreamOverloaded the area-search service answered with a markup page.
	KindUpstreamOverloaded
	// KindUpstreamMalformed the area-search answer has an unexpected shape.
	KindUpstreamMalformed
	// KindParse malformed JSON from either service.
	KindParse
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                     "unknown",
	KindTransport:                   "transport",
	KindUpstreamHTTP:                "upstream_http",
	KindGeocodingNotFound:           "geocoding_not_found",
	KindGeocodingInvalidResponse:    "geocoding_invalid_response",
	KindGeocodingInvalidCoordinates: "geocoding_invalid_coordinates",
	KindUpstreamApplication:         "upstream_application",
	KindUpstreamOverloaded:          "upstream_overloaded",
	KindUpstreamMalformed:           "upstream_malformed",
	KindParse:                       "parse",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error type returned by every fallible step of the pipeline.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // only for KindUpstreamHTTP
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var osmErr *Error
	if errors.As(err, &osmErr) {
		return osmErr.Kind
	}

	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// ClassifyHTTPStatus builds the error for a non-success answer of service.
func ClassifyHTTPStatus(service string, statusCode int) *Error {
	msg := fmt.Sprintf("%s returned HTTP status %d", service, statusCode)

	switch statusCode {
	case http.StatusTooManyRequests:
		msg += " (rate limited)"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		msg += " (service unavailable)"
	}

	return &Error{Kind: KindUpstreamHTTP, Message: msg, StatusCode: statusCode}
}
