// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package osm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "direct",
			err:  newError(KindGeocodingNotFound, "no geocoding result for address", nil),
			want: KindGeocodingNotFound,
		},
		{
			name: "wrapped",
			err:  fmt.Errorf("resolving address: %w", newError(KindParse, "JSON parse error", errors.New("boom"))),
			want: KindParse,
		},
		{
			name: "foreign error",
			err:  errors.New("some other error"),
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	if IsKind(nil, KindUnknown) {
		t.Error("IsKind(nil) should be false")
	}

	err := fmt.Errorf("wrapped: %w", ClassifyHTTPStatus("overpass", http.StatusGatewayTimeout))
	if !IsKind(err, KindUpstreamHTTP) {
		t.Errorf("expected KindUpstreamHTTP, got %v", KindOf(err))
	}
}

func TestErrorMessage(t *testing.T) {
	inner := errors.New("connection refused")
	err := newError(KindTransport, "nominatim request failed", inner)

	if got, want := err.Error(), "nominatim request failed: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to expose the transport error")
	}
}

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusTooManyRequests, "overpass returned HTTP status 429 (rate limited)"},
		{http.StatusGatewayTimeout, "overpass returned HTTP status 504 (service unavailable)"},
		{http.StatusNotFound, "overpass returned HTTP status 404"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := ClassifyHTTPStatus("overpass", tt.status)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}

			if err.StatusCode != tt.status || err.Kind != KindUpstreamHTTP {
				t.Errorf("unexpected classification %+v", err)
			}
		})
	}
}

func TestErrorKindString(t *testing.T) {
	if got := KindUpstreamOverloaded.String(); got != "upstream_overloaded" {
		t.Errorf("String() = %q", got)
	}

	if got := ErrorKind(99).String(); got != "ErrorKind(99)" {
		t.Errorf("String() = %q", got)
	}
}
