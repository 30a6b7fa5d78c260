// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{1, "1"},
		{123, "123"},
		{1234, "1,234"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-1, "-1"},
		{-1234, "-1,234"},
		{-1234567, "-1,234,567"},
	}

	for _, tc := range tests {
		t.Run(strconv.FormatInt(tc.input, 10), func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInt(tc.input))
		})
	}
}

func TestFormatMeters(t *testing.T) {
	assert.Equal(t, "0 m", FormatMeters(0))
	assert.Equal(t, "999 m", FormatMeters(999))
	assert.Equal(t, "1.0 km", FormatMeters(1000))
	assert.Equal(t, "100.0 km", FormatMeters(100000))
	assert.Equal(t, "1,500.0 km", FormatMeters(1500000))
}
