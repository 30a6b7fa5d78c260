// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

// Package utils holds small formatting helpers for human readable output.
package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatInt formats n with thousands separators.
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatMeters renders a distance, switching to kilometers from 1000 m on.
func FormatMeters(m int) string {
	if m >= 1000 || m <= -1000 {
		return printer.Sprintf("%.1f km", float64(m)/1000)
	}

	return printer.Sprintf("%d m", m)
}
