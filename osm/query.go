// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package osm

import (
	"fmt"
	"strings"

	"github.com/Zheng-Bote/get-poi-osm/spatial"
)

// ServerTimeoutSeconds bounds the server-side processing of a query.
const ServerTimeoutSeconds = 25

var qlStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func quoteQL(s string) string {
	return `"` + qlStringEscaper.Replace(s) + `"`
}

// BuildQuery returns the Overpass QL query selecting the nodes within
// radiusMeters of center. Each whitelist entry becomes its own clause and
// Overpass returns the union of all of them.
func BuildQuery(center spatial.Point, radiusMeters int, wl Whitelist) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[out:json][timeout:%d];(", ServerTimeoutSeconds)

	around := fmt.Sprintf("around:%d,%.6f,%.6f", radiusMeters, center.Lat, center.Lon)

	if len(wl) == 0 {
		fmt.Fprintf(&sb, "node(%s);", around)
	}

	for _, w := range wl {
		if w.Value == "" {
			fmt.Fprintf(&sb, "node(%s)[%s];", around, quoteQL(w.Key))
		} else {
			fmt.Fprintf(&sb, "node(%s)[%s=%s];", around, quoteQL(w.Key), quoteQL(w.Value))
		}
	}

	sb.WriteString(");out center;")

	return sb.String()
}
