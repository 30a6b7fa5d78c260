// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/Zheng-Bote/get-poi-osm/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
