// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"

	"github.com/Zheng-Bote/get-poi-osm/osm"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugFlags = &locationFlags{}

var debugOverpassQLCmd = &cobra.Command{
	Use:   "overpass-ql (--lat X --lon Y | --address A) [--radius M] [-w key[=value]]...",
	Short: "Print the Overpass QL a query would send, without sending it",
	Long: `Prints the Overpass QL text for the given center, radius and whitelist.
An address is still geocoded, the area search is skipped.

$ getpoi debug overpass-ql --lat 48.8584 --lon 2.2945 --radius 200 -w amenity=cafe
[out:json][timeout:25];(node(around:200,48.858400,2.294500)["amenity"="cafe"];);out center;`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, wl, err := debugFlags.query(cmd)
		if err != nil {
			return err
		}

		center, err := newClient().Center(context.Background(), input)
		if err != nil {
			return err
		}

		fmt.Println(osm.BuildQuery(center, debugFlags.radius, wl))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugOverpassQLCmd)
	debugFlags.register(debugOverpassQLCmd)
}
