// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Zheng-Bote/get-poi-osm/osm"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// locationFlags are the flags shared by every command taking a query.
type locationFlags struct {
	lat       float64
	lon       float64
	address   string
	radius    int
	whitelist []string
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "Latitude of the search center")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "Longitude of the search center")
	cmd.Flags().StringVar(&f.address, "address", "", "Free-text address to geocode as the search center")
	cmd.Flags().IntVar(&f.radius, "radius", 100000, "Search radius in meters")
	cmd.Flags().StringArrayVarP(&f.whitelist, "whitelist", "w", nil, "Tag filter `key[=value]`, repeatable; any entry may match")
}

// query builds the input, whitelist and radius from the flags of cmd.
func (f *locationFlags) query(cmd *cobra.Command) (osm.QueryInput, osm.Whitelist, error) {
	var (
		address  *string
		lat, lon *float64
	)

	if cmd.Flags().Changed("address") {
		address = &f.address
	}

	if cmd.Flags().Changed("lat") {
		lat = &f.lat
	}

	if cmd.Flags().Changed("lon") {
		lon = &f.lon
	}

	input, err := osm.NewQueryInput(address, lat, lon)
	if err != nil {
		return nil, nil, err
	}

	wl, err := osm.ParseWhitelist(f.whitelist)
	if err != nil {
		return nil, nil, err
	}

	return input, wl, nil
}

var queryFlags = &locationFlags{}

var (
	storeRun bool
	quiet    bool
)

var queryCmd = &cobra.Command{
	Use:   "query (--lat X --lon Y | --address A) [--radius M] [-w key[=value]]...",
	Short: "Print the points of interest around a place as JSON",
	Long: `Resolves the search center, runs one Overpass area search over the nodes
within the radius and prints the normalized result document on stdout.

On failure an error document is printed instead and the exit status is 1.

Examples:
  getpoi query --address "Brandenburger Tor, Berlin" --radius 500 -w amenity=cafe
  getpoi query --lat 48.8584 --lon 2.2945 -w tourism -w amenity=restaurant`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, wl, err := queryFlags.query(cmd)
		if err != nil {
			return err
		}

		if err := clientOptions.Validate(); err != nil {
			return err
		}

		client := newClient()

		bar := newSpinner(os.Stderr)
		if bar != nil {
			client.Progress = func(stage string) {
				bar.Describe(stage)
				_ = bar.Add(1)
			}
		}

		doc, err := client.Execute(context.Background(), input, queryFlags.radius, wl)

		if bar != nil {
			_ = bar.Clear()
		}

		if err != nil {
			// the document is the output contract, usage does not apply
			_ = printJSON(os.Stdout, osm.NewErrorDocument(err))
			os.Exit(1)
		}

		if storeRun {
			if err := archive(doc); err != nil {
				log.Printf("Archiving run failed - %s", err)
			}
		}

		return printJSON(os.Stdout, doc)
	},
}

func newSpinner(w *os.File) *progressbar.ProgressBar {
	if quiet || !isatty.IsTerminal(w.Fd()) {
		return nil
	}

	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryFlags.register(queryCmd)
	queryCmd.Flags().BoolVar(&clientOptions.AnnotateDistance, "annotate-distance", false, "Add distance_m, the distance to the center, to every POI")
	queryCmd.Flags().IntVar(&clientOptions.AnnotateH3Resolution, "annotate-h3", 0, "Add h3_cell at the given H3 resolution (1-15, 0 disables) to every POI")
	queryCmd.Flags().BoolVar(&storeRun, "store", false, "Archive the result in the run history")
	queryCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show progress on stderr")
	queryCmd.MarkFlagsMutuallyExclusive("address", "lat")
	queryCmd.MarkFlagsMutuallyExclusive("address", "lon")
	queryCmd.MarkFlagsRequiredTogether("lat", "lon")
}
