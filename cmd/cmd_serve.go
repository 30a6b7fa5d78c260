// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/Zheng-Bote/get-poi-osm/server"
	"github.com/Zheng-Bote/get-poi-osm/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve queries over HTTP",
	Long: `Starts an HTTP server answering

  GET /api/pois?address=A | lat=X&lon=Y [&radius=M] [&w=key[=value]]...
  GET /api/overpass-ql  (same parameters, returns the query text)

With --store every successful answer is archived and the history is served on

  GET /api/runs[?limit=N | ?lat=X&lon=Y]
  GET /api/runs/:id`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		var runs store.RunRepository

		if serveStore {
			db, repo, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			runs = repo
		}

		fmt.Printf("📍 Listening on http://%s\n", serveAddr)

		return server.NewServer(newClient(), runs).Run(serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Address to listen on")
	serveCmd.Flags().BoolVar(&serveStore, "store", false, "Archive answers and serve the run history")
}
