// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Zheng-Bote/get-poi-osm/osm"
	"github.com/Zheng-Bote/get-poi-osm/spatial"
	"github.com/Zheng-Bote/get-poi-osm/store"
	"github.com/Zheng-Bote/get-poi-osm/utils"
	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
)

const dbFile = "getpoi.duckdb"

func openStore() (*sql.DB, store.RunRepository, error) {
	if err := os.MkdirAll(dbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dbPath, dbFile))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := store.NewRunRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, err
	}

	return db, repo, nil
}

func archive(doc *osm.ResultDocument) error {
	db, repo, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := repo.SaveRun(doc)
	if err != nil {
		return err
	}

	log.Printf("Archived run %d", id)

	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect archived runs",
}

var (
	historyLimit int
	historyNear  []float64
)

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		var runs []*store.Run

		switch len(historyNear) {
		case 0:
			runs, err = repo.ListRuns(historyLimit)
		case 2:
			p := spatial.Point{Lat: historyNear[0], Lon: historyNear[1]}
			if err := p.Validate(); err != nil {
				return err
			}

			runs, err = repo.ListRunsNear(p)
		default:
			return errors.New("--near takes exactly two values: lat,lon")
		}

		if err != nil {
			return err
		}

		printRuns(os.Stdout, runs)

		return nil
	},
}

func printRuns(w io.Writer, runs []*store.Run) {
	a, b, c, d, e := strings.Repeat("─", 6), strings.Repeat("─", 19), strings.Repeat("─", 40), strings.Repeat("─", 10), strings.Repeat("─", 6)
	fmt.Fprintf(w, "╭─%6s─┬─%-19s─┬─%-40s─┬─%10s─┬─%6s─╮\n", a, b, c, d, e)
	fmt.Fprintf(w, "│ %6s │ %-19s │ %-40s │ %10s │ %6s │\n", "Id", "Executed (UTC)", "Location", "Radius", "POIs")
	fmt.Fprintf(w, "├─%6s─┼─%-19s─┼─%-40s─┼─%10s─┼─%6s─┤\n", a, b, c, d, e)

	for _, run := range runs {
		fmt.Fprintf(w, "│ %6d │ %-19s │ %-40s │ %10s │ %6s │\n",
			run.ID,
			run.ExecutedAt.Format("2006-01-02 15:04:05"),
			location(run, 40),
			utils.FormatMeters(run.RadiusM),
			utils.FormatInt(int64(run.PoiCount)),
		)
	}

	fmt.Fprintf(w, "╰─%6s─┴─%-19s─┴─%-40s─┴─%10s─┴─%6s─╯\n", a, b, c, d, e)
}

func location(run *store.Run, width int) string {
	s := run.Center.String()
	if run.Address != nil {
		s = *run.Address
	}

	if r := []rune(s); len(r) > width {
		return string(r[:width-1]) + "…"
	}

	return s
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the document of an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		db, repo, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := repo.GetRun(id)
		if err != nil {
			return err
		}

		return printJSON(os.Stdout, run.Document)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum number of runs to list")
	historyListCmd.Flags().Float64SliceVar(&historyNear, "near", nil, "Only runs centered in the same H3 cell as `lat,lon`")
}
