// Copyright 2026 The get-poi-osm Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/Zheng-Bote/get-poi-osm/osm"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "getpoi",
	Short: "points of interest around a place, from OpenStreetMap",
	Long: `
getpoi finds the OpenStreetMap points of interest around an address or a pair
of coordinates. Addresses are geocoded with Nominatim and the area search runs
against an Overpass API interpreter. The answer is a JSON document on stdout.
`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

var Version = "dev"

// Settings shared by every subcommand.
var clientOptions = osm.ClientOptions{}

var (
	envFile string
	dbPath  string
)

// flag name -> environment variable consulted when the flag is not given
var envFlags = map[string]string{
	"nominatim-url": "GETPOI_NOMINATIM_URL",
	"overpass-url":  "GETPOI_OVERPASS_URL",
	"user-agent":    "GETPOI_USER_AGENT",
	"timeout":       "GETPOI_TIMEOUT",
	"db-path":       "GETPOI_DB_PATH",
}

func loadEnvironment(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	return applyEnv(cmd.Flags())
}

func applyEnv(flags *pflag.FlagSet) error {
	for name, key := range envFlags {
		f := flags.Lookup(name)
		if f == nil || f.Changed {
			continue
		}

		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}

		if err := f.Value.Set(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
	}

	return nil
}

func userAgent() string {
	if clientOptions.UserAgent != "" {
		return clientOptions.UserAgent
	}

	return fmt.Sprintf("get-poi-osm/%s (+https://github.com/Zheng-Bote/get-poi-osm)", Version)
}

func newClient() *osm.Client {
	options := clientOptions
	options.UserAgent = userAgent()

	return osm.NewClient(options)
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "Environment file loaded when present")
	flags.StringVar(&clientOptions.NominatimURL, "nominatim-url", osm.DefaultNominatimURL, "Base URL of the Nominatim geocoder")
	flags.StringVar(&clientOptions.OverpassURL, "overpass-url", osm.DefaultOverpassURL, "Overpass API interpreter endpoint")
	flags.StringVar(&clientOptions.UserAgent, "user-agent", "", "User-Agent sent upstream (default get-poi-osm/<version>)")
	flags.DurationVar(&clientOptions.Timeout, "timeout", 60*time.Second, "Timeout of each HTTP request")
	flags.StringVar(&dbPath, "db-path", "db", "Directory holding the run archive")
	flags.BoolVar(&clientOptions.EnableHTTPTrace, "trace-http", false, "Trace HTTP requests and responses on stderr")
	flags.BoolVar(&clientOptions.EnableHTTPBodyTrace, "trace-http-body", false, "Also trace HTTP bodies")
}
