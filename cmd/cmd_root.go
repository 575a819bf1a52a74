// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
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
	Use:   "sitetools",
	Short: "map-data tooling for the travel and skating pages",
	Long: `
sitetools generates the GeoJSON layers the site's maps are built from:
visited points and administrative regions from a KML export, skating
POIs and routes from Overpass, and track heatmaps from H3 counts.
`,
}

var (
	dataDir   string
	httpTrace bool
)

// httpTraceWriter returns where HTTP request/response traces go, nil
// when tracing is off.
func httpTraceWriter() io.Writer {
	if httpTrace {
		return os.Stderr
	}

	return nil
}

// userAgent builds the descriptive User-Agent the upstream usage
// policies ask for. The contact point comes from the environment (or a
// local .env) so it never lands in the repository.
func userAgent() string {
	ua := "sitetools/" + Version
	if contact := os.Getenv("SITETOOLS_CONTACT"); contact != "" {
		ua += " (" + contact + ")"
	}

	return ua
}

var Version = "dev"

func Execute(version string) {
	Version = version

	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&dataDir, "data", "data",
		"Directory holding generated layers, caches, and databases",
	)
	rootCmd.PersistentFlags().BoolVar(
		&httpTrace, "http-trace", false,
		"Trace HTTP requests and responses to stderr",
	)
}
