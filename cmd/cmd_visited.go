// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericabertugli/sitetools/geocode"
	"github.com/ericabertugli/sitetools/geojson"
	"github.com/ericabertugli/sitetools/kml"
)

// Pipeline tuning. The rate limit is a hard requirement of the
// Nominatim usage policy, not a knob to turn.
const (
	nominatimURL     = "https://nominatim.openstreetmap.org"
	nominatimSpacing = 1100 * time.Millisecond
	fetchTimeout     = 15 * time.Second
	fetchRetries     = 3

	cacheFile   = "geocode_cache.json"
	pointsFile  = "visited_points.geojson"
	regionsFile = "visited_regions.geojson"
)

var visitedCmd = &cobra.Command{
	Use:   "visited <points.kml>",
	Short: "Build the visited points and regions layers from a KML export",
	Long: `
Reads point placemarks from a KML export, reverse geocodes each one
against Nominatim (cached across runs in the data directory), collapses
them into unique administrative regions, fetches each region's polygon,
and writes the two GeoJSON layers the travel map displays.

Runs are incremental: already-geocoded coordinates are served from the
cache, so a rerun with a few new points only pays for the new points.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		points, err := kml.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("reading input points: %w", err)
		}

		if len(points) == 0 {
			return fmt.Errorf("no point placemarks found in %s", args[0])
		}

		log.Printf("Loaded %d points from %s", len(points), args[0])

		cache := geocode.LoadCache(filepath.Join(dataDir, cacheFile))
		log.Printf("Geocode cache has %d entries", cache.Len())

		fetcher := geocode.NewFetcher(geocode.FetcherOptions{
			UserAgent:       userAgent(),
			MinInterval:     nominatimSpacing,
			Timeout:         fetchTimeout,
			Retries:         fetchRetries,
			HTTPTraceWriter: httpTraceWriter(),
		})

		resolver := geocode.NewResolver(fetcher, nominatimURL, cache)
		annotated := resolver.Resolve(ctx, points)

		regions := geocode.Deduplicate(annotated)
		log.Printf("Deduplicated %d points into %d regions", len(annotated), regions.Len())

		boundaries := geocode.FetchBoundaries(ctx, fetcher, nominatimURL, regions.Regions())

		pointsPath := filepath.Join(dataDir, pointsFile)
		if err := geojson.WriteFile(pointsPath, geocode.PointsLayer(annotated)); err != nil {
			return fmt.Errorf("writing points layer: %w", err)
		}

		regionsPath := filepath.Join(dataDir, regionsFile)
		if err := geojson.WriteFile(regionsPath, geocode.RegionsLayer(boundaries)); err != nil {
			return fmt.Errorf("writing regions layer: %w", err)
		}

		log.Printf("Wrote %s and %s", pointsPath, regionsPath)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(visitedCmd)
}
