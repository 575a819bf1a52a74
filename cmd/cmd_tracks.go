// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ericabertugli/sitetools/geojson"
	"github.com/ericabertugli/sitetools/tracks"
)

const (
	heatmapFile = "heatmap.geojson"
	countsFile  = "h3_counts.csv"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "Build layers from recorded GPS tracks",
}

var (
	minCount      int
	activityTypes []string
	heatmapOut    string
	resolution    int
	countsOut     string
)

var tracksCountsCmd = &cobra.Command{
	Use:   "counts <fit-folder>",
	Short: "Count H3 cell visits per activity across FIT track files",
	Long: `
Reads every .fit activity file in a folder and counts, per H3 cell and
activity type, how many recordings crossed the cell. Each file counts
as one visit regardless of how many samples fall in the cell. The
resulting CSV is what "tracks heatmap" consumes.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		counts, err := tracks.CountVisits(args[0], resolution, activityTypes)
		if err != nil {
			return fmt.Errorf("counting cell visits: %w", err)
		}

		if len(counts) == 0 {
			log.Printf("No GPS data found in %s", args[0])

			return nil
		}

		out := countsOut
		if out == "" {
			out = filepath.Join(dataDir, countsFile)
		}

		if err := tracks.WriteCounts(out, counts); err != nil {
			return err
		}

		log.Printf("Wrote %d cell/activity pairs to %s", len(counts), out)

		return nil
	},
}

var tracksHeatmapCmd = &cobra.Command{
	Use:   "heatmap <h3_counts.csv>",
	Short: "Convert H3 cell visit counts to a polygon heatmap layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		counts, err := tracks.ReadCounts(args[0], activityTypes)
		if err != nil {
			return fmt.Errorf("reading cell counts: %w", err)
		}

		fc := tracks.Heatmap(counts, minCount)

		out := heatmapOut
		if out == "" {
			out = filepath.Join(dataDir, heatmapFile)
		}

		if err := geojson.WriteFile(out, fc); err != nil {
			return err
		}

		log.Printf("Wrote %d cells (of %d) to %s", len(fc.Features), len(counts), out)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(tracksCmd)
	tracksCmd.AddCommand(tracksCountsCmd)
	tracksCmd.AddCommand(tracksHeatmapCmd)

	tracksCountsCmd.Flags().IntVarP(&resolution, "resolution", "r", 13, "H3 resolution (0-15)")
	tracksCountsCmd.Flags().StringSliceVarP(
		&activityTypes, "activity-type", "a", nil,
		"Only count these activity types",
	)
	tracksCountsCmd.Flags().StringVarP(&countsOut, "output", "o", "", "Output file")

	tracksHeatmapCmd.Flags().IntVar(&minCount, "min-count", 5, "Minimum visit count per cell")
	tracksHeatmapCmd.Flags().StringSliceVarP(
		&activityTypes, "activity-type", "a", nil,
		"Only count these activity types",
	)
	tracksHeatmapCmd.Flags().StringVarP(&heatmapOut, "output", "o", "", "Output file")
}
