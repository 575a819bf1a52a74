// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/ericabertugli/sitetools/geojson"
	"github.com/ericabertugli/sitetools/overpass"
	"github.com/ericabertugli/sitetools/routes"
)

const (
	routesDB        = "skating_routes.duckdb"
	skatePOIsFile   = "skate_pois.geojson"
	drinkingFile    = "drinking_water.geojson"
	routesFile      = "routes.geojson"
	defaultBBoxFile = "queries/bbox.overpassql"
)

var skatingCmd = &cobra.Command{
	Use:   "skating",
	Short: "Build the skating map's POI and route layers",
}

var (
	bboxFile   string
	waysQuery  string
	waysFile   string
	wayType    string
	listTypes  bool
	exportPath string
)

func newOverpassClient() *overpass.Client {
	return overpass.NewClient(overpass.ClientOptions{
		UserAgent:       userAgent(),
		HTTPTraceWriter: httpTraceWriter(),
	})
}

func openRoutesDB() (*sql.DB, *routes.Repository, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dataDir, routesDB))
	if err != nil {
		return nil, nil, fmt.Errorf("opening routes database: %w", err)
	}

	repo := routes.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating routes schema: %w", err)
	}

	return db, repo, nil
}

var skatingPOIsCmd = &cobra.Command{
	Use:   "pois",
	Short: "Fetch skate parks, pump tracks, and drinking fountains from Overpass",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		client := newOverpassClient()
		bbox := overpass.LoadBBox(bboxFile)
		log.Printf("Fetching skating POIs (bbox: %s)", bbox)

		pois, err := client.FetchSkatePOIs(ctx, bbox)
		if err != nil {
			return err
		}

		poisPath := filepath.Join(dataDir, skatePOIsFile)
		if err := geojson.WriteFile(poisPath, pois); err != nil {
			return err
		}

		log.Printf("Wrote %d POIs to %s", len(pois.Features), poisPath)

		water, err := client.FetchDrinkingWater(ctx, bbox)
		if err != nil {
			return err
		}

		waterPath := filepath.Join(dataDir, drinkingFile)
		if err := geojson.WriteFile(waterPath, water); err != nil {
			return err
		}

		log.Printf("Wrote %d fountains to %s", len(water.Features), waterPath)

		return nil
	},
}

var skatingImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Run an Overpass ways query and store the results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if (waysQuery == "") == (waysFile == "") {
			return fmt.Errorf("exactly one of --query or --query-file is required")
		}

		if wayType == "" {
			return fmt.Errorf("--type is required")
		}

		query := waysQuery
		if waysFile != "" {
			data, err := os.ReadFile(waysFile)
			if err != nil {
				return fmt.Errorf("reading query file: %w", err)
			}

			query = string(data)
		}

		bbox := overpass.LoadBBox(bboxFile)
		log.Printf("Fetching ways from Overpass (bbox: %s)", bbox)

		elements, err := newOverpassClient().Query(ctx, overpass.WaysQuery(query, bbox))
		if err != nil {
			return err
		}

		db, repo, err := openRoutesDB()
		if err != nil {
			return err
		}
		defer db.Close()

		count, err := repo.StoreWays(elements, wayType)
		if err != nil {
			return err
		}

		log.Printf("Stored %d ways with type %q", count, wayType)

		return nil
	},
}

var skatingExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored ways to a GeoJSON layer",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openRoutesDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if listTypes {
			types, err := repo.ListTypes()
			if err != nil {
				return err
			}

			fmt.Println("Available way types:")
			for _, t := range types {
				fmt.Printf("  - %s\n", t)
			}

			return nil
		}

		fc, err := repo.Export(wayType)
		if err != nil {
			return err
		}

		out := exportPath
		if out == "" {
			out = filepath.Join(dataDir, routesFile)
		}

		if err := geojson.WriteFile(out, fc); err != nil {
			return err
		}

		log.Printf("Exported %d features to %s", len(fc.Features), out)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(skatingCmd)
	skatingCmd.AddCommand(skatingPOIsCmd)
	skatingCmd.AddCommand(skatingImportCmd)
	skatingCmd.AddCommand(skatingExportCmd)

	skatingCmd.PersistentFlags().StringVar(
		&bboxFile, "bbox-file", defaultBBoxFile,
		"File with a south,west,north,east bounding box",
	)
	skatingImportCmd.Flags().StringVar(&waysQuery, "query", "", "Overpass query string")
	skatingImportCmd.Flags().StringVar(&waysFile, "query-file", "", "File containing an Overpass query")
	skatingImportCmd.Flags().StringVar(&wayType, "type", "", "Way type label")
	skatingExportCmd.Flags().StringVar(&wayType, "type", "", "Filter by way type")
	skatingExportCmd.Flags().BoolVar(&listTypes, "list-types", false, "List available way types")
	skatingExportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Output file")
}
