// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

// Package tracks converts H3 cell visit counts, produced from GPS
// track files, into a polygon heatmap layer.
package tracks

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/uber/h3-go/v4"

	"github.com/ericabertugli/sitetools/geojson"
	"github.com/ericabertugli/sitetools/utils"
)

// ReadCounts reads a CSV of h3_cell,activity_type,count rows and
// aggregates counts per cell. The activity_type column is optional;
// when present and activities is non-empty, only matching rows count.
// Matching is accent- and case-insensitive.
func ReadCounts(path string, activities []string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return readCounts(f, activities)
}

func readCounts(r io.Reader, activities []string) (map[string]int, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}

	cellColumn, ok := columns["h3_cell"]
	if !ok {
		return nil, fmt.Errorf("CSV has no h3_cell column")
	}

	countColumn, ok := columns["count"]
	if !ok {
		return nil, fmt.Errorf("CSV has no count column")
	}

	activityColumn, hasActivity := columns["activity_type"]

	wanted := map[string]bool{}
	for _, a := range activities {
		wanted[utils.LowerASCIIFolding(a)] = true
	}

	counts := map[string]int{}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		if hasActivity && len(wanted) > 0 {
			if !wanted[utils.LowerASCIIFolding(row[activityColumn])] {
				continue
			}
		}

		count, err := strconv.Atoi(row[countColumn])
		if err != nil {
			return nil, fmt.Errorf("parsing count %q: %w", row[countColumn], err)
		}

		counts[row[cellColumn]] += count
	}

	return counts, nil
}

// Heatmap converts aggregated cell counts to hexagon polygons,
// dropping cells below minCount. Cells that fail to convert are logged
// and skipped rather than failing the whole export.
func Heatmap(counts map[string]int, minCount int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for cellID, count := range counts {
		if count < minCount {
			continue
		}

		ring, err := cellBoundary(cellID)
		if err != nil {
			log.Printf("WARN converting H3 cell %s to polygon: %s", cellID, err)

			continue
		}

		fc.Append(geojson.Feature{
			Type: "Feature",
			Properties: map[string]any{
				"count": count,
			},
			Geometry: geojson.Polygon([][][]float64{ring}),
		})
	}

	return fc
}

// cellBoundary returns the cell's closed [lon, lat] ring.
func cellBoundary(cellID string) ([][]float64, error) {
	cell := h3.Cell(h3.IndexFromString(cellID))
	if !cell.IsValid() {
		return nil, fmt.Errorf("invalid cell id %q", cellID)
	}

	boundary, err := cell.Boundary()
	if err != nil {
		return nil, fmt.Errorf("computing boundary: %w", err)
	}

	ring := make([][]float64, 0, len(boundary)+1)
	for _, vertex := range boundary {
		ring = append(ring, []float64{vertex.Lng, vertex.Lat})
	}

	ring = append(ring, ring[0])

	return ring, nil
}
