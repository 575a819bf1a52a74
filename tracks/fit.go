// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package tracks

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tormoder/fit"
	"github.com/uber/h3-go/v4"

	"github.com/ericabertugli/sitetools/utils"
)

// trackPoint is one GPS sample with its recorded activity label.
type trackPoint struct {
	Lat      float64
	Lon      float64
	Activity string
}

// CellVisit keys the visit counter: one H3 cell crossed during one
// kind of activity.
type CellVisit struct {
	Cell     string
	Activity string
}

// CountVisits walks every .fit file under dir and counts, per cell and
// activity, how many files crossed the cell. Each file counts as one
// visit: passing through a cell ten times within one recording still
// counts once, ten separate recordings count ten. Files that fail to
// decode are logged and skipped.
func CountVisits(dir string, resolution int, activities []string) (map[CellVisit]int, error) {
	if resolution < 0 || resolution > 15 {
		return nil, fmt.Errorf("resolution must be between 0 and 15, got %d", resolution)
	}

	paths, err := fitFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		log.Printf("No .fit files found in %s", dir)
	}

	wanted := map[string]bool{}
	for _, a := range activities {
		wanted[utils.LowerASCIIFolding(a)] = true
	}

	counts := map[CellVisit]int{}

	for _, path := range paths {
		points, err := readFit(path)
		if err != nil {
			log.Printf("WARN could not parse %s: %s, skipping", filepath.Base(path), err)

			continue
		}

		visits := fileVisits(points, resolution, wanted)
		for v := range visits {
			counts[v]++
		}

		log.Printf("Processed %s - %d GPS points, %d unique cells", filepath.Base(path), len(points), len(visits))
	}

	return counts, nil
}

func fitFiles(dir string) ([]string, error) {
	lower, err := filepath.Glob(filepath.Join(dir, "*.fit"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	upper, err := filepath.Glob(filepath.Join(dir, "*.FIT"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	paths := append(lower, upper...)
	sort.Strings(paths)

	return paths, nil
}

// readFit decodes one activity file into GPS samples. Records without
// a position (indoor segments, dropouts) are dropped.
func readFit(path string) ([]trackPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, err := fit.Decode(f)
	if err != nil {
		return nil, err
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, err
	}

	points := make([]trackPoint, 0, len(activity.Records))

	for _, record := range activity.Records {
		lat := record.PositionLat.Degrees()
		lon := record.PositionLong.Degrees()

		if math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}

		points = append(points, trackPoint{
			Lat:      lat,
			Lon:      lon,
			Activity: activityLabel(record.ActivityType),
		})
	}

	return points, nil
}

// activityLabel renders the FIT activity enum as the folded label the
// counts CSV carries.
func activityLabel(t fit.ActivityType) string {
	if t == fit.ActivityTypeInvalid {
		return "unknown"
	}

	return utils.LowerASCIIFolding(strings.TrimPrefix(t.String(), "ActivityType"))
}

// fileVisits reduces one file's samples to its set of unique cell and
// activity pairs, applying the activity filter when non-empty.
func fileVisits(points []trackPoint, resolution int, wanted map[string]bool) map[CellVisit]bool {
	visits := map[CellVisit]bool{}

	for _, p := range points {
		activity := utils.LowerASCIIFolding(p.Activity)
		if len(wanted) > 0 && !wanted[activity] {
			continue
		}

		cell, err := h3.LatLngToCell(h3.LatLng{Lat: p.Lat, Lng: p.Lon}, resolution)
		if err != nil {
			log.Printf("WARN converting (%v, %v) to H3 cell at resolution %d: %s", p.Lat, p.Lon, resolution, err)

			continue
		}

		visits[CellVisit{Cell: cell.String(), Activity: activity}] = true
	}

	return visits
}

// WriteCounts writes the visit counter as the h3_cell,activity_type,count
// CSV the heatmap subcommand consumes, most visited cells first.
func WriteCounts(path string, counts map[CellVisit]int) error {
	rows := make([]CellVisit, 0, len(counts))
	for v := range counts {
		rows = append(rows, v)
	}

	sort.Slice(rows, func(i, j int) bool {
		if counts[rows[i]] != counts[rows[j]] {
			return counts[rows[i]] > counts[rows[j]]
		}

		if rows[i].Cell != rows[j].Cell {
			return rows[i].Cell < rows[j].Cell
		}

		return rows[i].Activity < rows[j].Activity
	})

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	writer := csv.NewWriter(f)

	if err := writer.Write([]string{"h3_cell", "activity_type", "count"}); err != nil {
		f.Close()

		return fmt.Errorf("writing %s: %w", path, err)
	}

	for _, v := range rows {
		if err := writer.Write([]string{v.Cell, v.Activity, strconv.Itoa(counts[v])}); err != nil {
			f.Close()

			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()

		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
