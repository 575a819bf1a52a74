// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package tracks

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/tormoder/fit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return csv.NewReader(f).ReadAll()
}

// Downtown San Francisco, the documented example for validCell at
// resolution 9.
const (
	sfLat = 37.7752702151959
	sfLon = -122.418307270836
)

func TestFileVisitsDedupesWithinFile(t *testing.T) {
	points := []trackPoint{
		{Lat: sfLat, Lon: sfLon, Activity: "running"},
		{Lat: sfLat, Lon: sfLon, Activity: "running"},
		{Lat: sfLat, Lon: sfLon, Activity: "generic"},
	}

	visits := fileVisits(points, 9, map[string]bool{})

	// Repeated samples in one cell collapse; activities stay distinct.
	assert.Len(t, visits, 2)
	assert.True(t, visits[CellVisit{Cell: validCell, Activity: "running"}])
	assert.True(t, visits[CellVisit{Cell: validCell, Activity: "generic"}])
}

func TestFileVisitsActivityFilter(t *testing.T) {
	points := []trackPoint{
		{Lat: sfLat, Lon: sfLon, Activity: "Running"},
		{Lat: sfLat, Lon: sfLon, Activity: "generic"},
	}

	visits := fileVisits(points, 9, map[string]bool{"running": true})

	require.Len(t, visits, 1)
	assert.True(t, visits[CellVisit{Cell: validCell, Activity: "running"}])
}

func TestCountVisitsRejectsBadResolution(t *testing.T) {
	_, err := CountVisits(t.TempDir(), 16, nil)
	assert.Error(t, err)

	_, err = CountVisits(t.TempDir(), -1, nil)
	assert.Error(t, err)
}

func TestCountVisitsEmptyFolder(t *testing.T) {
	counts, err := CountVisits(t.TempDir(), 13, nil)

	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestActivityLabel(t *testing.T) {
	assert.Equal(t, "unknown", activityLabel(fit.ActivityTypeInvalid))
	assert.Contains(t, activityLabel(fit.ActivityTypeRunning), "running")
	assert.Contains(t, activityLabel(fit.ActivityTypeCycling), "cycling")
}

func TestWriteCountsRoundTripsThroughReadCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "h3_counts.csv")

	counts := map[CellVisit]int{
		{Cell: validCell, Activity: "running"}:         5,
		{Cell: "89283082807ffff", Activity: "generic"}: 9,
	}

	require.NoError(t, WriteCounts(path, counts))

	// The heatmap reader consumes what the counter writes.
	read, err := ReadCounts(path, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		validCell:         5,
		"89283082807ffff": 9,
	}, read)

	filtered, err := ReadCounts(path, []string{"running"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{validCell: 5}, filtered)
}

func TestWriteCountsOrdersByCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h3_counts.csv")

	require.NoError(t, WriteCounts(path, map[CellVisit]int{
		{Cell: validCell, Activity: "running"}:         2,
		{Cell: "89283082807ffff", Activity: "running"}: 7,
	}))

	data, err := readLines(path)
	require.NoError(t, err)

	require.Len(t, data, 3)
	assert.Equal(t, []string{"h3_cell", "activity_type", "count"}, data[0])
	assert.Equal(t, []string{"89283082807ffff", "running", "7"}, data[1])
	assert.Equal(t, []string{validCell, "running", "2"}, data[2])
}
