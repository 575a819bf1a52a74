// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package kml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>Visited places</name>
    <Placemark>
      <name>Barcelona</name>
      <Point><coordinates>2.1686,41.3874,0</coordinates></Point>
    </Placemark>
    <Folder>
      <name>Oceania</name>
      <Placemark>
        <name>Sydney</name>
        <Point><coordinates>151.2093,-33.8688</coordinates></Point>
      </Placemark>
    </Folder>
    <Placemark>
      <name>A route, not a point</name>
      <LineString><coordinates>0,0 1,1</coordinates></LineString>
    </Placemark>
    <Placemark>
      <name>Broken</name>
      <Point><coordinates>not,numbers</coordinates></Point>
    </Placemark>
    <Placemark>
      <name>Out of range</name>
      <Point><coordinates>181.0,95.0</coordinates></Point>
    </Placemark>
  </Document>
</kml>`

func TestParse(t *testing.T) {
	points, err := Parse(strings.NewReader(sampleKML))
	require.NoError(t, err)

	require.Len(t, points, 2)

	assert.Equal(t, "Barcelona", points[0].Name)
	assert.InDelta(t, 2.1686, points[0].Lon, 1e-9)
	assert.InDelta(t, 41.3874, points[0].Lat, 1e-9)

	// Folder nesting does not hide placemarks, order is preserved.
	assert.Equal(t, "Sydney", points[1].Name)
	assert.InDelta(t, -33.8688, points[1].Lat, 1e-9)
}

func TestParseInvalidXML(t *testing.T) {
	_, err := Parse(strings.NewReader("<kml><Document>"))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.kml")
	require.NoError(t, os.WriteFile(path, []byte(sampleKML), 0o600))

	points, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.kml"))
	assert.Error(t, err)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		lon  float64
		lat  float64
		ok   bool
	}{
		{name: "lon lat alt", in: "2.1686,41.3874,0", lon: 2.1686, lat: 41.3874, ok: true},
		{name: "lon lat only", in: "151.2093,-33.8688", lon: 151.2093, lat: -33.8688, ok: true},
		{name: "surrounding whitespace", in: "  1.0 , 2.0  ", lon: 1, lat: 2, ok: true},
		{name: "missing lat", in: "2.1686", ok: false},
		{name: "not numbers", in: "a,b", ok: false},
		{name: "latitude out of range", in: "0,91", ok: false},
		{name: "longitude out of range", in: "-181,0", ok: false},
		{name: "empty", in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat, ok := parseCoordinates(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseCoordinates(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}

			if ok && (lon != tt.lon || lat != tt.lat) {
				t.Errorf("parseCoordinates(%q) = (%v, %v), want (%v, %v)", tt.in, lon, lat, tt.lon, tt.lat)
			}
		})
	}
}
