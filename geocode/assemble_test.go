// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsLayerFiltersSkipped(t *testing.T) {
	points := []AnnotatedPoint{
		{
			RawPoint: RawPoint{Name: "Barcelona", Lon: 2.1686, Lat: 41.3874},
			Result: Result{
				OSMType:     "relation",
				OSMID:       349053,
				Region:      "Catalunya",
				Country:     "España",
				CountryCode: "es",
			},
		},
		{
			RawPoint: RawPoint{Name: "unknown", Lon: 0, Lat: 0},
			Skipped:  true,
		},
	}

	fc := PointsLayer(points)

	require.Len(t, fc.Features, 1)
	assert.Equal(t, "FeatureCollection", fc.Type)

	f := fc.Features[0]
	assert.Equal(t, "Barcelona", f.Properties["name"])
	assert.Equal(t, "Catalunya", f.Properties["region"])
	assert.JSONEq(t, `{"type":"Point","coordinates":[2.1686,41.3874]}`, string(f.Geometry))
}

func TestPointsLayerSchemaStability(t *testing.T) {
	// Missing source fields become empty strings, never null.
	fc := PointsLayer([]AnnotatedPoint{
		{
			RawPoint: RawPoint{Name: "", Lon: 1, Lat: 2},
			Result:   Result{OSMType: "node", OSMID: 5},
		},
	})

	require.Len(t, fc.Features, 1)

	data, err := json.Marshal(fc.Features[0].Properties)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"","region":"","country":"","country_code":""}`, string(data))
}

func TestRegionsLayer(t *testing.T) {
	features := []RegionFeature{
		{
			Region:   testRegion("relation", 1, "One", 2),
			Geometry: json.RawMessage(`{"type":"Polygon","coordinates":[]}`),
		},
		{
			Region:   testRegion("relation", 2, "Two", 1),
			Geometry: json.RawMessage(`{"type":"MultiPolygon","coordinates":[]}`),
		},
	}

	fc := RegionsLayer(features)

	require.Len(t, fc.Features, 2)
	assert.Equal(t, "One", fc.Features[0].Properties["name"])
	assert.Equal(t, 2, fc.Features[0].Properties["point_count"])
	assert.JSONEq(t, `{"type":"MultiPolygon","coordinates":[]}`, string(fc.Features[1].Geometry))
}

func TestRegionsLayerEmpty(t *testing.T) {
	data, err := json.Marshal(RegionsLayer(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}
