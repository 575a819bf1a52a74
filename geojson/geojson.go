// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

// Package geojson holds the minimal GeoJSON surface shared by the map
// layer generators: typed features with opaque geometry, and the
// pretty-printed file writes the site's data directory is built from.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Feature is a single GeoJSON feature. Geometry is kept opaque so
// geometries fetched from upstream services pass through verbatim.
type Feature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// FeatureCollection is a standard two-field GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns a collection with a non-nil feature
// slice, so an empty layer serializes as [] rather than null.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
}

// Append adds a feature to the collection.
func (fc *FeatureCollection) Append(f Feature) {
	fc.Features = append(fc.Features, f)
}

// Point builds a GeoJSON Point geometry at [lon, lat].
func Point(lon, lat float64) json.RawMessage {
	g, err := json.Marshal(map[string]any{
		"type":        "Point",
		"coordinates": []float64{lon, lat},
	})
	if err != nil {
		// Marshaling floats and strings cannot fail.
		panic(err)
	}

	return g
}

// LineString builds a GeoJSON LineString geometry from [lon, lat] pairs.
func LineString(coordinates [][]float64) json.RawMessage {
	g, err := json.Marshal(map[string]any{
		"type":        "LineString",
		"coordinates": coordinates,
	})
	if err != nil {
		panic(err)
	}

	return g
}

// Polygon builds a GeoJSON Polygon geometry from linear rings.
func Polygon(rings [][][]float64) json.RawMessage {
	g, err := json.Marshal(map[string]any{
		"type":        "Polygon",
		"coordinates": rings,
	})
	if err != nil {
		panic(err)
	}

	return g
}

// WriteFile writes the collection pretty-printed to path, creating any
// missing parent directory. The write is a full overwrite per run.
func WriteFile(path string, fc *FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling feature collection: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
