// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode turns a list of visited coordinates into annotated
// points and a deduplicated set of administrative regions, using
// Nominatim for reverse geocoding and polygon lookups with a durable
// on-disk cache in between.
package geocode

// RawPoint is one visited place as produced by the input parser.
type RawPoint struct {
	Name string
	Lon  float64
	Lat  float64
}

// Result is what the reverse geocoder knows about one coordinate.
// Results are persisted indefinitely; administrative boundaries are
// assumed stable so entries carry no expiry.
type Result struct {
	OSMType     string `json:"osm_type"`
	OSMID       int64  `json:"osm_id"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// AnnotatedPoint pairs a RawPoint with its geocoding outcome. Skipped
// points carry a zero Result and are never cached, so they stay
// eligible for retry on the next run.
type AnnotatedPoint struct {
	RawPoint
	Result  Result
	Skipped bool
}

// EntityRef identifies an OSM entity by type and id. Two fields rather
// than a formatted string so equality can never collide on separators.
type EntityRef struct {
	Type string
	ID   int64
}

// Region is one unique administrative entity and the visited points
// that resolved to it, in first-seen order.
type Region struct {
	Ref         EntityRef
	Name        string
	Country     string
	CountryCode string
	Points      []AnnotatedPoint
}
