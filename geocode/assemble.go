// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"github.com/ericabertugli/sitetools/geojson"
)

// PointsLayer shapes the annotated points into the visited-points
// FeatureCollection. Skipped points are left out. Properties are
// always present as strings, empty when the source data had nothing,
// so downstream map code sees a stable schema.
func PointsLayer(points []AnnotatedPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, p := range points {
		if p.Skipped {
			continue
		}

		fc.Append(geojson.Feature{
			Type: "Feature",
			Properties: map[string]any{
				"name":         p.Name,
				"region":       p.Result.Region,
				"country":      p.Result.Country,
				"country_code": p.Result.CountryCode,
			},
			Geometry: geojson.Point(p.Lon, p.Lat),
		})
	}

	return fc
}

// RegionsLayer shapes the boundary-fetched regions into the
// visited-regions FeatureCollection.
func RegionsLayer(features []RegionFeature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, rf := range features {
		fc.Append(rf.Feature())
	}

	return fc
}
