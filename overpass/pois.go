// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package overpass

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericabertugli/sitetools/geojson"
)

// SkatePOIsQuery selects skate parks, roller rinks, and pump tracks
// inside bbox.
func SkatePOIsQuery(bbox string) string {
	return fmt.Sprintf(`
[out:json][timeout:120][bbox:%s];
(
  node["sport"~"skateboard|roller_skating"];
  way["sport"~"skateboard|roller_skating"];
  node["cycling"="pump_track"];
  way["cycling"="pump_track"];
);
out center;
`, bbox)
}

// DrinkingWaterQuery selects public drinking fountains inside bbox.
func DrinkingWaterQuery(bbox string) string {
	return fmt.Sprintf(`
[out:json][timeout:120][bbox:%s];
(
  node["amenity"="drinking_water"];
);
out;
`, bbox)
}

// FetchSkatePOIs returns skating points of interest as a point layer.
func (c *Client) FetchSkatePOIs(ctx context.Context, bbox string) (*geojson.FeatureCollection, error) {
	elements, err := c.Query(ctx, SkatePOIsQuery(bbox))
	if err != nil {
		return nil, fmt.Errorf("fetching skate POIs: %w", err)
	}

	return POIFeatures(elements), nil
}

// FetchDrinkingWater returns drinking fountains as a point layer.
func (c *Client) FetchDrinkingWater(ctx context.Context, bbox string) (*geojson.FeatureCollection, error) {
	elements, err := c.Query(ctx, DrinkingWaterQuery(bbox))
	if err != nil {
		return nil, fmt.Errorf("fetching drinking water: %w", err)
	}

	fc := geojson.NewFeatureCollection()

	for _, el := range elements {
		lon, lat, ok := el.Position()
		if !ok {
			continue
		}

		fc.Append(geojson.Feature{
			Type: "Feature",
			Properties: map[string]any{
				"name": el.Tags["name"],
			},
			Geometry: geojson.Point(lon, lat),
		})
	}

	return fc, nil
}

// POIFeatures converts POI elements to point features with the
// properties the skating map's popups use.
func POIFeatures(elements []Element) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, el := range elements {
		lon, lat, ok := el.Position()
		if !ok {
			continue
		}

		fc.Append(geojson.Feature{
			Type: "Feature",
			Properties: map[string]any{
				"name":     el.Tags["name"],
				"poi_type": poiType(el.Tags),
				"sport":    el.Tags["sport"],
				"surface":  el.Tags["surface"],
				"image":    imageURL(el.Tags),
			},
			Geometry: geojson.Point(lon, lat),
		})
	}

	return fc
}

// poiType classifies an element for map styling.
func poiType(tags map[string]string) string {
	if tags["cycling"] == "pump_track" {
		return "pump_track"
	}

	return "skate_park"
}

// imageURL derives a thumbnail URL from the element's image tags,
// preferring Wikimedia Commons.
func imageURL(tags map[string]string) string {
	if commons, ok := tags["wikimedia_commons"]; ok {
		filename := strings.ReplaceAll(strings.TrimPrefix(commons, "File:"), " ", "_")

		return "https://commons.wikimedia.org/wiki/Special:FilePath/" + filename + "?width=300"
	}

	return tags["image"]
}
