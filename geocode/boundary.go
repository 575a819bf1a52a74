// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/ericabertugli/sitetools/geojson"
)

const boundaryStatusEvery = 20

// RegionFeature is a region paired with its fetched outline, ready for
// the regions output layer.
type RegionFeature struct {
	Region   *Region
	Geometry json.RawMessage
}

// lookupResponse is the slice of a Nominatim /lookup GeoJSON response
// this tool consumes: only the first feature's geometry matters.
type lookupResponse struct {
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// FetchBoundaries retrieves one polygon outline per region, in the
// region set's first-seen order. Regions whose lookup yields no
// geometry are dropped with a warning; everything else is unaffected.
func FetchBoundaries(ctx context.Context, fetcher *Fetcher, baseURL string, regions []*Region) []RegionFeature {
	features := make([]RegionFeature, 0, len(regions))

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(regions),
			progressbar.OptionSetDescription("Fetching boundaries"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i, region := range regions {
		geometry := fetchBoundary(ctx, fetcher, baseURL, region)
		if geometry != nil {
			features = append(features, RegionFeature{Region: region, Geometry: geometry})
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				log.Printf("WARN updating progress bar: %s", err)
			}
		}

		if (i+1)%boundaryStatusEvery == 0 {
			log.Printf("Boundary progress - %d/%d regions, %d with geometry", i+1, len(regions), len(features))
		}
	}

	log.Printf(
		"Boundary phase complete - %d/%d regions have geometry, %d dropped",
		len(features), len(regions), len(regions)-len(features),
	)

	return features
}

func fetchBoundary(ctx context.Context, fetcher *Fetcher, baseURL string, region *Region) json.RawMessage {
	prefix, ok := osmIDPrefix(region.Ref.Type)
	if !ok {
		log.Printf("WARN unknown entity type %q for region %q, dropping", region.Ref.Type, region.Name)

		return nil
	}

	params := url.Values{}
	params.Set("osm_ids", prefix+strconv.FormatInt(region.Ref.ID, 10))
	params.Set("format", "geojson")
	params.Set("polygon_geojson", "1")

	body := fetcher.FetchJSON(ctx, baseURL+"/lookup?"+params.Encode())
	if body == nil {
		log.Printf("WARN no boundary response for region %q (%s%d), dropping", region.Name, prefix, region.Ref.ID)

		return nil
	}

	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Printf("WARN parsing boundary for region %q: %s, dropping", region.Name, err)

		return nil
	}

	if len(resp.Features) == 0 || len(resp.Features[0].Geometry) == 0 ||
		string(resp.Features[0].Geometry) == "null" {
		log.Printf("WARN no geometry for region %q (%s%d), dropping", region.Name, prefix, region.Ref.ID)

		return nil
	}

	return resp.Features[0].Geometry
}

// osmIDPrefix maps an OSM entity type to its /lookup id prefix.
func osmIDPrefix(entityType string) (string, bool) {
	switch entityType {
	case "relation":
		return "R", true
	case "way":
		return "W", true
	case "node":
		return "N", true
	default:
		return "", false
	}
}

// Feature shapes the region into its output form, geometry verbatim.
func (rf RegionFeature) Feature() geojson.Feature {
	return geojson.Feature{
		Type: "Feature",
		Properties: map[string]any{
			"osm_id":       rf.Region.Ref.ID,
			"name":         rf.Region.Name,
			"country":      rf.Region.Country,
			"country_code": rf.Region.CountryCode,
			"point_count":  len(rf.Region.Points),
		},
		Geometry: rf.Geometry,
	}
}
