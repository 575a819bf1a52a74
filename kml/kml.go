// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

// Package kml extracts point placemarks from exported KML files, such
// as a Google My Maps layer of visited places.
package kml

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ericabertugli/sitetools/geocode"
)

type placemark struct {
	Name  string `xml:"name"`
	Point struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
}

// ParseFile reads path and returns its point placemarks in document
// order. Placemarks without a point geometry (routes, polygons) and
// placemarks with unparsable or non-finite coordinates are dropped
// with a warning.
func ParseFile(path string) ([]geocode.RawPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	points, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return points, nil
}

// Parse walks the KML token stream and decodes every Placemark,
// however deeply nested in folders.
func Parse(r io.Reader) ([]geocode.RawPoint, error) {
	decoder := xml.NewDecoder(r)

	var points []geocode.RawPoint

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading KML: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "Placemark" {
			continue
		}

		var pm placemark
		if err := decoder.DecodeElement(&pm, &start); err != nil {
			return nil, fmt.Errorf("decoding placemark: %w", err)
		}

		if strings.TrimSpace(pm.Point.Coordinates) == "" {
			// Not a point placemark.
			continue
		}

		lon, lat, ok := parseCoordinates(pm.Point.Coordinates)
		if !ok {
			log.Printf("WARN invalid coordinates for placemark %q: %q, dropping", pm.Name, strings.TrimSpace(pm.Point.Coordinates))

			continue
		}

		points = append(points, geocode.RawPoint{
			Name: strings.TrimSpace(pm.Name),
			Lon:  lon,
			Lat:  lat,
		})
	}

	return points, nil
}

// parseCoordinates handles the KML "lon,lat[,alt]" tuple.
func parseCoordinates(s string) (lon, lat float64, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 2 {
		return 0, 0, false
	}

	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)

	if errLon != nil || errLat != nil {
		return 0, 0, false
	}

	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return 0, 0, false
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}

	return lon, lat, true
}
