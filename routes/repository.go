// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

// Package routes stores skating route ways in DuckDB and exports them
// as GeoJSON layers.
package routes

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ericabertugli/sitetools/geojson"
	"github.com/ericabertugli/sitetools/overpass"
	"github.com/ericabertugli/sitetools/utils"
)

// Repository persists ways keyed by OSM id. Re-importing a query
// replaces existing rows, so repeated imports converge on the latest
// upstream state.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open DuckDB handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateSchema creates the ways table if missing.
func (r *Repository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS ways (
			osm_id BIGINT PRIMARY KEY,
			way_type TEXT NOT NULL,
			name TEXT,
			geojson TEXT NOT NULL,
			tags TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("creating ways table: %w", err)
	}

	return nil
}

// StoreWays inserts or replaces every way element under a normalized
// type label. Non-way elements are ignored. Returns the stored count.
func (r *Repository) StoreWays(elements []overpass.Element, wayType string) (int, error) {
	wayType = utils.LowerASCIIFolding(wayType)

	count := 0

	for _, el := range elements {
		if el.Type != "way" {
			continue
		}

		if len(el.Geometry) == 0 {
			log.Printf("WARN way %d has no geometry, skipping", el.ID)

			continue
		}

		coordinates := make([][]float64, 0, len(el.Geometry))
		for _, node := range el.Geometry {
			coordinates = append(coordinates, []float64{node.Lon, node.Lat})
		}

		tags, err := json.Marshal(el.Tags)
		if err != nil {
			return count, fmt.Errorf("marshaling tags for way %d: %w", el.ID, err)
		}

		_, err = r.db.Exec(
			`INSERT OR REPLACE INTO ways (osm_id, way_type, name, geojson, tags)
			 VALUES (?, ?, ?, ?, ?)`,
			el.ID, wayType, el.Tags["name"], string(geojson.LineString(coordinates)), string(tags),
		)
		if err != nil {
			return count, fmt.Errorf("storing way %d: %w", el.ID, err)
		}

		count++
	}

	return count, nil
}

// ListTypes returns the distinct way type labels in storage.
func (r *Repository) ListTypes() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT way_type FROM ways ORDER BY way_type")
	if err != nil {
		return nil, fmt.Errorf("listing way types: %w", err)
	}
	defer rows.Close()

	var types []string

	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning way type: %w", err)
		}

		types = append(types, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing way types: %w", err)
	}

	return types, nil
}

// Export returns stored ways as a FeatureCollection, optionally
// filtered by type label. Geometry round-trips verbatim.
func (r *Repository) Export(wayType string) (*geojson.FeatureCollection, error) {
	query := "SELECT osm_id, way_type, name, geojson, tags FROM ways ORDER BY osm_id"
	args := []any{}

	if wayType != "" {
		query = "SELECT osm_id, way_type, name, geojson, tags FROM ways WHERE way_type = ? ORDER BY osm_id"
		args = append(args, utils.LowerASCIIFolding(wayType))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting ways: %w", err)
	}
	defer rows.Close()

	fc := geojson.NewFeatureCollection()

	for rows.Next() {
		var (
			osmID            int64
			wtype, geom      string
			name, tagsColumn sql.NullString
		)

		if err := rows.Scan(&osmID, &wtype, &name, &geom, &tagsColumn); err != nil {
			return nil, fmt.Errorf("scanning way: %w", err)
		}

		tags := map[string]string{}
		if tagsColumn.Valid && tagsColumn.String != "" {
			if err := json.Unmarshal([]byte(tagsColumn.String), &tags); err != nil {
				return nil, fmt.Errorf("parsing tags for way %d: %w", osmID, err)
			}
		}

		fc.Append(geojson.Feature{
			Type: "Feature",
			Properties: map[string]any{
				"osm_id":   osmID,
				"way_type": wtype,
				"name":     name.String,
				"tags":     tags,
			},
			Geometry: json.RawMessage(geom),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("selecting ways: %w", err)
	}

	return fc, nil
}
