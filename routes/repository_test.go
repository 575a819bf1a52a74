// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/ericabertugli/sitetools/overpass"
)

func setupTestDB(t *testing.T) (*sql.DB, *Repository) {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	repo := NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db, repo
}

func sampleWay(id int64, name string) overpass.Element {
	return overpass.Element{
		Type: "way",
		ID:   id,
		Tags: map[string]string{"name": name, "surface": "asphalt"},
		Geometry: []overpass.LatLon{
			{Lat: 41.40, Lon: 2.15},
			{Lat: 41.41, Lon: 2.16},
		},
	}
}

func TestCreateSchema(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	var tableName string

	err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = 'ways'").Scan(&tableName)
	if err != nil {
		t.Fatalf("Table not created: %v", err)
	}

	if tableName != "ways" {
		t.Errorf("Expected table 'ways', got '%s'", tableName)
	}
}

func TestStoreAndExport(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	elements := []overpass.Element{
		sampleWay(100, "Passeig marítim"),
		{Type: "node", ID: 5}, // ignored
		{Type: "way", ID: 101, Tags: map[string]string{}}, // no geometry, skipped
	}

	count, err := repo.StoreWays(elements, "Smooth Asphalt")
	if err != nil {
		t.Fatalf("StoreWays failed: %v", err)
	}

	if count != 1 {
		t.Fatalf("Expected 1 stored way, got %d", count)
	}

	fc, err := repo.Export("")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if len(fc.Features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(fc.Features))
	}

	f := fc.Features[0]
	if f.Properties["way_type"] != "smooth asphalt" {
		t.Errorf("Expected folded way type, got %v", f.Properties["way_type"])
	}

	if f.Properties["name"] != "Passeig marítim" {
		t.Errorf("Unexpected name: %v", f.Properties["name"])
	}

	want := `{"coordinates":[[2.15,41.4],[2.16,41.41]],"type":"LineString"}`
	if string(f.Geometry) != want {
		t.Errorf("Geometry = %s, want %s", f.Geometry, want)
	}
}

func TestStoreWaysReplacesByID(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	if _, err := repo.StoreWays([]overpass.Element{sampleWay(100, "old")}, "a"); err != nil {
		t.Fatalf("first StoreWays failed: %v", err)
	}

	if _, err := repo.StoreWays([]overpass.Element{sampleWay(100, "new")}, "b"); err != nil {
		t.Fatalf("second StoreWays failed: %v", err)
	}

	fc, err := repo.Export("")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if len(fc.Features) != 1 {
		t.Fatalf("Expected 1 feature after replace, got %d", len(fc.Features))
	}

	if fc.Features[0].Properties["name"] != "new" {
		t.Errorf("Expected replaced name, got %v", fc.Features[0].Properties["name"])
	}
}

func TestExportFilterAndListTypes(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	if _, err := repo.StoreWays([]overpass.Element{sampleWay(1, "a")}, "bike_lanes"); err != nil {
		t.Fatalf("StoreWays failed: %v", err)
	}

	if _, err := repo.StoreWays([]overpass.Element{sampleWay(2, "b")}, "smooth"); err != nil {
		t.Fatalf("StoreWays failed: %v", err)
	}

	types, err := repo.ListTypes()
	if err != nil {
		t.Fatalf("ListTypes failed: %v", err)
	}

	if len(types) != 2 || types[0] != "bike_lanes" || types[1] != "smooth" {
		t.Errorf("Unexpected types: %v", types)
	}

	// Filter matches regardless of case/accents.
	fc, err := repo.Export("Bike_Lanes")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if len(fc.Features) != 1 {
		t.Fatalf("Expected 1 filtered feature, got %d", len(fc.Features))
	}

	if fc.Features[0].Properties["osm_id"] != int64(1) {
		t.Errorf("Unexpected feature: %v", fc.Features[0].Properties)
	}
}
