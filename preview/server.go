// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

// Package preview runs a local-only web server so generated map layers
// can be eyeballed on a Leaflet map before publishing the site.
package preview

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// Server serves the data directory plus a minimal map page.
type Server struct {
	dataDir string
}

// NewServer creates a preview server over dataDir.
func NewServer(dataDir string) *Server {
	return &Server{dataDir: dataDir}
}

// Run serves on localhost only. Not meant to be exposed.
func (s *Server) Run() error {
	return s.router().Run("127.0.0.1:8080")
}

func (s *Server) router() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.index)
	r.GET("/layers", s.listLayers)
	r.Static("/data", s.dataDir)

	return r
}

func (s *Server) index(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

// listLayers reports the GeoJSON files available under the data dir so
// the map page can offer them as toggleable layers.
func (s *Server) listLayers(ctx *gin.Context) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, "*.geojson"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	layers := make([]string, 0, len(matches))
	for _, m := range matches {
		layers = append(layers, filepath.Base(m))
	}

	ctx.JSON(http.StatusOK, gin.H{"layers": layers})
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>sitetools preview</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
const map = L.map('map').setView([41.39, 2.17], 4);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

const control = L.control.layers(null, null).addTo(map);

fetch('/layers')
  .then(r => r.json())
  .then(({layers}) => layers.forEach(name => {
    fetch('/data/' + name)
      .then(r => r.json())
      .then(geojson => {
        const layer = L.geoJSON(geojson, {
          onEachFeature: (f, l) => {
            const props = f.properties || {};
            const label = props.name || props.region || '';
            if (label) l.bindPopup(label);
          }
        });
        control.addOverlay(layer, name);
        layer.addTo(map);
      });
  }));
</script>
</body>
</html>
`
