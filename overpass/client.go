// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

// Package overpass queries the Overpass API for the skating map's POI
// and route layers.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ericabertugli/sitetools/utils/httputils"
)

// DefaultURL is the public Overpass interpreter endpoint.
const DefaultURL = "https://overpass-api.de/api/interpreter"

// fallbackBBox covers Barcelona, used when no bbox file is present.
const fallbackBBox = "41.32,2.05,41.47,2.23"

// LatLon is a coordinate as Overpass returns it.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one Overpass result element. Ways queried with `out
// center` carry Center; ways queried with `out geom` carry Geometry.
// Node coordinates are pointers so an absent field is distinguishable
// from a node at (0, 0).
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      *float64          `json:"lat"`
	Lon      *float64          `json:"lon"`
	Center   *LatLon           `json:"center"`
	Tags     map[string]string `json:"tags"`
	Geometry []LatLon          `json:"geometry"`
}

// Position returns the element's representative coordinate: its own
// for nodes, the precomputed center for ways.
func (e *Element) Position() (lon, lat float64, ok bool) {
	if e.Type == "way" {
		if e.Center == nil {
			return 0, 0, false
		}

		return e.Center.Lon, e.Center.Lat, true
	}

	if e.Lat == nil || e.Lon == nil {
		return 0, 0, false
	}

	return *e.Lon, *e.Lat, true
}

// Client posts Overpass QL queries and decodes the JSON results.
type Client struct {
	endpoint string
	client   *http.Client
}

// ClientOptions configure an Overpass client.
type ClientOptions struct {
	Endpoint        string
	UserAgent       string
	Timeout         time.Duration
	HTTPTraceWriter io.Writer
}

// NewClient creates an Overpass client. Queries can legitimately take
// minutes, so the default timeout is generous.
func NewClient(options ClientOptions) *Client {
	if options.Endpoint == "" {
		options.Endpoint = DefaultURL
	}

	if options.Timeout <= 0 {
		options.Timeout = 180 * time.Second
	}

	userAgent := "sitetools/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	transport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
		},
		Transport: &httputils.LoggingRoundTripper{
			Writer:    options.HTTPTraceWriter,
			Transport: http.DefaultTransport,
		},
	}

	return &Client{
		endpoint: options.Endpoint,
		client: &http.Client{
			Timeout:   options.Timeout,
			Transport: transport,
		},
	}
}

// Query posts an Overpass QL query and returns its elements.
func (c *Client) Query(ctx context.Context, query string) ([]Element, error) {
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("building Overpass request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying Overpass: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))

		return nil, fmt.Errorf("Overpass returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Elements []Element `json:"elements"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding Overpass response: %w", err)
	}

	return payload.Elements, nil
}

// LoadBBox reads a "south,west,north,east" bbox from path, falling
// back to the Barcelona area when the file does not exist.
func LoadBBox(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fallbackBBox
	}

	bbox := strings.TrimSpace(string(data))
	if bbox == "" {
		return fallbackBBox
	}

	return bbox
}

var (
	styleRe   = regexp.MustCompile(`(?s)\{\{style:.*?\}\}`)
	outFmtRe  = regexp.MustCompile(`\[out:\w+\]`)
	timeoutRe = regexp.MustCompile(`\[timeout:\d+\]`)
	bboxRe    = regexp.MustCompile(`\[bbox:[^\]]+\]`)
	outStmtRe = regexp.MustCompile(`(?m)out\s*(geom|body|skel|ids|meta|tags)?[^;]*;\s*$`)
	semisRe   = regexp.MustCompile(`;+`)
)

// NormalizeQuery strips settings and output statements that queries
// pasted from overpass-turbo tend to carry, so the client can impose
// its own. The remaining body is wrapped by WaysQuery.
func NormalizeQuery(query string) string {
	query = styleRe.ReplaceAllString(query, "")
	query = outFmtRe.ReplaceAllString(query, "")
	query = timeoutRe.ReplaceAllString(query, "")
	query = bboxRe.ReplaceAllString(query, "")
	query = outStmtRe.ReplaceAllString(query, "")
	query = semisRe.ReplaceAllString(query, ";")

	return strings.TrimSpace(strings.Trim(strings.TrimSpace(query), ";"))
}

// WaysQuery wraps a normalized query body with the settings the route
// importer needs: JSON output, a long server-side timeout, an optional
// bbox, and full way geometry.
func WaysQuery(body, bbox string) string {
	bboxSetting := ""
	if bbox != "" {
		bboxSetting = "[bbox:" + bbox + "]"
	}

	return fmt.Sprintf("[out:json][timeout:300]%s;%s;out geom;", bboxSetting, NormalizeQuery(body))
}
