// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Store is the cache surface the resolver needs. The file-backed Cache
// is the production implementation; tests inject an in-memory one.
type Store interface {
	Get(key string) (Result, bool)
	Put(key string, r Result)
	Flush() error
}

// Cache is the durable reverse-geocoding cache: a JSON object mapping
// rounded "lat,lon" keys to results, loaded wholesale at startup and
// overwritten in place on every flush. Pretty-printed so the checked-in
// file diffs cleanly between runs.
type Cache struct {
	path    string
	entries map[string]Result
}

// Key quantizes a coordinate to six decimal places (about 0.11 m) and
// renders it deterministically, so the same point maps to the same
// entry across runs. Nearby points within the rounding tolerance share
// an entry on purpose: a small cross-assignment risk traded for cache
// reuse.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}

// LoadCache reads the cache at path. A missing or unparsable file
// yields an empty cache, never an error: corruption only costs this
// run the cache's benefit.
func LoadCache(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: map[string]Result{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN reading geocode cache %s: %s - starting empty", path, err)
		}

		return c
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.Printf("WARN corrupt geocode cache %s: %s - starting empty", path, err)
		c.entries = map[string]Result{}
	}

	return c
}

// Get returns the cached result for key, if any.
func (c *Cache) Get(key string) (Result, bool) {
	r, ok := c.entries[key]

	return r, ok
}

// Put inserts a result. Skipped lookups are never inserted.
func (c *Cache) Put(key string, r Result) {
	c.entries[key] = r
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Flush overwrites the cache file with the full current state. Written
// to a temp file and renamed so an interrupted run never leaves a
// half-written cache behind. Safe to call repeatedly mid-run.
func (c *Cache) Flush() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling geocode cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("writing temp cache file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("replacing cache file: %w", err)
	}

	return nil
}
