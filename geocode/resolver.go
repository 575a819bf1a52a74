// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"time"
)

const (
	// reverseZoom asks Nominatim for locality-level entities rather
	// than house numbers.
	reverseZoom = 5

	// flushEvery bounds data loss on an external kill to at most
	// flushEvery-1 unsaved lookups.
	flushEvery = 10

	// statusEvery controls how often a status line with ETA is logged,
	// counted in points that needed a network call.
	statusEvery = 10
)

// Resolver drives the fetcher and cache across an ordered point list.
type Resolver struct {
	fetcher *Fetcher
	baseURL string
	store   Store
}

// NewResolver creates a resolver talking to the Nominatim instance at
// baseURL, using store for lookups and persistence.
func NewResolver(fetcher *Fetcher, baseURL string, store Store) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		baseURL: baseURL,
		store:   store,
	}
}

// Resolve annotates every point, in input order, with its reverse
// geocoding result. Cache hits cost nothing; misses go to the network
// one at a time under the fetcher's mandatory spacing. The cache is
// flushed every few new entries and once more after the loop, so an
// interrupted run resumes close to where it stopped.
func (r *Resolver) Resolve(ctx context.Context, points []RawPoint) []AnnotatedPoint {
	annotated := make([]AnnotatedPoint, 0, len(points))
	progress := newTracker(len(points))
	newEntries := 0

	for i, p := range points {
		key := Key(p.Lat, p.Lon)

		if result, ok := r.store.Get(key); ok {
			annotated = append(annotated, AnnotatedPoint{RawPoint: p, Result: result})
			progress.hit()

			continue
		}

		log.Printf("[%d/%d] Reverse geocoding %q (%s)", i+1, len(points), p.Name, key)

		start := time.Now()
		body := r.fetcher.FetchJSON(ctx, r.reverseURL(p))

		resp, ok := parseReverse(body)
		if !ok {
			annotated = append(annotated, AnnotatedPoint{RawPoint: p, Skipped: true})
			progress.skip()
			log.Printf("WARN [%d/%d] no usable geocode for %q (%s), skipping", i+1, len(points), p.Name, key)
		} else {
			result := resp.toResult()
			r.store.Put(key, result)

			newEntries++

			annotated = append(annotated, AnnotatedPoint{RawPoint: p, Result: result})
			progress.fetchedIn(time.Since(start))

			if newEntries%flushEvery == 0 {
				if err := r.store.Flush(); err != nil {
					log.Printf("WARN flushing geocode cache: %s", err)
				}
			}
		}

		if lookups := progress.fetched + progress.skipped; lookups > 0 && lookups%statusEvery == 0 {
			log.Printf("Resolve progress - %s", progress.status())
		}
	}

	// Flush once more even if the last batch added nothing new.
	if err := r.store.Flush(); err != nil {
		log.Printf("WARN flushing geocode cache: %s", err)
	}

	log.Printf("Resolve phase complete - %s", progress.summary())

	return annotated
}

func (r *Resolver) reverseURL(p RawPoint) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	params.Set("format", "jsonv2")
	params.Set("zoom", strconv.Itoa(reverseZoom))
	params.Set("addressdetails", "1")

	return r.baseURL + "/reverse?" + params.Encode()
}
