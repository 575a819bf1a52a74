// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"fmt"
	"time"

	"github.com/ericabertugli/sitetools/utils"
)

// tracker accumulates resolve-phase accounting so the resolver's core
// loop stays free of timing concerns. ETA is based on an exponential
// moving average of per-lookup durations.
type tracker struct {
	total   int
	hits    int
	fetched int
	skipped int
	started time.Time
	avg     time.Duration
}

func newTracker(total int) *tracker {
	return &tracker{
		total:   total,
		started: time.Now(),
	}
}

func (t *tracker) hit() {
	t.hits++
}

func (t *tracker) fetchedIn(d time.Duration) {
	t.fetched++

	if t.avg == 0 {
		t.avg = d
	} else {
		// Weight recent lookups more; upstream latency drifts.
		t.avg = (t.avg*4 + d) / 5
	}
}

func (t *tracker) skip() {
	t.skipped++
}

// remaining counts points not yet seen at all.
func (t *tracker) remaining() int {
	return t.total - t.hits - t.fetched - t.skipped
}

// eta estimates time left assuming every remaining point needs a
// lookup. Zero when nothing was fetched yet: with no samples there is
// nothing to average over.
func (t *tracker) eta() time.Duration {
	if t.fetched == 0 {
		return 0
	}

	return t.avg * time.Duration(t.remaining())
}

func (t *tracker) status() string {
	s := fmt.Sprintf(
		"%s/%s points, %s cache hits, %s geocoded, %s skipped",
		utils.FormatInt(int64(t.total-t.remaining())),
		utils.FormatInt(int64(t.total)),
		utils.FormatInt(int64(t.hits)),
		utils.FormatInt(int64(t.fetched)),
		utils.FormatInt(int64(t.skipped)),
	)

	if eta := t.eta(); eta > 0 {
		s += fmt.Sprintf(", ETA %s", eta.Round(time.Second))
	}

	return s
}

// summary is the end-of-phase report with hit ratio and elapsed time.
func (t *tracker) summary() string {
	ratio := 0.0
	if t.total > 0 {
		ratio = float64(t.hits) / float64(t.total)
	}

	return fmt.Sprintf(
		"%s points resolved in %s - %.0f%% cache hits, %s lookups, %s skipped",
		utils.FormatInt(int64(t.total)),
		time.Since(t.started).Round(time.Second),
		ratio*100,
		utils.FormatInt(int64(t.fetched)),
		utils.FormatInt(int64(t.skipped)),
	)
}
