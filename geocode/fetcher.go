// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericabertugli/sitetools/utils/httputils"
)

// FetcherOptions configure a Fetcher.
type FetcherOptions struct {
	// UserAgent identifies this client and a contact point, as the
	// Nominatim usage policy requires.
	UserAgent string

	// MinInterval is the mandatory spacing between consecutive
	// requests to the upstream service.
	MinInterval time.Duration

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// Retries is the attempt budget per URL.
	Retries int

	// HTTPTraceWriter enables light request/response tracing when set.
	HTTPTraceWriter io.Writer
}

// Fetcher performs single JSON GETs against a rate-limited upstream.
// Every attempt, successful or not, passes through the shared limiter,
// so the mandatory inter-request spacing holds across retries and
// across the resolve and boundary phases.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retries int
	backoff func(time.Duration) // replaced in tests
}

// NewFetcher creates a fetcher honoring the upstream usage policy.
func NewFetcher(options FetcherOptions) *Fetcher {
	if options.MinInterval <= 0 {
		options.MinInterval = 1100 * time.Millisecond
	}

	if options.Timeout <= 0 {
		options.Timeout = 15 * time.Second
	}

	if options.Retries <= 0 {
		options.Retries = 3
	}

	userAgent := "sitetools/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	transport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		Transport: &httputils.LoggingRoundTripper{
			Writer:    options.HTTPTraceWriter,
			DumpBody:  false,
			Transport: http.DefaultTransport,
		},
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   options.Timeout,
			Transport: transport,
		},
		// Burst 1: the first request goes out immediately, every
		// later one waits out the full interval.
		limiter: rate.NewLimiter(rate.Every(options.MinInterval), 1),
		retries: options.Retries,
		backoff: time.Sleep,
	}
}

// FetchJSON gets url and returns the raw body, or nil once the retry
// budget is exhausted. Absence of data is a normal outcome for the
// caller, never an error: a point or region without a response is
// skipped and retried on a future run.
func (f *Fetcher) FetchJSON(ctx context.Context, url string) []byte {
	var lastErr string

	attempts := 0

	for attempt := 1; attempt <= f.retries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			log.Printf("WARN fetch aborted after %d attempts: %s", attempts, err)

			return nil
		}

		attempts++

		body, retryable, reason := f.attempt(ctx, url)
		if body != nil {
			return body
		}

		lastErr = reason

		if !retryable {
			break
		}

		if attempt < f.retries {
			// 2^attempt seconds, for transient failures and 429s alike.
			f.backoff(time.Duration(1<<attempt) * time.Second)
		}
	}

	log.Printf("WARN no result for %s after %d attempts: %s", url, attempts, lastErr)

	return nil
}

// attempt performs one GET. It reports the body on success, and
// otherwise whether the failure is worth another attempt.
func (f *Fetcher) attempt(ctx context.Context, url string) (body []byte, retryable bool, reason string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, "building request: " + err.Error()
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Timeouts and network errors count as plain failures.
		return nil, true, err.Error()
	}

	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		log.Printf("WARN rate limited by upstream on %s, backing off", url)

		return nil, true, "HTTP 429"
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, true, "HTTP " + resp.Status
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, "reading body: " + err.Error()
	}

	if !json.Valid(data) {
		return nil, true, "malformed JSON body"
	}

	return data, true, ""
}
