// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import "encoding/json"

// reverseResponse mirrors the fields consumed from a Nominatim
// /reverse jsonv2 response. Everything is optional; missing-field
// policy lives in regionLabel and toResult, not in the callers.
type reverseResponse struct {
	Error       string         `json:"error"`
	OSMType     string         `json:"osm_type"`
	OSMID       int64          `json:"osm_id"`
	DisplayName string         `json:"display_name"`
	Address     reverseAddress `json:"address"`
}

type reverseAddress struct {
	State       string `json:"state"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// parseReverse decodes body into a reverseResponse. A nil body or one
// carrying an explicit error field yields ok=false: the point is
// skipped for this run.
func parseReverse(body []byte) (*reverseResponse, bool) {
	if body == nil {
		return nil, false
	}

	var r reverseResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, false
	}

	if r.Error != "" {
		return nil, false
	}

	return &r, true
}

// regionLabel picks the best available regional label: state, then
// region, then country, then the full display string. First non-empty
// wins.
func (r *reverseResponse) regionLabel() string {
	for _, candidate := range []string{
		r.Address.State,
		r.Address.Region,
		r.Address.Country,
		r.DisplayName,
	} {
		if candidate != "" {
			return candidate
		}
	}

	return ""
}

// toResult shapes the response into the cached form.
func (r *reverseResponse) toResult() Result {
	return Result{
		OSMType:     r.OSMType,
		OSMID:       r.OSMID,
		Region:      r.regionLabel(),
		Country:     r.Address.Country,
		CountryCode: r.Address.CountryCode,
	}
}
