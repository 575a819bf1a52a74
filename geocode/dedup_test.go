// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotated(name string, osmType string, osmID int64, region string) AnnotatedPoint {
	return AnnotatedPoint{
		RawPoint: RawPoint{Name: name},
		Result: Result{
			OSMType:     osmType,
			OSMID:       osmID,
			Region:      region,
			Country:     "Testland",
			CountryCode: "tl",
		},
	}
}

func TestDeduplicate(t *testing.T) {
	points := []AnnotatedPoint{
		annotated("a", "relation", 123, "Alpha"),
		{RawPoint: RawPoint{Name: "skipped"}, Skipped: true},
		annotated("b", "relation", 123, "Alpha"),
		annotated("c", "relation", 456, "Beta"),
	}

	set := Deduplicate(points)

	require.Equal(t, 2, set.Len())

	regions := set.Regions()
	assert.Equal(t, EntityRef{Type: "relation", ID: 123}, regions[0].Ref)
	assert.Len(t, regions[0].Points, 2)
	assert.Equal(t, EntityRef{Type: "relation", ID: 456}, regions[1].Ref)
	assert.Len(t, regions[1].Points, 1)
}

func TestDeduplicateFirstLabelWins(t *testing.T) {
	points := []AnnotatedPoint{
		annotated("a", "relation", 123, "First name"),
		annotated("b", "relation", 123, "Second name"),
	}

	set := Deduplicate(points)

	region, ok := set.Get(EntityRef{Type: "relation", ID: 123})
	require.True(t, ok)
	assert.Equal(t, "First name", region.Name)
	assert.Len(t, region.Points, 2)
}

func TestDeduplicateDistinguishesEntityTypes(t *testing.T) {
	points := []AnnotatedPoint{
		annotated("a", "relation", 99, "R"),
		annotated("b", "way", 99, "W"),
	}

	assert.Equal(t, 2, Deduplicate(points).Len())
}

func TestDeduplicateIgnoresMissingIDs(t *testing.T) {
	points := []AnnotatedPoint{
		{RawPoint: RawPoint{Name: "no id"}, Result: Result{OSMType: "relation"}},
		annotated("ok", "relation", 1, "One"),
	}

	assert.Equal(t, 1, Deduplicate(points).Len())
}

func TestDeduplicatePreservesFirstSeenOrder(t *testing.T) {
	points := []AnnotatedPoint{
		annotated("c", "relation", 3, "C"),
		annotated("a", "relation", 1, "A"),
		annotated("c2", "relation", 3, "C"),
		annotated("b", "relation", 2, "B"),
	}

	var ids []int64
	for _, r := range Deduplicate(points).Regions() {
		ids = append(ids, r.Ref.ID)
	}

	assert.Equal(t, []int64{3, 1, 2}, ids)
}
