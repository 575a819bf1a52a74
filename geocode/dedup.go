// Copyright 2026 The SiteTools Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

// RegionSet holds deduplicated regions, iterable in first-seen order.
type RegionSet struct {
	byRef map[EntityRef]*Region
	order []EntityRef
}

// Deduplicate groups annotated points by OSM entity into unique
// regions. Skipped points and points without an entity id are ignored.
// The first occurrence's labels become the region's canonical ones;
// later points with differing labels are accumulated but never
// reconcile the metadata. Differing labels for one entity id are rare
// enough that first-write-wins is an accepted approximation.
func Deduplicate(points []AnnotatedPoint) *RegionSet {
	s := &RegionSet{
		byRef: map[EntityRef]*Region{},
	}

	for _, p := range points {
		if p.Skipped || p.Result.OSMID == 0 {
			continue
		}

		ref := EntityRef{Type: p.Result.OSMType, ID: p.Result.OSMID}

		region, ok := s.byRef[ref]
		if !ok {
			region = &Region{
				Ref:         ref,
				Name:        p.Result.Region,
				Country:     p.Result.Country,
				CountryCode: p.Result.CountryCode,
			}
			s.byRef[ref] = region
			s.order = append(s.order, ref)
		}

		region.Points = append(region.Points, p)
	}

	return s
}

// Regions returns the unique regions in first-seen order.
func (s *RegionSet) Regions() []*Region {
	regions := make([]*Region, 0, len(s.order))
	for _, ref := range s.order {
		regions = append(regions, s.byRef[ref])
	}

	return regions
}

// Get returns the region for ref, if present.
func (s *RegionSet) Get(ref EntityRef) (*Region, bool) {
	r, ok := s.byRef[ref]

	return r, ok
}

// Len returns the number of unique regions.
func (s *RegionSet) Len() int {
	return len(s.order)
}
