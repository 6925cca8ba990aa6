package application

import (
	"github.com/ArnCarveris/geocore/internal/domain"
)

// FeatureFilter decides whether a raw feature participates in an index
// flavor. Filters are pure predicates, safe to share across workers.
type FeatureFilter func(f *domain.Feature) bool

// RegionsFilter accepts area features only.
func RegionsFilter() FeatureFilter {
	return func(f *domain.Feature) bool {
		return f.IsArea()
	}
}

// GeoObjectsFilterOptions configures the geo-objects filter.
type GeoObjectsFilterOptions struct {
	// AllowedNodes restricts points of interest to these encoded ids.
	// POI features are only considered at all when the set is non-empty.
	AllowedNodes map[uint64]struct{}

	// IncludeStreets additionally accepts street features, used when the
	// streets feature file is merged into the geo-objects run.
	IncludeStreets bool
}

// GeoObjectsFilter accepts buildings, addressed features, allow-listed points
// of interest and, optionally, streets.
func GeoObjectsFilter(opts GeoObjectsFilterOptions) FeatureFilter {
	allowPoi := len(opts.AllowedNodes) > 0

	return func(f *domain.Feature) bool {
		if f.IsBuilding() || f.HasHouse() {
			return true
		}

		if opts.IncludeStreets && f.IsStreet() {
			return true
		}

		if allowPoi && f.IsPoi() {
			_, ok := opts.AllowedNodes[f.ID]
			return ok
		}

		return false
	}
}
