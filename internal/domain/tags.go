package domain

// Tag keys that drive feature classification. The keys follow the OSM tagging
// scheme used by the upstream feature extraction.
const (
	TagBuilding    = "building"
	TagHouseNumber = "addr:housenumber"
	TagHighway     = "highway"
	TagName        = "name"
)

// poiTagKeys are the tag keys whose presence marks a feature as a
// point of interest.
var poiTagKeys = []string{"amenity", "shop", "tourism", "leisure", "office", "craft"}

// IsBuilding reports whether the feature is a building.
func (f *Feature) IsBuilding() bool {
	return f.HasTag(TagBuilding)
}

// HasHouse reports whether the feature carries an address house number.
func (f *Feature) HasHouse() bool {
	return f.HasTag(TagHouseNumber)
}

// IsPoi reports whether the feature is a point of interest.
func (f *Feature) IsPoi() bool {
	for _, key := range poiTagKeys {
		if f.HasTag(key) {
			return true
		}
	}
	return false
}

// IsStreet reports whether the feature is a named street.
func (f *Feature) IsStreet() bool {
	return f.HasTag(TagHighway) && f.HasTag(TagName)
}
