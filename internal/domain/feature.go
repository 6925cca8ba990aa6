// Package domain contains the core types of the locality index generator.
package domain

import (
	"github.com/paulmach/orb"
)

// GeomKind classifies the geometry of a raw feature.
type GeomKind int

// Geometry kinds.
const (
	GeomUndefined GeomKind = iota
	GeomPoint
	GeomLine
	GeomArea
)

// String returns the string representation of the geometry kind.
func (k GeomKind) String() string {
	switch k {
	case GeomPoint:
		return "point"
	case GeomLine:
		return "line"
	case GeomArea:
		return "area"
	default:
		return "undefined"
	}
}

// Feature is an externally parsed map feature. The ID is the encoded 64-bit
// source-system identifier. Exactly one geometry slot is
// populated depending on Kind: Point for point features, Line for linear
// features, Rings for area boundaries (outer ring first, additional rings for
// holes or extra parts). A Feature is immutable once read from the stream.
type Feature struct {
	ID    uint64
	Kind  GeomKind
	Point orb.Point
	Line  []orb.Point
	Rings [][]orb.Point
	Tags  map[string]string
}

// Tag returns the value of the given tag, or "" if absent.
func (f *Feature) Tag(key string) string {
	if f.Tags == nil {
		return ""
	}
	return f.Tags[key]
}

// HasTag reports whether the feature carries the given tag with any value.
func (f *Feature) HasTag(key string) bool {
	return f.Tag(key) != ""
}

// IsPoint reports whether the feature has point geometry.
func (f *Feature) IsPoint() bool { return f.Kind == GeomPoint }

// IsLine reports whether the feature has linear geometry.
func (f *Feature) IsLine() bool { return f.Kind == GeomLine }

// IsArea reports whether the feature has area geometry.
func (f *Feature) IsArea() bool { return f.Kind == GeomArea }

// OuterRing returns the first boundary ring of an area feature.
func (f *Feature) OuterRing() []orb.Point {
	if len(f.Rings) == 0 {
		return nil
	}
	return f.Rings[0]
}
