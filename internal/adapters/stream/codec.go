// Package stream implements the feature file container: newline-delimited
// GeoJSON, one feature per line, with the encoded source id and the raw tags
// carried as properties.
package stream

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ArnCarveris/geocore/internal/domain"
)

// Property keys used in the container format. The id is stored as a decimal
// string because encoded ids use the full 64-bit range and JSON numbers do
// not survive it.
const (
	propID   = "id"
	propTags = "tags"
)

// encodeFeature converts a domain feature to its GeoJSON representation.
func encodeFeature(f *domain.Feature) (*geojson.Feature, error) {
	var geom orb.Geometry
	switch f.Kind {
	case domain.GeomPoint:
		geom = f.Point
	case domain.GeomLine:
		geom = orb.LineString(f.Line)
	case domain.GeomArea:
		poly := make(orb.Polygon, 0, len(f.Rings))
		for _, ring := range f.Rings {
			poly = append(poly, orb.Ring(ring))
		}
		geom = poly
	default:
		return nil, fmt.Errorf("feature %d: unsupported geometry kind %q", f.ID, f.Kind)
	}

	out := geojson.NewFeature(geom)
	out.Properties[propID] = strconv.FormatUint(f.ID, 10)
	if len(f.Tags) > 0 {
		out.Properties[propTags] = f.Tags
	}
	return out, nil
}

// decodeFeature converts one GeoJSON line back into a domain feature.
func decodeFeature(data []byte) (domain.Feature, error) {
	gf, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return domain.Feature{}, err
	}

	idStr, _ := gf.Properties[propID].(string)
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return domain.Feature{}, fmt.Errorf("feature id property %q: %w", idStr, err)
	}

	f := domain.Feature{ID: id, Tags: decodeTags(gf.Properties[propTags])}

	switch geom := gf.Geometry.(type) {
	case orb.Point:
		f.Kind = domain.GeomPoint
		f.Point = geom
	case orb.LineString:
		f.Kind = domain.GeomLine
		f.Line = geom
	case orb.Polygon:
		f.Kind = domain.GeomArea
		f.Rings = ringsOf(geom)
	case orb.MultiPolygon:
		f.Kind = domain.GeomArea
		for _, poly := range geom {
			f.Rings = append(f.Rings, ringsOf(poly)...)
		}
	default:
		return domain.Feature{}, fmt.Errorf("feature %d: unsupported geometry type %T", id, gf.Geometry)
	}

	return f, nil
}

func ringsOf(poly orb.Polygon) [][]orb.Point {
	rings := make([][]orb.Point, 0, len(poly))
	for _, ring := range poly {
		rings = append(rings, []orb.Point(ring))
	}
	return rings
}

// decodeTags converts the unmarshaled tags property back to a string map.
func decodeTags(v interface{}) map[string]string {
	raw, ok := v.(map[string]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}
	tags := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			tags[k] = s
		}
	}
	return tags
}
