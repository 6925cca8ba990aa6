package domain

import (
	"github.com/paulmach/orb"
)

// LocalityObject is the indexable representation of a feature: the encoded id
// plus either a small point list (point and line features) or a triangle list
// (area features, 3 points per triangle covering the tessellated outer
// boundary). At most one of Points and Triangles is non-empty.
//
// The object builder reuses a single LocalityObject across calls, so a caller
// must consume or copy the geometry before the next build.
type LocalityObject struct {
	ID        uint64
	Points    []orb.Point
	Triangles []orb.Point
}

// Reset clears the object for reuse, keeping the allocated buffers.
func (o *LocalityObject) Reset(id uint64) {
	o.ID = id
	o.Points = o.Points[:0]
	o.Triangles = o.Triangles[:0]
}

// SetPoints replaces the point geometry.
func (o *LocalityObject) SetPoints(points []orb.Point) {
	o.Points = append(o.Points[:0], points...)
	o.Triangles = o.Triangles[:0]
}

// SetTriangles replaces the triangle geometry. The slice length must be a
// positive multiple of 3.
func (o *LocalityObject) SetTriangles(triangles []orb.Point) {
	o.Triangles = append(o.Triangles[:0], triangles...)
	o.Points = o.Points[:0]
}

// TriangleCount returns the number of triangles.
func (o *LocalityObject) TriangleCount() int {
	return len(o.Triangles) / 3
}

// Clone returns a deep copy of the object, detached from the builder slot.
func (o *LocalityObject) Clone() LocalityObject {
	c := LocalityObject{ID: o.ID}
	if len(o.Points) > 0 {
		c.Points = append([]orb.Point(nil), o.Points...)
	}
	if len(o.Triangles) > 0 {
		c.Triangles = append([]orb.Point(nil), o.Triangles...)
	}
	return c
}
