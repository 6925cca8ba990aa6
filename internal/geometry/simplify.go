// Package geometry implements the planar geometry routines used to turn raw
// feature boundaries into indexable point and triangle sequences.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// UpperLevel is the coarsest indexing detail level. A locality index only
// needs shape fidelity at this level; finer levels are for rendering.
const UpperLevel = 17

// Simplification tolerances are pixel-scale in the working coordinate space
// (degrees): at a detail level the world spans 2^level tiles of tileSize
// pixels, and vertices within pixelEps of a pixel are not worth keeping.
// At level 17 this comes to ~4.3e-6 degrees, about half a meter, so building
// footprints survive intact.
const (
	worldSpanDeg = 360.0
	tileSizePx   = 256.0
	pixelEps     = 0.4
)

// ToleranceForLevel returns the simplification tolerance for a detail level.
// The tolerance halves per level.
func ToleranceForLevel(level int) float64 {
	return worldSpanDeg / (tileSizePx * float64(uint64(1)<<uint(level))) * pixelEps
}

// Simplify reduces a point sequence with perpendicular-distance based
// Douglas-Peucker simplification at the given detail level. Endpoints are
// preserved. Fewer than 2 input points yield an empty result, which callers
// treat as unusable geometry. The input is not modified.
func Simplify(points []orb.Point, level int) []orb.Point {
	if len(points) < 2 {
		return nil
	}

	eps := ToleranceForLevel(level)
	out := make([]orb.Point, 0, len(points))
	out = append(out, points[0])
	out = simplifyRange(points, 0, len(points)-1, eps, out)
	return append(out, points[len(points)-1])
}

// simplifyRange appends the retained interior points of points[first..last]
// to out, excluding both endpoints.
func simplifyRange(points []orb.Point, first, last int, eps float64, out []orb.Point) []orb.Point {
	if last-first < 2 {
		return out
	}

	maxDist := 0.0
	maxIdx := first
	for i := first + 1; i < last; i++ {
		d := DistanceToSegment(points[i], points[first], points[last])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= eps {
		return out
	}

	out = simplifyRange(points, first, maxIdx, eps, out)
	out = append(out, points[maxIdx])
	return simplifyRange(points, maxIdx, last, eps, out)
}

// DistanceToSegment returns the distance from p to the segment [a, b].
func DistanceToSegment(p, a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]

	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p[0]-a[0], p[1]-a[1])
	}

	// Projection parameter clamped to the segment.
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	cx := a[0] + t*dx
	cy := a[1] + t*dy
	return math.Hypot(p[0]-cx, p[1]-cy)
}
