package geometry

import (
	"sort"

	"github.com/paulmach/orb"
)

// HullTolerance is the cross-product tolerance used when deciding whether a
// point lies on the hull boundary. The value was tuned against production map
// data and must not be changed casually.
const HullTolerance = 1e-16

// ConvexHull computes the 2D convex hull of the given points using the
// monotone chain algorithm. The result is an open ring in counterclockwise
// order without a closing duplicate. Collinear boundary points are dropped:
// an input whose points all lie on one line yields fewer than 3 hull points.
func ConvexHull(points []orb.Point, tolerance float64) []orb.Point {
	pts := make([]orb.Point, len(points))
	copy(pts, points)

	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})
	pts = dedupe(pts)

	if len(pts) < 3 {
		return pts
	}

	// Lower hull, then upper hull.
	var hull []orb.Point
	for _, p := range pts {
		for len(hull) >= 2 && Cross(hull[len(hull)-2], hull[len(hull)-1], p) <= tolerance {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && Cross(hull[len(hull)-2], hull[len(hull)-1], p) <= tolerance {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// The last point repeats the first.
	return hull[:len(hull)-1]
}

// Cross returns the z component of (b-a) x (c-a). Positive for a left turn.
func Cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func dedupe(sorted []orb.Point) []orb.Point {
	out := sorted[:0]
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			out = append(out, p)
		}
	}
	return out
}
