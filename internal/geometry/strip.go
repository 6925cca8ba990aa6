package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// degenerateArea is the doubled-area threshold below which a triangle is
// considered degenerate.
const degenerateArea = 1e-16

// MakeStrip decomposes a closed polygon ring (closing duplicate already
// trimmed) into a triangle list using a single strip ordering. It tries every
// start vertex; a candidate strip is accepted only if every triangle is
// non-degenerate and every introduced diagonal stays inside the polygon. The
// method handles convex and many simple concave rings but is not a general
// triangulation: it fails on self-intersecting and awkward concave
// configurations, and the caller is expected to fall back to the convex hull.
//
// On success the returned slice holds 3 points per triangle and its length is
// a positive multiple of 3.
func MakeStrip(ring []orb.Point) ([]orb.Point, bool) {
	n := len(ring)
	if n < 3 {
		return nil, false
	}

	for start := 0; start < n; start++ {
		if order, ok := tryStrip(ring, start); ok {
			return expandStrip(ring, order), true
		}
	}
	return nil, false
}

// tryStrip builds the alternating strip order beginning at start and checks
// its validity against the ring.
func tryStrip(ring []orb.Point, start int) ([]int, bool) {
	n := len(ring)
	order := make([]int, 0, n)

	// Alternate forward and backward around the ring: start, start+1,
	// start-1, start+2, start-2, ...
	lo, hi := start, start+1
	for len(order) < n {
		if len(order)%2 == 0 {
			order = append(order, lo%n)
			lo += n - 1
		} else {
			order = append(order, hi%n)
			hi++
		}
	}

	for i := 0; i+2 < n; i++ {
		a, b, c := order[i], order[i+1], order[i+2]
		if triangleDegenerate(ring[a], ring[b], ring[c]) {
			return nil, false
		}
		// Each triangle closes with an edge between two ring vertices
		// that are not ring-adjacent; it must be a valid diagonal.
		if !diagonalVisible(ring, b, c) || !diagonalVisible(ring, a, c) {
			return nil, false
		}
	}
	return order, true
}

// expandStrip converts a strip vertex order into a flat triangle list.
func expandStrip(ring []orb.Point, order []int) []orb.Point {
	out := make([]orb.Point, 0, 3*(len(order)-2))
	for i := 0; i+2 < len(order); i++ {
		out = append(out, ring[order[i]], ring[order[i+1]], ring[order[i+2]])
	}
	return out
}

func triangleDegenerate(a, b, c orb.Point) bool {
	return math.Abs(Cross(a, b, c)) <= degenerateArea
}

// diagonalVisible reports whether the segment between ring vertices i and j
// lies inside the polygon: it crosses no ring edge and its midpoint is an
// interior point. Ring-adjacent vertices are trivially visible.
func diagonalVisible(ring []orb.Point, i, j int) bool {
	n := len(ring)
	if (i+1)%n == j || (j+1)%n == i {
		return true
	}

	for e := 0; e < n; e++ {
		f := (e + 1) % n
		if e == i || e == j || f == i || f == j {
			continue
		}
		if segmentsCross(ring[i], ring[j], ring[e], ring[f]) {
			return false
		}
	}

	mid := orb.Point{(ring[i][0] + ring[j][0]) / 2, (ring[i][1] + ring[j][1]) / 2}
	return pointInRing(mid, ring)
}

// segmentsCross reports whether segments [a,b] and [c,d] properly intersect.
func segmentsCross(a, b, c, d orb.Point) bool {
	d1 := Cross(c, d, a)
	d2 := Cross(c, d, b)
	d3 := Cross(a, b, c)
	d4 := Cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// pointInRing is a standard even-odd ray cast.
func pointInRing(p orb.Point, ring []orb.Point) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		if (ring[i][1] > p[1]) != (ring[j][1] > p[1]) &&
			p[0] < (ring[j][0]-ring[i][0])*(p[1]-ring[i][1])/(ring[j][1]-ring[i][1])+ring[i][0] {
			inside = !inside
		}
		j = i
	}
	return inside
}
