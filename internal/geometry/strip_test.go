package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// stripArea sums the unsigned areas of the triangles in a flat triangle list.
func stripArea(triangles []orb.Point) float64 {
	area := 0.0
	for i := 0; i+2 < len(triangles); i += 3 {
		area += math.Abs(Cross(triangles[i], triangles[i+1], triangles[i+2])) / 2
	}
	return area
}

func ringArea(ring []orb.Point) float64 {
	closed := make(orb.Ring, 0, len(ring)+1)
	for _, p := range ring {
		closed = append(closed, p)
	}
	closed = append(closed, ring[0])
	return math.Abs(planar.Area(closed))
}

func TestMakeStripTriangle(t *testing.T) {
	ring := []orb.Point{{0, 0}, {1, 0}, {0, 1}}

	triangles, ok := MakeStrip(ring)
	if !ok {
		t.Fatal("MakeStrip failed on a plain triangle")
	}
	if len(triangles) != 3 {
		t.Fatalf("got %d points, want 3", len(triangles))
	}
}

func TestMakeStripConvexRings(t *testing.T) {
	tests := []struct {
		name string
		ring []orb.Point
	}{
		{"square", []orb.Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}}},
		{"pentagon", []orb.Point{{0, 0}, {4, 0}, {5, 3}, {2, 5}, {-1, 3}}},
		{"hexagon", []orb.Point{{1, 0}, {3, 0}, {4, 2}, {3, 4}, {1, 4}, {0, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triangles, ok := MakeStrip(tt.ring)
			if !ok {
				t.Fatal("MakeStrip failed")
			}
			if len(triangles)%3 != 0 {
				t.Fatalf("triangle list length %d not a multiple of 3", len(triangles))
			}
			wantTriangles := len(tt.ring) - 2
			if len(triangles)/3 != wantTriangles {
				t.Errorf("got %d triangles, want %d", len(triangles)/3, wantTriangles)
			}

			got := stripArea(triangles)
			want := ringArea(tt.ring)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("triangle area sum = %g, want ring area %g", got, want)
			}
		})
	}
}

func TestMakeStripConcaveRing(t *testing.T) {
	// An L shape. The strip must cover it exactly with interior diagonals.
	ring := []orb.Point{{0, 0}, {3, 0}, {3, 1}, {1, 1}, {1, 3}, {0, 3}}

	triangles, ok := MakeStrip(ring)
	if !ok {
		t.Fatal("MakeStrip failed on L-shaped ring")
	}

	got := stripArea(triangles)
	want := ringArea(ring)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("triangle area sum = %g, want ring area %g", got, want)
	}
}

func TestMakeStripDegenerateRings(t *testing.T) {
	tests := []struct {
		name string
		ring []orb.Point
	}{
		{"empty", nil},
		{"two points", []orb.Point{{0, 0}, {1, 1}}},
		{"collinear", []orb.Point{{0, 0}, {1, 0}, {2, 0}}},
		{"collinear many", []orb.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
		{"repeated point", []orb.Point{{0, 0}, {0, 0}, {0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if triangles, ok := MakeStrip(tt.ring); ok {
				t.Fatalf("MakeStrip succeeded with %d points, want failure", len(triangles))
			}
		})
	}
}

func TestMakeStripTriesAllStarts(t *testing.T) {
	// A concave ring whose natural start ordering produces an exterior
	// diagonal; some rotation must still succeed or the caller falls
	// back to the hull. Either outcome is valid, but on success the
	// area must match.
	ring := []orb.Point{{0, 0}, {4, 0}, {4, 4}, {2, 1}, {0, 4}}

	triangles, ok := MakeStrip(ring)
	if !ok {
		return
	}
	got := stripArea(triangles)
	want := ringArea(ring)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("triangle area sum = %g, want ring area %g", got, want)
	}
}
