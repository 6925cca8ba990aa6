// Package application contains the application services.
package application

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/ArnCarveris/geocore/internal/domain"
	"github.com/ArnCarveris/geocore/internal/geometry"
)

// BuilderConfig holds the geometry tuning constants of the object builder.
// The defaults were validated against production map data; prefer
// configuration over re-deriving them.
type BuilderConfig struct {
	DetailLevel   int     // Simplification detail level
	HullTolerance float64 // Convex hull cross-product tolerance
}

// DefaultBuilderConfig returns the builder configuration used by the
// locality index.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		DetailLevel:   geometry.UpperLevel,
		HullTolerance: geometry.HullTolerance,
	}
}

// LocalityObjectBuilder converts one raw feature at a time into an indexable
// locality object. The instance reuses a single output slot and internal
// buffers across calls, so it must be confined to one goroutine and the
// returned object must be consumed before the next Build call.
type LocalityObjectBuilder struct {
	cfg    BuilderConfig
	logger *slog.Logger

	object domain.LocalityObject
	points []orb.Point
}

// NewLocalityObjectBuilder creates a builder.
func NewLocalityObjectBuilder(cfg BuilderConfig, logger *slog.Logger) *LocalityObjectBuilder {
	return &LocalityObjectBuilder{cfg: cfg, logger: logger}
}

// Build produces the locality object for a feature, or reports false when the
// feature has no usable indexable geometry. Degenerate geometry is a per
// feature skip, never an error: the caller logs nothing further and moves on.
func (b *LocalityObjectBuilder) Build(f *domain.Feature) (*domain.LocalityObject, bool) {
	b.object.Reset(f.ID)

	switch f.Kind {
	case domain.GeomPoint:
		b.object.SetPoints([]orb.Point{f.Point})

	case domain.GeomLine:
		pts := geometry.Simplify(f.Line, b.cfg.DetailLevel)
		if len(pts) == 0 {
			return nil, false
		}
		b.object.SetPoints(pts)

	case domain.GeomArea:
		triangles, ok := b.buildTriangles(f)
		if !ok {
			return nil, false
		}
		b.object.SetTriangles(triangles)

	default:
		return nil, false
	}

	return &b.object, true
}

// buildTriangles tessellates the outer boundary of an area feature. Holes are
// intentionally not modeled: only the outer extent matters for coverage.
func (b *LocalityObjectBuilder) buildTriangles(f *domain.Feature) ([]orb.Point, bool) {
	pts := geometry.Simplify(f.OuterRing(), b.cfg.DetailLevel)
	if len(pts) == 0 {
		return nil, false
	}

	// The ring arrives closed; the last point repeats the first.
	pts = pts[:len(pts)-1]

	if len(f.Rings) != 1 {
		// Multi-part boundary: flatten every ring's points into one
		// sequence and index the union outline.
		b.points = b.points[:0]
		for _, ring := range f.Rings {
			b.points = append(b.points, ring...)
		}
		pts = b.points
	}

	if len(pts) <= 2 {
		return nil, false
	}

	triangles, ok := geometry.MakeStrip(pts)
	if ok {
		return triangles, true
	}

	// Strip construction failed; recover with the convex hull of the same
	// point set and retry.
	hull := geometry.ConvexHull(pts, b.cfg.HullTolerance)
	if len(hull) >= 3 {
		if triangles, ok = geometry.MakeStrip(hull); ok {
			return triangles, true
		}
	}

	b.logger.Warn("failed to build triangles for object",
		"id", f.ID,
		"kind", f.Kind.String(),
		"points", pts,
		"hull", hull,
	)
	return nil, false
}
