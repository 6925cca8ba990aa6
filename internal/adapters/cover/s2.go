// Package cover computes spatial cell coverings of locality objects using
// the S2 cell decomposition.
package cover

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"

	"github.com/ArnCarveris/geocore/internal/domain"
)

// Config holds the coverer parameters. Defaults balance index size against
// query precision for city-scale objects.
type Config struct {
	MaxLevel int // Finest cell level used
	MaxCells int // Covering budget per region
}

// DefaultConfig returns the covering configuration of the locality index.
func DefaultConfig() Config {
	return Config{MaxLevel: 17, MaxCells: 16}
}

// S2Coverer implements the output.Coverer port. It is stateless and safe for
// concurrent use; each call appends into the caller-owned accumulator only.
type S2Coverer struct {
	cfg Config
}

// New creates an S2 coverer.
func New(cfg Config) *S2Coverer {
	if cfg.MaxLevel <= 0 {
		cfg = DefaultConfig()
	}
	return &S2Coverer{cfg: cfg}
}

// Cover appends the covering cells of the object geometry. Cells are
// deduplicated per object, so one object contributes each cell at most once.
func (c *S2Coverer) Cover(object *domain.LocalityObject, into *domain.Covering) {
	coverer := &s2.RegionCoverer{
		MinLevel: 0,
		MaxLevel: c.cfg.MaxLevel,
		LevelMod: 1,
		MaxCells: c.cfg.MaxCells,
	}

	seen := make(map[domain.CellID]struct{})
	add := func(cells s2.CellUnion) {
		for _, cell := range cells {
			id := domain.CellID(cell)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			into.Append(id, object.ID)
		}
	}

	switch {
	case len(object.Triangles) > 0:
		for i := 0; i+2 < len(object.Triangles); i += 3 {
			add(coverer.Covering(triangleLoop(object.Triangles[i : i+3])))
		}

	case len(object.Points) == 1:
		add(s2.CellUnion{s2.CellIDFromLatLng(latLng(object.Points[0])).Parent(c.cfg.MaxLevel)})

	case len(object.Points) > 1:
		add(coverer.Covering(polyline(object.Points)))
	}
}

// triangleLoop builds a normalized S2 loop for one triangle. Strip triangles
// alternate winding, so loops covering more than half the sphere are
// inverted.
func triangleLoop(triangle []orb.Point) *s2.Loop {
	points := make([]s2.Point, 0, 3)
	for _, p := range triangle {
		points = append(points, s2.PointFromLatLng(latLng(p)))
	}
	loop := s2.LoopFromPoints(points)
	if loop.Area() > 2*math.Pi {
		loop.Invert()
	}
	return loop
}

func polyline(points []orb.Point) *s2.Polyline {
	lls := make([]s2.LatLng, 0, len(points))
	for _, p := range points {
		lls = append(lls, latLng(p))
	}
	return s2.PolylineFromLatLngs(lls)
}

func latLng(p orb.Point) s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat(), p.Lon())
}
