// Package osmpbf imports raw OpenStreetMap PBF extracts into the feature
// file consumed by the index generator.
package osmpbf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/cheggaaa/pb/v3"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/ArnCarveris/geocore/internal/domain"
	"github.com/ArnCarveris/geocore/internal/ports/output"
)

// Importer converts a PBF extract in two passes: the first caches node
// coordinates, the second emits features. Tagged nodes become point features;
// ways become lines, or areas when closed. Relations are not imported:
// multipolygon assembly happens in an earlier pipeline stage.
type Importer struct {
	procs    int
	progress bool
	logger   *slog.Logger
}

// Stats summarizes one import run.
type Stats struct {
	Nodes        int // Nodes cached in the first pass
	Features     int // Features written
	SkippedWays  int // Ways dropped for unresolvable node references
	MissingNodes int // Node references absent from the extract
}

// New creates an importer. procs <= 0 selects GOMAXPROCS for PBF block
// decoding; progress controls the terminal progress bar.
func New(procs int, progress bool, logger *slog.Logger) *Importer {
	if procs <= 0 {
		procs = runtime.GOMAXPROCS(0)
	}
	return &Importer{procs: procs, progress: progress, logger: logger}
}

// SetProgress toggles the terminal progress bar for subsequent imports. The
// decoding worker count is unchanged.
func (i *Importer) SetProgress(enabled bool) {
	i.progress = enabled
}

// Import reads pbfPath and writes all features to the sink. The caller owns
// closing the sink.
func (i *Importer) Import(ctx context.Context, pbfPath string, sink output.FeatureSink) (Stats, error) {
	var stats Stats

	i.logger.Info("caching node coordinates", "path", pbfPath)
	coords, err := i.cacheNodes(ctx, pbfPath, &stats)
	if err != nil {
		return stats, fmt.Errorf("caching nodes: %w", err)
	}

	i.logger.Info("emitting features", "path", pbfPath, "nodes", stats.Nodes)
	if err := i.emitFeatures(ctx, pbfPath, coords, sink, &stats); err != nil {
		return stats, fmt.Errorf("emitting features: %w", err)
	}

	i.logger.Info("import finished",
		"features", stats.Features,
		"skipped_ways", stats.SkippedWays,
		"missing_nodes", stats.MissingNodes,
	)
	return stats, nil
}

// cacheNodes runs the first pass, collecting every node's coordinates.
func (i *Importer) cacheNodes(ctx context.Context, pbfPath string, stats *Stats) (map[osm.NodeID]orb.Point, error) {
	coords := make(map[osm.NodeID]orb.Point)

	err := i.scan(ctx, pbfPath, func(obj osm.Object) error {
		if node, ok := obj.(*osm.Node); ok {
			coords[node.ID] = orb.Point{node.Lon, node.Lat}
			stats.Nodes++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coords, nil
}

// emitFeatures runs the second pass, writing point features for tagged nodes
// and line or area features for ways.
func (i *Importer) emitFeatures(
	ctx context.Context,
	pbfPath string,
	coords map[osm.NodeID]orb.Point,
	sink output.FeatureSink,
	stats *Stats,
) error {
	return i.scan(ctx, pbfPath, func(obj osm.Object) error {
		var feature *domain.Feature

		switch o := obj.(type) {
		case *osm.Node:
			if len(o.Tags) == 0 {
				return nil
			}
			feature = &domain.Feature{
				ID:    encodeID(o.FeatureID()),
				Kind:  domain.GeomPoint,
				Point: orb.Point{o.Lon, o.Lat},
				Tags:  tagMap(o.Tags),
			}

		case *osm.Way:
			points, ok := resolveWay(o, coords, stats)
			if !ok {
				stats.SkippedWays++
				return nil
			}
			feature = wayFeature(o, points)

		default:
			return nil
		}

		stats.Features++
		return sink.Write(feature)
	})
}

// scan drives one sequential pass over the PBF file.
func (i *Importer) scan(ctx context.Context, pbfPath string, fn func(osm.Object) error) error {
	f, err := os.Open(pbfPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var bar *pb.ProgressBar
	reader := io.Reader(f)
	if i.progress {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		bar = pb.Full.Start64(info.Size())
		defer bar.Finish()
		reader = bar.NewProxyReader(f)
	}

	scanner := osmpbf.New(ctx, reader, i.procs)
	defer scanner.Close()

	for scanner.Scan() {
		if err := fn(scanner.Object()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// resolveWay maps a way's node references to coordinates. Ways referencing
// nodes outside the extract are dropped rather than emitted truncated.
func resolveWay(way *osm.Way, coords map[osm.NodeID]orb.Point, stats *Stats) ([]orb.Point, bool) {
	points := make([]orb.Point, 0, len(way.Nodes))
	for _, wn := range way.Nodes {
		p, ok := coords[wn.ID]
		if !ok {
			stats.MissingNodes++
			return nil, false
		}
		points = append(points, p)
	}
	return points, len(points) >= 2
}

// wayFeature classifies a way: closed rings with enough points are areas,
// everything else is a line.
func wayFeature(way *osm.Way, points []orb.Point) *domain.Feature {
	f := &domain.Feature{
		ID:   encodeID(way.FeatureID()),
		Tags: tagMap(way.Tags),
	}

	if len(points) >= 4 && points[0] == points[len(points)-1] {
		f.Kind = domain.GeomArea
		f.Rings = [][]orb.Point{points}
	} else {
		f.Kind = domain.GeomLine
		f.Line = points
	}
	return f
}

// encodeID folds the typed OSM feature id into the stable 64-bit identifier
// carried through the rest of the pipeline.
func encodeID(id osm.FeatureID) uint64 {
	return uint64(id)
}

func tagMap(tags osm.Tags) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		m[tag.Key] = tag.Value
	}
	return m
}
