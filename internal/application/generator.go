package application

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/ArnCarveris/geocore/internal/domain"
	"github.com/ArnCarveris/geocore/internal/ports/input"
	"github.com/ArnCarveris/geocore/internal/ports/output"
)

// Chunk sizes per index flavor, reflecting relative feature density and per
// feature cost. Regions are few and heavy, geo-objects many and cheap.
const (
	chunkSizeRegions           = 1
	chunkSizeGeoObjects        = 10
	chunkSizeGeoObjectsStreets = 100
)

// Index flavor names used for logging and metrics labels.
const (
	flavorRegions    = "regions"
	flavorGeoObjects = "geo_objects"
)

// GeneratorConfig holds pipeline tuning parameters.
type GeneratorConfig struct {
	Workers int           // Worker pool size; 0 means GOMAXPROCS
	Builder BuilderConfig // Geometry tuning constants
}

// Generator drives the parallel feature-to-index pipeline for every index
// flavor. It implements the input.Generator port.
type Generator struct {
	cfg     GeneratorConfig
	streams output.FeatureStreams
	coverer output.Coverer
	index   output.IndexBuilder
	metrics output.MetricsCollector
	logger  *slog.Logger
}

// NewGenerator creates a generator.
func NewGenerator(
	cfg GeneratorConfig,
	streams output.FeatureStreams,
	coverer output.Coverer,
	index output.IndexBuilder,
	metrics output.MetricsCollector,
	logger *slog.Logger,
) *Generator {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Builder == (BuilderConfig{}) {
		cfg.Builder = DefaultBuilderConfig()
	}
	return &Generator{
		cfg:     cfg,
		streams: streams,
		coverer: coverer,
		index:   index,
		metrics: metrics,
		logger:  logger,
	}
}

// GenerateRegionsIndex builds the regions locality index from the given
// feature file.
func (g *Generator) GenerateRegionsIndex(ctx context.Context, featuresPath, outPath string) error {
	source, err := g.streams.Open(featuresPath)
	if err != nil {
		return fmt.Errorf("opening features %s: %w", featuresPath, err)
	}

	return g.generate(ctx, source, RegionsFilter(), flavorRegions, chunkSizeRegions, outPath)
}

// GenerateGeoObjectsIndex builds the geo-objects locality index. When a
// streets feature file is supplied the two feature files are concatenated
// into one temporary stream so the whole build stays a single pass; the
// temporary file is removed on every exit path.
func (g *Generator) GenerateGeoObjectsIndex(ctx context.Context, req input.GeoObjectsRequest) error {
	nodes, err := ParseNodeList(req.NodesPath)
	if err != nil {
		return err
	}

	filter := GeoObjectsFilter(GeoObjectsFilterOptions{
		AllowedNodes:   nodes,
		IncludeStreets: req.StreetsPath != "",
	})

	featuresPath := req.FeaturesPath
	chunkSize := chunkSizeGeoObjects

	if req.StreetsPath != "" {
		combined, cleanup, err := g.streams.Combine(req.FeaturesPath, req.StreetsPath)
		if err != nil {
			return fmt.Errorf("combining feature files: %w", err)
		}
		defer func() {
			if err := cleanup(); err != nil {
				g.logger.Warn("failed to remove combined feature file", "path", combined, "error", err)
			}
		}()

		featuresPath = combined
		chunkSize = chunkSizeGeoObjectsStreets
	}

	source, err := g.streams.Open(featuresPath)
	if err != nil {
		return fmt.Errorf("opening features %s: %w", featuresPath, err)
	}

	return g.generate(ctx, source, filter, flavorGeoObjects, chunkSize, req.OutPath)
}

// generate runs the scatter-gather pipeline: a sequential reader partitions
// the stream into chunks, a fixed pool of workers filters, builds and covers
// features into private accumulators, and the partial coverings are merged
// sequentially after the pool joins.
func (g *Generator) generate(
	ctx context.Context,
	source output.FeatureSource,
	filter FeatureFilter,
	flavor string,
	chunkSize int,
	outPath string,
) error {
	start := time.Now()
	g.logger.Info("covering feature geometry",
		"flavor", flavor,
		"workers", g.cfg.Workers,
		"chunk_size", chunkSize,
	)

	chunks := make(chan []domain.Feature, g.cfg.Workers)
	readErr := make(chan error, 1)
	go func() {
		defer close(chunks)
		readErr <- source.ForEachChunk(ctx, chunkSize, func(chunk []domain.Feature) error {
			chunks <- chunk
			return nil
		})
	}()

	// One private builder and one private accumulator per worker for its
	// whole run; the only synchronization point is the pool join.
	parts := make([]domain.Covering, g.cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < g.cfg.Workers; w++ {
		wg.Add(1)
		go func(part *domain.Covering) {
			defer wg.Done()
			builder := NewLocalityObjectBuilder(g.cfg.Builder, g.logger)
			for chunk := range chunks {
				for i := range chunk {
					g.processFeature(builder, filter, &chunk[i], part, flavor)
				}
			}
		}(&parts[w])
	}
	wg.Wait()

	if err := <-readErr; err != nil {
		return fmt.Errorf("reading feature stream: %w", err)
	}

	g.logger.Info("merging geometry coverings", "flavor", flavor)
	var merged domain.Covering
	for i := range parts {
		merged.Merge(&parts[i])
	}
	g.metrics.AddCoveringEntries(flavor, merged.Len())

	g.logger.Info("building locality index", "path", outPath, "entries", merged.Len())
	if err := g.index.Build(ctx, &merged, outPath); err != nil {
		return &domain.IndexError{Path: outPath, Err: err}
	}

	g.metrics.ObserveGenerateDuration(flavor, time.Since(start))
	g.logger.Info("finished locality index",
		"flavor", flavor,
		"path", outPath,
		"duration", time.Since(start),
	)
	return nil
}

// processFeature handles a single feature on a worker: filter, build, cover.
// A feature that cannot be built is dropped; the pipeline continues.
func (g *Generator) processFeature(
	builder *LocalityObjectBuilder,
	filter FeatureFilter,
	f *domain.Feature,
	into *domain.Covering,
	flavor string,
) {
	if !filter(f) {
		g.metrics.IncFeature(flavor, output.OutcomeFiltered)
		return
	}

	object, ok := builder.Build(f)
	if !ok {
		g.metrics.IncFeature(flavor, output.OutcomeSkipped)
		return
	}

	g.coverer.Cover(object, into)
	g.metrics.IncFeature(flavor, output.OutcomeAccepted)
}
