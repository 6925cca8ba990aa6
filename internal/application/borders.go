package application

import (
	"context"
	"fmt"

	"github.com/ArnCarveris/geocore/internal/domain"
)

// bordersChunkSize batches the sequential border scan; the value only bounds
// memory, there is no parallelism here.
const bordersChunkSize = 256

// ExtractBorders writes the boundary geometry of every area feature to a
// separate feature file, keyed by the source id. The border artifact serves
// consumers that need raw region outlines rather than a cell covering.
func (g *Generator) ExtractBorders(ctx context.Context, featuresPath, outPath string) error {
	source, err := g.streams.Open(featuresPath)
	if err != nil {
		return fmt.Errorf("opening features %s: %w", featuresPath, err)
	}

	sink, err := g.streams.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating borders file %s: %w", outPath, err)
	}

	written := 0
	err = source.ForEachChunk(ctx, bordersChunkSize, func(chunk []domain.Feature) error {
		for i := range chunk {
			f := &chunk[i]
			if !f.IsArea() {
				continue
			}
			border := domain.Feature{ID: f.ID, Kind: domain.GeomArea, Rings: f.Rings}
			if err := sink.Write(&border); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		_ = sink.Close()
		return fmt.Errorf("extracting borders: %w", err)
	}

	if err := sink.Close(); err != nil {
		return fmt.Errorf("closing borders file %s: %w", outPath, err)
	}

	g.logger.Info("extracted borders", "path", outPath, "features", written)
	return nil
}
