// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"

	"github.com/ArnCarveris/geocore/internal/domain"
)

// FeatureSource streams raw features sequentially in chunks. A chunk is one
// scheduling unit of the parallel pipeline; no ordering is guaranteed across
// chunks in the merged result, so a source only needs plain sequential reads.
type FeatureSource interface {
	// ForEachChunk reads the whole stream, invoking fn with consecutive
	// chunks of at most size features. A non-nil error from fn or from
	// the underlying read aborts the iteration.
	ForEachChunk(ctx context.Context, size int, fn func(chunk []domain.Feature) error) error
}

// FeatureSink persists a stream of raw features, used by the feature file
// importer and the border extractor.
type FeatureSink interface {
	Write(feature *domain.Feature) error
	Close() error
}

// FeatureStreams opens, creates and combines feature files in whatever
// container format the stream adapter implements.
type FeatureStreams interface {
	// Open opens an existing feature file for reading.
	Open(path string) (FeatureSource, error)

	// Create creates (or truncates) a feature file for writing.
	Create(path string) (FeatureSink, error)

	// Combine concatenates several feature files into one temporary file
	// and returns its path together with a cleanup function that removes
	// it. Cleanup must run on every exit path of the caller.
	Combine(paths ...string) (combinedPath string, cleanup func() error, err error)
}
