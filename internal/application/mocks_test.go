package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ArnCarveris/geocore/internal/domain"
	"github.com/ArnCarveris/geocore/internal/ports/output"
)

// mockStreams implements output.FeatureStreams over in-memory feature slices
// keyed by path.
type mockStreams struct {
	files map[string][]domain.Feature

	opened     []string
	lastSource *mockSource
	sinks      map[string]*mockSink
	combineErr error
	cleanedUp  bool
}

func newMockStreams(files map[string][]domain.Feature) *mockStreams {
	return &mockStreams{
		files: files,
		sinks: make(map[string]*mockSink),
	}
}

func (m *mockStreams) Open(path string) (output.FeatureSource, error) {
	features, ok := m.files[path]
	if !ok {
		return nil, domain.ErrSourceNotFound
	}
	m.opened = append(m.opened, path)
	m.lastSource = &mockSource{features: features}
	return m.lastSource, nil
}

func (m *mockStreams) Create(path string) (output.FeatureSink, error) {
	sink := &mockSink{}
	m.sinks[path] = sink
	return sink, nil
}

func (m *mockStreams) Combine(paths ...string) (string, func() error, error) {
	if m.combineErr != nil {
		return "", nil, m.combineErr
	}

	var combined []domain.Feature
	for _, path := range paths {
		features, ok := m.files[path]
		if !ok {
			return "", nil, fmt.Errorf("combine: %s: %w", path, domain.ErrSourceNotFound)
		}
		combined = append(combined, features...)
	}

	path := "combined"
	m.files[path] = combined
	cleanup := func() error {
		m.cleanedUp = true
		delete(m.files, path)
		return nil
	}
	return path, cleanup, nil
}

// mockSource implements output.FeatureSource and records the chunk size it
// was driven with.
type mockSource struct {
	features  []domain.Feature
	readErr   error
	chunkSize int
}

func (m *mockSource) ForEachChunk(ctx context.Context, size int, fn func(chunk []domain.Feature) error) error {
	m.chunkSize = size
	for start := 0; start < len(m.features); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + size
		if end > len(m.features) {
			end = len(m.features)
		}
		chunk := make([]domain.Feature, end-start)
		copy(chunk, m.features[start:end])
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return m.readErr
}

// mockSink implements output.FeatureSink, recording written features.
type mockSink struct {
	features []domain.Feature
	writeErr error
	closed   bool
}

func (m *mockSink) Write(feature *domain.Feature) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.features = append(m.features, *feature)
	return nil
}

func (m *mockSink) Close() error {
	m.closed = true
	return nil
}

// mockCoverer implements output.Coverer deterministically: one entry whose
// cell equals the object id.
type mockCoverer struct{}

func (m *mockCoverer) Cover(object *domain.LocalityObject, into *domain.Covering) {
	into.Append(domain.CellID(object.ID), object.ID)
}

// mockIndexBuilder implements output.IndexBuilder, capturing the merged
// covering.
type mockIndexBuilder struct {
	buildErr error

	built    bool
	outPath  string
	captured []domain.CoveringEntry
}

func (m *mockIndexBuilder) Build(_ context.Context, covering *domain.Covering, outPath string) error {
	if m.buildErr != nil {
		return m.buildErr
	}
	m.built = true
	m.outPath = outPath
	m.captured = append([]domain.CoveringEntry(nil), covering.Entries()...)
	return nil
}

// countingMetrics implements output.MetricsCollector, counting outcomes.
type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	entries  int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{outcomes: make(map[string]int)}
}

func (c *countingMetrics) IncFeature(_ string, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[outcome]++
}

func (c *countingMetrics) AddCoveringEntries(_ string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries += n
}

func (c *countingMetrics) ObserveGenerateDuration(_ string, _ time.Duration) {}

func (c *countingMetrics) IncStorageOperations(_ string, _ bool) {}

func (c *countingMetrics) count(outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[outcome]
}
