package stream

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/ArnCarveris/geocore/internal/domain"
)

func writeFeatures(t *testing.T, path string, features []domain.Feature) {
	t.Helper()
	streams := NewStreams()
	sink, err := streams.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := range features {
		if err := sink.Write(&features[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
}

func readAll(t *testing.T, path string, size int) []domain.Feature {
	t.Helper()
	streams := NewStreams()
	source, err := streams.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	var out []domain.Feature
	err = source.ForEachChunk(context.Background(), size, func(chunk []domain.Feature) error {
		out = append(out, chunk...)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRoundtrip(t *testing.T) {
	features := []domain.Feature{
		{
			ID:    1 << 62, // exercises the full 64-bit id range
			Kind:  domain.GeomPoint,
			Point: orb.Point{13.4, 52.5},
			Tags:  map[string]string{"shop": "bakery", "name": "Backhaus"},
		},
		{
			ID:   2,
			Kind: domain.GeomLine,
			Line: []orb.Point{{0, 0}, {1, 1}, {2, 0}},
			Tags: map[string]string{"highway": "residential", "name": "Main"},
		},
		{
			ID:   3,
			Kind: domain.GeomArea,
			Rings: [][]orb.Point{
				{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
				{{0.2, 0.2}, {0.8, 0.2}, {0.8, 0.8}, {0.2, 0.2}},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "features"+Suffix)
	writeFeatures(t, path, features)

	got := readAll(t, path, 2)
	if len(got) != len(features) {
		t.Fatalf("read %d features, want %d", len(got), len(features))
	}

	for i, want := range features {
		f := got[i]
		if f.ID != want.ID || f.Kind != want.Kind {
			t.Errorf("feature %d: id/kind = %d/%v, want %d/%v", i, f.ID, f.Kind, want.ID, want.Kind)
		}
		if len(f.Tags) != len(want.Tags) {
			t.Errorf("feature %d: tags = %v, want %v", i, f.Tags, want.Tags)
		}
	}

	if got[0].Point != features[0].Point {
		t.Errorf("point = %v, want %v", got[0].Point, features[0].Point)
	}
	if len(got[1].Line) != 3 {
		t.Errorf("line has %d points, want 3", len(got[1].Line))
	}
	if len(got[2].Rings) != 2 {
		t.Errorf("area has %d rings, want 2", len(got[2].Rings))
	}
}

func TestOpenMissingFile(t *testing.T) {
	streams := NewStreams()
	_, err := streams.Open(filepath.Join(t.TempDir(), "absent"+Suffix))
	if !errors.Is(err, domain.ErrSourceNotFound) {
		t.Fatalf("error = %v, want ErrSourceNotFound", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v does not match base ErrNotFound", err)
	}
}

func TestForEachChunkSizes(t *testing.T) {
	features := make([]domain.Feature, 0, 7)
	for id := uint64(1); id <= 7; id++ {
		features = append(features, domain.Feature{ID: id, Kind: domain.GeomPoint, Point: orb.Point{1, 2}})
	}

	path := filepath.Join(t.TempDir(), "features"+Suffix)
	writeFeatures(t, path, features)

	streams := NewStreams()
	source, err := streams.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	var sizes []int
	err = source.ForEachChunk(context.Background(), 3, func(chunk []domain.Feature) error {
		sizes = append(sizes, len(chunk))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []int{3, 3, 1}
	if len(sizes) != len(want) {
		t.Fatalf("chunk sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("chunk sizes = %v, want %v", sizes, want)
		}
	}
}

func TestForEachChunkSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features"+Suffix)

	one := filepath.Join(dir, "one"+Suffix)
	writeFeatures(t, one, []domain.Feature{{ID: 1, Kind: domain.GeomPoint, Point: orb.Point{0, 0}}})
	data, err := os.ReadFile(one)
	if err != nil {
		t.Fatal(err)
	}
	// Interleave blank lines the way concatenation produces them.
	if err := os.WriteFile(path, append(append([]byte("\n"), data...), '\n', '\n'), 0o644); err != nil {
		t.Fatal(err)
	}

	got := readAll(t, path, 10)
	if len(got) != 1 {
		t.Fatalf("read %d features, want 1", len(got))
	}
}

func TestForEachChunkMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features"+Suffix)
	if err := os.WriteFile(path, []byte("not json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	streams := NewStreams()
	source, err := streams.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	err = source.ForEachChunk(context.Background(), 1, func(_ []domain.Feature) error { return nil })
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error %T is not a ParseError", err)
	}
	if parseErr.Line != 1 {
		t.Errorf("ParseError.Line = %d, want 1", parseErr.Line)
	}
}

func TestForEachChunkContextCancel(t *testing.T) {
	features := make([]domain.Feature, 0, 10)
	for id := uint64(1); id <= 10; id++ {
		features = append(features, domain.Feature{ID: id, Kind: domain.GeomPoint, Point: orb.Point{0, 0}})
	}
	path := filepath.Join(t.TempDir(), "features"+Suffix)
	writeFeatures(t, path, features)

	streams := NewStreams()
	source, err := streams.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err = source.ForEachChunk(ctx, 2, func(_ []domain.Feature) error {
		calls++
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times after cancel, want 1", calls)
	}
}

func TestCombine(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a"+Suffix)
	b := filepath.Join(dir, "b"+Suffix)
	writeFeatures(t, a, []domain.Feature{{ID: 1, Kind: domain.GeomPoint, Point: orb.Point{0, 0}}})
	writeFeatures(t, b, []domain.Feature{
		{ID: 2, Kind: domain.GeomPoint, Point: orb.Point{1, 1}},
		{ID: 3, Kind: domain.GeomPoint, Point: orb.Point{2, 2}},
	})

	streams := NewStreams()
	combined, cleanup, err := streams.Combine(a, b)
	if err != nil {
		t.Fatalf("Combine error: %v", err)
	}

	got := readAll(t, combined, 10)
	if len(got) != 3 {
		t.Fatalf("combined file has %d features, want 3", len(got))
	}

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if _, err := os.Stat(combined); !os.IsNotExist(err) {
		t.Errorf("combined file still exists after cleanup")
	}
}

func TestCombineMissingInput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a"+Suffix)
	writeFeatures(t, a, []domain.Feature{{ID: 1, Kind: domain.GeomPoint, Point: orb.Point{0, 0}}})

	streams := NewStreams()
	_, _, err := streams.Combine(a, filepath.Join(dir, "absent"+Suffix))
	if err == nil {
		t.Fatal("Combine succeeded with a missing input")
	}

	// The failed combine must not leave its temporary file behind.
	if _, statErr := os.Stat(filepath.Join(dir, "combined_features"+Suffix+".tmp")); !os.IsNotExist(statErr) {
		t.Error("temporary combined file left behind after failure")
	}
}

func TestCombineNoInputs(t *testing.T) {
	streams := NewStreams()
	if _, _, err := streams.Combine(); err == nil {
		t.Fatal("Combine succeeded with no inputs")
	}
}
