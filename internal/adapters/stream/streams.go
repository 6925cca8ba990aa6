package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ArnCarveris/geocore/internal/domain"
	"github.com/ArnCarveris/geocore/internal/ports/output"
)

// Suffix is the canonical feature file extension.
const Suffix = ".geojsonl"

// Scanner buffer sizing: features with large boundaries produce long lines.
const (
	scanInitialBuffer = 64 * 1024
	scanMaxBuffer     = 64 * 1024 * 1024
)

// Streams implements the output.FeatureStreams port over local files.
type Streams struct{}

// NewStreams creates the stream factory.
func NewStreams() *Streams {
	return &Streams{}
}

// Open opens an existing feature file for chunked reading.
func (s *Streams) Open(path string) (output.FeatureSource, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrSourceNotFound)
		}
		return nil, err
	}
	return &Source{path: path}, nil
}

// Create creates or truncates a feature file for writing.
func (s *Streams) Create(path string) (output.FeatureSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{f: f, w: bufio.NewWriter(f)}, nil
}

// Combine concatenates feature files into one temporary file next to the
// first input, so a multi-source run stays a single pass. The returned
// cleanup removes the temporary file and must run on every exit path.
func (s *Streams) Combine(paths ...string) (string, func() error, error) {
	if len(paths) == 0 {
		return "", nil, fmt.Errorf("combine: no input files")
	}

	dir := filepath.Dir(paths[0])
	combined := filepath.Join(dir, "combined_features"+Suffix+".tmp")

	out, err := os.Create(combined)
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error { return os.Remove(combined) }

	for _, path := range paths {
		if err := appendFile(out, path); err != nil {
			_ = out.Close()
			_ = cleanup()
			return "", nil, fmt.Errorf("appending %s: %w", path, err)
		}
	}
	if err := out.Close(); err != nil {
		_ = cleanup()
		return "", nil, err
	}

	return combined, cleanup, nil
}

// appendFile appends the contents of path to out, guaranteeing a trailing
// line break so feature lines never merge across file boundaries.
func appendFile(out *os.File, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return err
	}
	if n > 0 {
		if _, err := out.WriteString("\n"); err != nil {
			return err
		}
	}
	return nil
}

// Source reads a feature file sequentially in chunks. It implements
// output.FeatureSource.
type Source struct {
	path string
}

// ForEachChunk reads the whole file, invoking fn with consecutive chunks of
// at most size features. Blank lines are skipped, so concatenated files read
// cleanly. A malformed line is fatal: the stream is the product of earlier
// pipeline stages and damage means the whole artifact is suspect.
func (s *Source) ForEachChunk(ctx context.Context, size int, fn func(chunk []domain.Feature) error) error {
	if size <= 0 {
		size = 1
	}

	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, scanInitialBuffer), scanMaxBuffer)

	chunk := make([]domain.Feature, 0, size)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		feature, err := decodeFeature(line)
		if err != nil {
			return &domain.ParseError{File: s.path, Line: lineNumber, Text: string(line), Err: err}
		}

		chunk = append(chunk, feature)
		if len(chunk) == size {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = make([]domain.Feature, 0, size)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	if len(chunk) > 0 {
		return fn(chunk)
	}
	return nil
}

// Sink writes features to a file, one GeoJSON line each. It implements
// output.FeatureSink.
type Sink struct {
	f *os.File
	w *bufio.Writer
}

// Write appends one feature.
func (s *Sink) Write(feature *domain.Feature) error {
	gf, err := encodeFeature(feature)
	if err != nil {
		return err
	}
	data, err := gf.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}
