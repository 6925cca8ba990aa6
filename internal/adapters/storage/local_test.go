package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestNewLocalStorage(t *testing.T) {
	storage := NewLocalStorage("/tmp/test")

	if storage == nil {
		t.Fatal("NewLocalStorage() returned nil")
	}

	if storage.basePath != "/tmp/test" {
		t.Errorf("basePath = %q, want %q", storage.basePath, "/tmp/test")
	}
}

func TestLocalStorageList(t *testing.T) {
	tmpDir := t.TempDir()

	testFiles := []string{
		"regions.geojsonl",
		"objects.geojsonl",
		"extracts/berlin.osm.pbf",
		"ignored.txt",
		"also_ignored.sqlite",
	}

	for _, f := range testFiles {
		path := filepath.Join(tmpDir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("test"), 0o644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}

	storage := NewLocalStorage(tmpDir)
	objects, err := storage.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	// Only feature files and PBF extracts are inputs.
	if len(objects) != 3 {
		t.Errorf("len(objects) = %d, want 3: %+v", len(objects), objects)
	}

	for _, obj := range objects {
		if obj.Size != 4 { // "test" is 4 bytes
			t.Errorf("object %q size = %d, want 4", obj.Key, obj.Size)
		}
		if obj.LastModified == 0 {
			t.Errorf("object %q LastModified should not be 0", obj.Key)
		}
	}
}

func TestLocalStorageListEmpty(t *testing.T) {
	storage := NewLocalStorage(t.TempDir())
	objects, err := storage.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("len(objects) = %d, want 0", len(objects))
	}
}

func TestLocalStorageDownload(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "regions.geojsonl"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	storage := NewLocalStorage(srcDir)
	dest := filepath.Join(t.TempDir(), "work", "regions.geojsonl")
	if err := storage.Download(context.Background(), "regions.geojsonl", dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "data" {
		t.Errorf("downloaded content = %q, want %q", data, "data")
	}
}

func TestLocalStorageDownloadToSelf(t *testing.T) {
	srcDir := t.TempDir()
	path := filepath.Join(srcDir, "regions.geojsonl")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	storage := NewLocalStorage(srcDir)
	if err := storage.Download(context.Background(), "regions.geojsonl", path); err != nil {
		t.Fatalf("Download() to self error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "data" {
		t.Errorf("content after self-download = %q, want %q", data, "data")
	}
}

func TestLocalStorageGetReader(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "objects.geojsonl"), []byte("stream"), 0o644); err != nil {
		t.Fatal(err)
	}

	storage := NewLocalStorage(srcDir)
	r, err := storage.GetReader(context.Background(), "objects.geojsonl")
	if err != nil {
		t.Fatalf("GetReader() error = %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "stream" {
		t.Errorf("read %q, want %q", data, "stream")
	}
}

func TestLocalStorageExists(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "regions.geojsonl"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	storage := NewLocalStorage(srcDir)

	exists, err := storage.Exists(context.Background(), "regions.geojsonl")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false for present file")
	}

	exists, err = storage.Exists(context.Background(), "missing.geojsonl")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true for missing file")
	}
}

func TestIsInputFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"regions.geojsonl", true},
		{"REGIONS.GEOJSONL", true},
		{"berlin.osm.pbf", true},
		{"notes.txt", false},
		{"index.sqlite", false},
		{"archive.pbf.bak", false},
	}

	for _, tt := range tests {
		if got := isInputFile(tt.name); got != tt.want {
			t.Errorf("isInputFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
