// Package input defines the primary/driving ports of the application.
package input

import "context"

// Generator defines the primary port for index generation.
type Generator interface {
	// GenerateRegionsIndex builds the regions locality index from the
	// given feature file.
	GenerateRegionsIndex(ctx context.Context, featuresPath, outPath string) error

	// GenerateGeoObjectsIndex builds the geo-objects locality index,
	// optionally merged with a streets feature file and restricted by a
	// node id allow-list.
	GenerateGeoObjectsIndex(ctx context.Context, req GeoObjectsRequest) error
}

// GeoObjectsRequest describes one geo-objects index build.
type GeoObjectsRequest struct {
	FeaturesPath string // Geo-objects feature file
	OutPath      string // Output index artifact
	NodesPath    string // Optional POI node allow-list file
	StreetsPath  string // Optional streets feature file, merged into the run
}
