// Package storage provides the object storage adapters used to fetch input
// feature files before a generator run.
package storage

import "strings"

// inputSuffixes are the file extensions recognized as generator input:
// feature files and raw PBF extracts.
var inputSuffixes = []string{".geojsonl", ".osm.pbf"}

// isInputFile reports whether a key names a fetchable input file.
func isInputFile(key string) bool {
	lower := strings.ToLower(key)
	for _, suffix := range inputSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
