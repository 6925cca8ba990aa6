package application

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ArnCarveris/geocore/internal/domain"
)

// ParseNodeList reads a POI node allow-list: one unsigned 64-bit encoded id
// per line, first whitespace-delimited token. An empty path yields an empty
// set. A missing file or an unparseable line is fatal and reported with its
// line number, so a bad allow-list aborts the run before any parallel work.
func ParseNodeList(path string) (map[uint64]struct{}, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening node list %s: %w", path, err)
	}
	defer f.Close()

	nodes := make(map[uint64]struct{})
	scanner := bufio.NewScanner(f)
	lineNumber := 1
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, &domain.ParseError{File: path, Line: lineNumber, Text: line, Err: domain.ErrInvalidInput}
		}

		id, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, &domain.ParseError{File: path, Line: lineNumber, Text: line, Err: err}
		}

		nodes[id] = struct{}{}
		lineNumber++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading node list %s: %w", path, err)
	}

	return nodes, nil
}
