package domain

import (
	"sort"
	"testing"
)

func TestCoveringAppendLen(t *testing.T) {
	var c Covering

	if c.Len() != 0 {
		t.Fatalf("empty covering Len = %d, want 0", c.Len())
	}

	c.Append(10, 1)
	c.Append(11, 1)
	c.Append(10, 2)

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	entries := c.Entries()
	if entries[0] != (CoveringEntry{Cell: 10, Object: 1}) {
		t.Errorf("entries[0] = %+v", entries[0])
	}
}

func TestCoveringMerge(t *testing.T) {
	var a, b, c Covering
	a.Append(1, 100)
	a.Append(2, 100)
	b.Append(3, 200)
	// c stays empty

	var merged Covering
	merged.Merge(&a)
	merged.Merge(&b)
	merged.Merge(&c)

	if merged.Len() != 3 {
		t.Fatalf("merged Len = %d, want 3", merged.Len())
	}

	cells := make([]uint64, 0, merged.Len())
	for _, e := range merged.Entries() {
		cells = append(cells, uint64(e.Cell))
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
	for i, want := range []uint64{1, 2, 3} {
		if cells[i] != want {
			t.Errorf("cells[%d] = %d, want %d", i, cells[i], want)
		}
	}
}

func TestCoveringMergeDoesNotShareBacking(t *testing.T) {
	var a Covering
	a.Append(1, 100)

	var merged Covering
	merged.Merge(&a)
	a.Append(2, 100)

	if merged.Len() != 1 {
		t.Fatalf("merged Len = %d after source append, want 1", merged.Len())
	}
}
