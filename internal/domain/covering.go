package domain

// CellID identifies a spatial cell in the fixed cell-decomposition scheme.
// Cell ids are S2 cell ids in this build.
type CellID uint64

// CoveringEntry maps one spatial cell to one object intersecting it.
type CoveringEntry struct {
	Cell   CellID
	Object uint64
}

// Covering is an append-only collection of covering entries. During the
// parallel phase each worker owns a private Covering; entry order carries no
// meaning, only the bag of (cell, object) pairs does.
type Covering struct {
	entries []CoveringEntry
}

// Append adds an entry.
func (c *Covering) Append(cell CellID, object uint64) {
	c.entries = append(c.entries, CoveringEntry{Cell: cell, Object: object})
}

// Merge appends all entries of another covering.
func (c *Covering) Merge(other *Covering) {
	c.entries = append(c.entries, other.entries...)
}

// Len returns the number of entries.
func (c *Covering) Len() int {
	return len(c.entries)
}

// Entries returns the underlying entry slice. Callers must not mutate it.
func (c *Covering) Entries() []CoveringEntry {
	return c.entries
}
