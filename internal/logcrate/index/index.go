// Package index implements the in-memory record id -> location mapping.
// It is mutated only by the crate coordinator on its single-threaded event
// path (see internal/logcrate/crate), so it carries no internal locking;
// readers copy entries out before issuing any I/O.
package index

import (
	"sort"

	"github.com/julianstephens/logcrate/internal/logcrate/record"
)

// Entry is the in-memory pointer to one record.
type Entry struct {
	SegmentID uint64
	Offset    uint64
	TotalSize uint32
	Digest    record.Digest
}

// Index maps record id -> Entry, with ordered iteration by id.
type Index struct {
	entries map[uint64]Entry
	ids     []uint64 // kept sorted ascending
}

// New returns an empty Index.
func New() *Index {
	return &Index{entries: make(map[uint64]Entry)}
}

// Get returns the entry for id, if present.
func (ix *Index) Get(id uint64) (Entry, bool) {
	e, ok := ix.entries[id]
	return e, ok
}

// Put inserts or overwrites the entry for id. Appends always insert ids in
// increasing order, so the common case is an O(1) append to ix.ids; Put
// tolerates out-of-order insertion (recovery may revisit ids) by falling
// back to a sorted insert.
func (ix *Index) Put(id uint64, e Entry) {
	if _, exists := ix.entries[id]; !exists {
		if n := len(ix.ids); n == 0 || ix.ids[n-1] < id {
			ix.ids = append(ix.ids, id)
		} else {
			i := sort.Search(n, func(i int) bool { return ix.ids[i] >= id })
			ix.ids = append(ix.ids, 0)
			copy(ix.ids[i+1:], ix.ids[i:])
			ix.ids[i] = id
		}
	}
	ix.entries[id] = e
}

// Delete removes the entry for id, if present. Used by pruning to drop
// records that belonged to a removed segment.
func (ix *Index) Delete(id uint64) {
	if _, ok := ix.entries[id]; !ok {
		return
	}
	delete(ix.entries, id)
	i := sort.Search(len(ix.ids), func(i int) bool { return ix.ids[i] >= id })
	if i < len(ix.ids) && ix.ids[i] == id {
		ix.ids = append(ix.ids[:i], ix.ids[i+1:]...)
	}
}

// Keys returns the indexed record ids in ascending order. The caller must
// not mutate the returned slice.
func (ix *Index) Keys() []uint64 {
	return ix.ids
}

// Range returns the smallest and largest indexed ids, or ok=false if the
// Index is empty.
func (ix *Index) Range() (min, max uint64, ok bool) {
	if len(ix.ids) == 0 {
		return 0, 0, false
	}
	return ix.ids[0], ix.ids[len(ix.ids)-1], true
}

// IsEmpty reports whether the Index has no entries.
func (ix *Index) IsEmpty() bool {
	return len(ix.ids) == 0
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.ids)
}

// From returns, in ascending order, every indexed id >= start. Used by the
// batched read path to walk forward from a starting id. The caller must not
// mutate the returned slice.
func (ix *Index) From(start uint64) []uint64 {
	i := sort.Search(len(ix.ids), func(i int) bool { return ix.ids[i] >= start })
	return ix.ids[i:]
}
