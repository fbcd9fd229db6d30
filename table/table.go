// Package table implements the in-memory working set of a database: an
// ordered id index over a fixed-stride vector arena, plus the metadata
// store and the exact top-k search over all of it.
//
// A Table is not safe for concurrent use. The database façade serializes
// access; embedding a Table elsewhere requires the same discipline.
package table

import (
	"errors"
	"fmt"

	"github.com/tidwall/btree"

	"github.com/vectorlite/vectorlite/distance"
	"github.com/vectorlite/vectorlite/metadata"
	"github.com/vectorlite/vectorlite/persistence"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("id not found")
	// ErrEmptyID is returned when a record id is the empty string.
	ErrEmptyID = errors.New("id is empty")
	// ErrInvalidK is returned when a search asks for a non-positive k.
	ErrInvalidK = errors.New("k must be positive")
)

// DimensionMismatchError indicates a vector whose length does not match the
// table dimension.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// entry is one id index record.
type entry struct {
	id   string
	slot uint32
}

func entryLess(a, b entry) bool { return a.id < b.id }

// Table maps string ids to arena slots. Deleting a record releases its slot
// to a freelist; inserts reuse freed slots before growing the arena.
type Table struct {
	metric distance.Metric
	dim    int

	arena *arena
	index *btree.BTreeG[entry] // id -> slot, ordered by id
	ids   []string             // slot -> id, "" when tombstoned
	free  []uint32             // reusable slots, popped from the end
	meta  *metadata.Index
}

// New returns an empty table scoring with metric over dim-sized vectors.
func New(metric distance.Metric, dim int) (*Table, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("unknown metric %d", metric)
	}
	return &Table{
		metric: metric,
		dim:    dim,
		arena:  newArena(dim),
		index:  btree.NewBTreeG[entry](entryLess),
		meta:   metadata.NewIndex(),
	}, nil
}

// Insert adds or replaces a record. An existing id keeps its arena slot; the
// vector is overwritten in place and the document replaced. Vector and
// document are copied, so the caller's slices and maps stay theirs.
//
// Validation failures leave the table untouched.
func (t *Table) Insert(id string, vector []float32, doc metadata.Document) error {
	if id == "" {
		return ErrEmptyID
	}
	if len(vector) != t.dim {
		return &DimensionMismatchError{Expected: t.dim, Actual: len(vector)}
	}

	if e, ok := t.index.Get(entry{id: id}); ok {
		t.arena.set(e.slot, vector)
		t.meta.Set(e.slot, metadata.CloneIfNeeded(doc))
		return nil
	}

	var slot uint32
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
		t.arena.set(slot, vector)
		t.ids[slot] = id
	} else {
		slot = t.arena.push(vector)
		t.ids = append(t.ids, id)
	}
	t.index.Set(entry{id: id, slot: slot})
	t.meta.Set(slot, metadata.CloneIfNeeded(doc))
	return nil
}

// Get returns the vector and document stored for id. Both are copies.
// The document is nil for records stored without metadata.
func (t *Table) Get(id string) ([]float32, metadata.Document, error) {
	e, ok := t.index.Get(entry{id: id})
	if !ok {
		return nil, nil, ErrNotFound
	}
	vec := make([]float32, t.dim)
	copy(vec, t.arena.at(e.slot))
	doc, _ := t.meta.Get(e.slot)
	return vec, metadata.CloneIfNeeded(doc), nil
}

// Has reports whether a record with id exists.
func (t *Table) Has(id string) bool {
	_, ok := t.index.Get(entry{id: id})
	return ok
}

// Delete removes the record with id, releasing its slot to the freelist.
// The vector bytes stay in the arena until the slot is reused or compacted.
func (t *Table) Delete(id string) error {
	e, ok := t.index.Delete(entry{id: id})
	if !ok {
		return ErrNotFound
	}
	t.ids[e.slot] = ""
	t.free = append(t.free, e.slot)
	t.meta.Delete(e.slot)
	return nil
}

// Len returns the number of live records.
func (t *Table) Len() int { return t.index.Len() }

// Capacity returns the number of arena slots, tombstones included.
func (t *Table) Capacity() int { return t.arena.slots() }

// Tombstones returns the number of freed slots awaiting reuse.
func (t *Table) Tombstones() int { return len(t.free) }

// Dimension returns the vector dimensionality.
func (t *Table) Dimension() int { return t.dim }

// Metric returns the similarity metric records are scored with.
func (t *Table) Metric() distance.Metric { return t.metric }

// Snapshot captures the table state in codec form. Entries and metadata come
// out sorted by id, so encoding unchanged state is byte-deterministic.
//
// The snapshot aliases the table's arena and documents; encode it before the
// table is mutated again.
func (t *Table) Snapshot(modified int64) *persistence.Snapshot {
	snap := &persistence.Snapshot{
		Metric:    t.metric,
		Dimension: uint32(t.dim),
		Modified:  modified,
		Entries:   make([]persistence.Entry, 0, t.index.Len()),
		Vectors:   t.arena.data,
		Metadata:  make([]persistence.MetaEntry, 0, t.meta.Len()),
	}
	t.index.Scan(func(e entry) bool {
		snap.Entries = append(snap.Entries, persistence.Entry{ID: e.id, Slot: uint64(e.slot)})
		if doc, ok := t.meta.Get(e.slot); ok {
			snap.Metadata = append(snap.Metadata, persistence.MetaEntry{ID: e.id, Doc: doc})
		}
		return true
	})
	return snap
}

// Restore builds a table from a decoded snapshot, taking ownership of its
// contents. The freelist is derived from the slots no entry references.
func Restore(snap *persistence.Snapshot) (*Table, error) {
	t, err := New(snap.Metric, int(snap.Dimension))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", persistence.ErrMalformed, err)
	}

	capacity := snap.Capacity()
	t.arena.data = snap.Vectors
	t.ids = make([]string, capacity)

	for _, e := range snap.Entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry with empty id", persistence.ErrMalformed)
		}
		if e.Slot >= uint64(capacity) {
			return nil, fmt.Errorf("%w: id %q slot %d out of range (capacity %d)", persistence.ErrMalformed, e.ID, e.Slot, capacity)
		}
		slot := uint32(e.Slot)
		if t.ids[slot] != "" {
			return nil, fmt.Errorf("%w: slot %d mapped twice", persistence.ErrMalformed, slot)
		}
		if _, dup := t.index.Set(entry{id: e.ID, slot: slot}); dup {
			return nil, fmt.Errorf("%w: duplicate id %q", persistence.ErrMalformed, e.ID)
		}
		t.ids[slot] = e.ID
	}

	for _, me := range snap.Metadata {
		e, ok := t.index.Get(entry{id: me.ID})
		if !ok {
			return nil, fmt.Errorf("%w: metadata for unknown id %q", persistence.ErrMalformed, me.ID)
		}
		t.meta.Set(e.slot, me.Doc)
	}

	for slot := uint32(0); int(slot) < capacity; slot++ {
		if t.ids[slot] == "" {
			t.free = append(t.free, slot)
		}
	}
	return t, nil
}

// Compact rewrites the arena with live vectors only, reassigning slots
// contiguously in ascending id order. Tombstoned bytes are dropped and the
// freelist cleared. It returns the number of slots reclaimed.
func (t *Table) Compact() int {
	reclaimed := t.Capacity() - t.Len()
	if reclaimed == 0 {
		return 0
	}

	live := t.index.Len()
	data := make([]float32, 0, live*t.dim)
	ids := make([]string, 0, live)
	meta := metadata.NewIndex()
	index := btree.NewBTreeG[entry](entryLess)

	var next uint32
	t.index.Scan(func(e entry) bool {
		data = append(data, t.arena.at(e.slot)...)
		ids = append(ids, e.id)
		if doc, ok := t.meta.Get(e.slot); ok {
			meta.Set(next, doc)
		}
		index.Set(entry{id: e.id, slot: next})
		next++
		return true
	})

	t.arena.data = data
	t.ids = ids
	t.free = nil
	t.meta = meta
	t.index = index
	return reclaimed
}
