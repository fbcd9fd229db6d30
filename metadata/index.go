package metadata

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index stores documents by slot and maintains inverted posting lists for
// fast filter compilation.
//
// Layout:
//   - primary storage: slot -> Document
//   - inverted index: field -> value key -> bitmap of slots
//
// The database serializes access, so Index performs no locking. Slots are
// arena positions, not record ids; the table owns the id to slot mapping.
type Index struct {
	docs     map[uint32]Document
	inverted map[string]map[string]*roaring.Bitmap
}

// NewIndex creates an empty metadata index.
func NewIndex() *Index {
	return &Index{
		docs:     make(map[uint32]Document),
		inverted: make(map[string]map[string]*roaring.Bitmap),
	}
}

// Set stores the document for a slot, replacing any previous document and
// updating the posting lists. A nil or empty document clears the slot.
func (ix *Index) Set(slot uint32, doc Document) {
	if old, ok := ix.docs[slot]; ok {
		ix.removePostings(slot, old)
		delete(ix.docs, slot)
	}
	if len(doc) == 0 {
		return
	}

	ix.docs[slot] = doc
	ix.addPostings(slot, doc)
}

// Get returns the document stored for a slot.
func (ix *Index) Get(slot uint32) (Document, bool) {
	doc, ok := ix.docs[slot]
	return doc, ok
}

// Delete removes the document for a slot, if any.
func (ix *Index) Delete(slot uint32) {
	doc, ok := ix.docs[slot]
	if !ok {
		return
	}
	ix.removePostings(slot, doc)
	delete(ix.docs, slot)
}

// Len returns the number of slots holding a document.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// All iterates over every (slot, document) pair in unspecified order.
func (ix *Index) All() iter.Seq2[uint32, Document] {
	return func(yield func(uint32, Document) bool) {
		for slot, doc := range ix.docs {
			if !yield(slot, doc) {
				return
			}
		}
	}
}

// Compile lowers a filter set to a bitmap of candidate slots.
//
// Only OpEqual and OpIn lower to posting-list operations. If the set contains
// any other operator, Compile reports ok=false and the caller must fall back
// to scanning with FilterSet.Matches. ok=true with an empty bitmap means the
// filters provably match nothing.
func (ix *Index) Compile(fs *FilterSet) (bm *roaring.Bitmap, ok bool) {
	if fs == nil || len(fs.Filters) == 0 {
		return nil, false
	}

	var result *roaring.Bitmap

	for i := range fs.Filters {
		f := &fs.Filters[i]

		var candidates *roaring.Bitmap

		switch f.Operator {
		case OpEqual:
			if !lowerable(f.Value) {
				return nil, false
			}
			candidates = ix.equalityPostings(f.Key, f.Value)

		case OpIn:
			arr, isArr := f.Value.AsArray()
			if !isArr {
				// Malformed OpIn; let the scan path reject it per document.
				return nil, false
			}
			candidates = roaring.New()
			for _, v := range arr {
				if !lowerable(v) {
					return nil, false
				}
				if pl := ix.equalityPostings(f.Key, v); pl != nil {
					candidates.Or(pl)
				}
			}

		default:
			return nil, false
		}

		if candidates == nil || candidates.IsEmpty() {
			return roaring.New(), true
		}

		if result == nil {
			// First filter seeds the result; clone so intersections never
			// mutate a stored posting list.
			result = candidates.Clone()
		} else {
			result.And(candidates)
		}

		if result.IsEmpty() {
			return result, true
		}
	}

	return result, true
}

// postings returns the posting list for an exact field=value pair, or nil.
func (ix *Index) postings(key string, v Value) *roaring.Bitmap {
	valueMap, ok := ix.inverted[key]
	if !ok {
		return nil
	}
	return valueMap[v.Key()]
}

// equalityPostings returns the union of posting lists whose stored values
// compare equal to v. Ints and floats key separately but compare as numbers,
// so a numeric lookup checks both spellings.
func (ix *Index) equalityPostings(key string, v Value) *roaring.Bitmap {
	if !isNumber(v) {
		return ix.postings(key, v)
	}
	if v.Kind == KindFloat && math.IsNaN(v.F64) {
		// NaN compares equal to nothing.
		return nil
	}

	result := roaring.New()
	if pl := ix.postings(key, v); pl != nil {
		result.Or(pl)
	}
	if twin, ok := numericTwin(v); ok {
		if pl := ix.postings(key, twin); pl != nil {
			result.Or(pl)
		}
	}
	return result
}

// numericTwin returns the other numeric spelling of v: the float form of an
// int, or the int form of an integral float.
func numericTwin(v Value) (Value, bool) {
	switch v.Kind {
	case KindInt:
		return Float(float64(v.I64)), true
	case KindFloat:
		f := v.F64
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return Value{}, false
		}
		i := int64(f)
		if float64(i) != f {
			return Value{}, false
		}
		return Int(i), true
	}
	return Value{}, false
}

// lowerable reports whether equality on v can be answered from posting lists
// alone. Arrays holding numbers compare element-wise across int and float
// spellings, which a single key lookup cannot enumerate; those fall back to
// scanning.
func lowerable(v Value) bool {
	if v.Kind != KindArray {
		return true
	}
	for _, item := range v.A {
		if isNumber(item) || item.Kind == KindArray {
			return false
		}
	}
	return true
}

func (ix *Index) addPostings(slot uint32, doc Document) {
	for key, value := range doc {
		valueMap, ok := ix.inverted[key]
		if !ok {
			valueMap = make(map[string]*roaring.Bitmap)
			ix.inverted[key] = valueMap
		}

		vk := value.Key()
		bm, ok := valueMap[vk]
		if !ok {
			bm = roaring.New()
			valueMap[vk] = bm
		}
		bm.Add(slot)
	}
}

func (ix *Index) removePostings(slot uint32, doc Document) {
	for key, value := range doc {
		valueMap, ok := ix.inverted[key]
		if !ok {
			continue
		}

		vk := value.Key()
		bm, ok := valueMap[vk]
		if !ok {
			continue
		}

		bm.Remove(slot)

		// Drop empty posting lists so deleted values do not pin memory.
		if bm.IsEmpty() {
			delete(valueMap, vk)
			if len(valueMap) == 0 {
				delete(ix.inverted, key)
			}
		}
	}
}
