package metadata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexSetGetDelete(t *testing.T) {
	ix := NewIndex()

	ix.Set(0, Document{"category": String("tech")})
	ix.Set(1, Document{"category": String("sports")})
	assert.Equal(t, 2, ix.Len())

	doc, ok := ix.Get(0)
	require.True(t, ok)
	assert.Equal(t, "tech", doc["category"].StringValue())

	_, ok = ix.Get(99)
	assert.False(t, ok)

	ix.Delete(0)
	assert.Equal(t, 1, ix.Len())
	_, ok = ix.Get(0)
	assert.False(t, ok)

	// Deleting an absent slot is a no-op.
	ix.Delete(0)
	assert.Equal(t, 1, ix.Len())
}

func TestIndexSetEmptyClearsSlot(t *testing.T) {
	ix := NewIndex()
	ix.Set(3, Document{"k": Int(1)})
	require.Equal(t, 1, ix.Len())

	ix.Set(3, nil)
	assert.Equal(t, 0, ix.Len())

	bm, ok := ix.Compile(NewFilterSet(Filter{Key: "k", Operator: OpEqual, Value: Int(1)}))
	require.True(t, ok)
	assert.True(t, bm.IsEmpty())
}

func TestIndexOverwriteUpdatesPostings(t *testing.T) {
	ix := NewIndex()
	ix.Set(5, Document{"status": String("draft")})
	ix.Set(5, Document{"status": String("published")})

	bm, ok := ix.Compile(NewFilterSet(Filter{Key: "status", Operator: OpEqual, Value: String("draft")}))
	require.True(t, ok)
	assert.True(t, bm.IsEmpty(), "stale posting survived overwrite")

	bm, ok = ix.Compile(NewFilterSet(Filter{Key: "status", Operator: OpEqual, Value: String("published")}))
	require.True(t, ok)
	assert.True(t, bm.Contains(5))
}

func TestIndexCompile(t *testing.T) {
	ix := NewIndex()
	ix.Set(0, Document{"category": String("tech"), "year": Int(2023)})
	ix.Set(1, Document{"category": String("tech"), "year": Int(2024)})
	ix.Set(2, Document{"category": String("sports"), "year": Int(2024)})

	t.Run("single equality", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "category", Operator: OpEqual, Value: String("tech")},
		))
		require.True(t, ok)
		assert.Equal(t, []uint32{0, 1}, bm.ToArray())
	})

	t.Run("conjunction intersects", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "category", Operator: OpEqual, Value: String("tech")},
			Filter{Key: "year", Operator: OpEqual, Value: Int(2024)},
		))
		require.True(t, ok)
		assert.Equal(t, []uint32{1}, bm.ToArray())
	})

	t.Run("in unions postings", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "category", Operator: OpIn, Value: Array([]Value{String("tech"), String("sports")})},
		))
		require.True(t, ok)
		assert.Equal(t, []uint32{0, 1, 2}, bm.ToArray())
	})

	t.Run("unknown value yields empty", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "category", Operator: OpEqual, Value: String("news")},
		))
		require.True(t, ok)
		assert.True(t, bm.IsEmpty())
	})

	t.Run("empty intersection short-circuits", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "category", Operator: OpEqual, Value: String("sports")},
			Filter{Key: "year", Operator: OpEqual, Value: Int(2023)},
		))
		require.True(t, ok)
		assert.True(t, bm.IsEmpty())
	})

	t.Run("range operator falls back", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "year", Operator: OpGreaterThan, Value: Int(2023)},
		))
		assert.False(t, ok)
		assert.Nil(t, bm)
	})

	t.Run("mixed set falls back entirely", func(t *testing.T) {
		// One non-indexable filter forces the scan path for the whole set.
		_, ok := ix.Compile(NewFilterSet(
			Filter{Key: "category", Operator: OpEqual, Value: String("tech")},
			Filter{Key: "year", Operator: OpGreaterThan, Value: Int(2023)},
		))
		assert.False(t, ok)
	})

	t.Run("nil and empty sets fall back", func(t *testing.T) {
		_, ok := ix.Compile(nil)
		assert.False(t, ok)

		_, ok = ix.Compile(NewFilterSet())
		assert.False(t, ok)
	})

	t.Run("malformed in falls back", func(t *testing.T) {
		_, ok := ix.Compile(NewFilterSet(
			Filter{Key: "category", Operator: OpIn, Value: String("tech")},
		))
		assert.False(t, ok)
	})
}

func TestIndexCompileDoesNotMutatePostings(t *testing.T) {
	ix := NewIndex()
	ix.Set(0, Document{"a": Int(1), "b": Int(1)})
	ix.Set(1, Document{"a": Int(1), "b": Int(2)})

	fs := NewFilterSet(
		Filter{Key: "a", Operator: OpEqual, Value: Int(1)},
		Filter{Key: "b", Operator: OpEqual, Value: Int(2)},
	)
	bm, ok := ix.Compile(fs)
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, bm.ToArray())

	// The a=1 posting list must still hold both slots after the intersection.
	bm, ok = ix.Compile(NewFilterSet(Filter{Key: "a", Operator: OpEqual, Value: Int(1)}))
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 1}, bm.ToArray())
}

func TestIndexAll(t *testing.T) {
	ix := NewIndex()
	ix.Set(0, Document{"k": Int(0)})
	ix.Set(7, Document{"k": Int(7)})

	seen := map[uint32]int64{}
	for slot, doc := range ix.All() {
		seen[slot] = doc["k"].I64
	}
	assert.Equal(t, map[uint32]int64{0: 0, 7: 7}, seen)
}

func TestIndexCompileNumericSpellings(t *testing.T) {
	ix := NewIndex()
	ix.Set(0, Document{"price": Int(3)})
	ix.Set(1, Document{"price": Float(3)})
	ix.Set(2, Document{"price": Float(2.5)})
	ix.Set(3, Document{"price": Float(0)})

	t.Run("float filter matches stored int", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "price", Operator: OpEqual, Value: Float(3)},
		))
		require.True(t, ok)
		assert.Equal(t, []uint32{0, 1}, bm.ToArray())
	})

	t.Run("int filter matches stored float", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "price", Operator: OpEqual, Value: Int(3)},
		))
		require.True(t, ok)
		assert.Equal(t, []uint32{0, 1}, bm.ToArray())
	})

	t.Run("fractional float has no int spelling", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "price", Operator: OpEqual, Value: Float(2.5)},
		))
		require.True(t, ok)
		assert.Equal(t, []uint32{2}, bm.ToArray())
	})

	t.Run("negative zero matches positive zero", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "price", Operator: OpEqual, Value: Float(math.Copysign(0, -1))},
		))
		require.True(t, ok)
		assert.Equal(t, []uint32{3}, bm.ToArray())
	})

	t.Run("nan matches nothing", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "price", Operator: OpEqual, Value: Float(math.NaN())},
		))
		require.True(t, ok)
		assert.True(t, bm.IsEmpty())
	})

	t.Run("in filter unions both spellings", func(t *testing.T) {
		bm, ok := ix.Compile(NewFilterSet(
			Filter{Key: "price", Operator: OpIn, Value: Array([]Value{Int(3), Float(2.5)})},
		))
		require.True(t, ok)
		assert.Equal(t, []uint32{0, 1, 2}, bm.ToArray())
	})

	t.Run("numeric arrays fall back to scanning", func(t *testing.T) {
		_, ok := ix.Compile(NewFilterSet(
			Filter{Key: "price", Operator: OpEqual, Value: Array([]Value{Int(1)})},
		))
		assert.False(t, ok)
	})
}
