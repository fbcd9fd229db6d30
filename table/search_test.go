package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorlite/vectorlite/distance"
	"github.com/vectorlite/vectorlite/metadata"
)

func resultIDs(res []Result) []string {
	ids := make([]string, len(res))
	for i, r := range res {
		ids[i] = r.ID
	}
	return ids
}

func TestSearchCosineOrdering(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.Insert("a", []float32{1, 0}, nil))
	require.NoError(t, tbl.Insert("b", []float32{1, 1}, nil))
	require.NoError(t, tbl.Insert("c", []float32{0, 1}, nil))
	require.NoError(t, tbl.Insert("d", []float32{-1, 0}, nil))

	res, err := tbl.Search([]float32{1, 0}, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, resultIDs(res))
	assert.InDelta(t, 1.0, res[0].Score, 1e-6)
	assert.InDelta(t, 1/math.Sqrt2, res[1].Score, 1e-6)
	assert.InDelta(t, 0.0, res[2].Score, 1e-6)
	assert.InDelta(t, -1.0, res[3].Score, 1e-6)
}

func TestSearchL2Ordering(t *testing.T) {
	tbl, err := New(distance.L2, 2)
	require.NoError(t, err)
	require.NoError(t, tbl.Insert("far", []float32{3, 4}, nil))
	require.NoError(t, tbl.Insert("near", []float32{1, 0}, nil))
	require.NoError(t, tbl.Insert("mid", []float32{0, 2}, nil))

	res, err := tbl.Search([]float32{0, 0}, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "mid", "far"}, resultIDs(res))
	assert.InDelta(t, 1.0, res[0].Score, 1e-6)
	assert.InDelta(t, 2.0, res[1].Score, 1e-6)
	assert.InDelta(t, 5.0, res[2].Score, 1e-6)
}

func TestSearchDotOrdering(t *testing.T) {
	tbl, err := New(distance.Dot, 2)
	require.NoError(t, err)
	require.NoError(t, tbl.Insert("a", []float32{3, 0}, nil))
	require.NoError(t, tbl.Insert("b", []float32{1, 0}, nil))
	require.NoError(t, tbl.Insert("c", []float32{-1, 0}, nil))

	res, err := tbl.Search([]float32{2, 0}, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, resultIDs(res))
	assert.InDelta(t, 6.0, res[0].Score, 1e-6)
}

func TestSearchBounds(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.Insert("a", []float32{1, 0}, nil))
	require.NoError(t, tbl.Insert("b", []float32{0, 1}, nil))

	// k larger than the record count returns what exists.
	res, err := tbl.Search([]float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, res, 2)

	// k smaller truncates to the best k.
	res, err = tbl.Search([]float32{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a", res[0].ID)
}

func TestSearchValidation(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.Insert("a", []float32{1, 0}, nil))

	_, err := tbl.Search([]float32{1, 0, 0}, 1, nil)
	var dm *DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)

	_, err = tbl.Search([]float32{1, 0}, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidK)
	_, err = tbl.Search([]float32{1, 0}, -5, nil)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestSearchEmptyTable(t *testing.T) {
	tbl := newTestTable(t)
	res, err := tbl.Search([]float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchTieBreak(t *testing.T) {
	tbl := newTestTable(t)
	// Insertion order deliberately differs from id order.
	require.NoError(t, tbl.Insert("c", []float32{1, 0}, nil))
	require.NoError(t, tbl.Insert("a", []float32{1, 0}, nil))
	require.NoError(t, tbl.Insert("b", []float32{1, 0}, nil))

	res, err := tbl.Search([]float32{1, 0}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, resultIDs(res))
}

func TestSearchSkipsTombstones(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.Insert("a", []float32{1, 0}, nil))
	require.NoError(t, tbl.Insert("b", []float32{1, 0}, nil))
	require.NoError(t, tbl.Delete("a"))

	res, err := tbl.Search([]float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, resultIDs(res))
}

func TestSearchNaNRanksLast(t *testing.T) {
	tbl := newTestTable(t)
	require.NoError(t, tbl.Insert("good", []float32{1, 0}, nil))
	require.NoError(t, tbl.Insert("bad", []float32{float32(math.NaN()), 0}, nil))

	res, err := tbl.Search([]float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "good", res[0].ID)
	assert.Equal(t, "bad", res[1].ID)
	assert.True(t, math.IsInf(res[1].Score, -1))
}

func searchFixture(t *testing.T) *Table {
	t.Helper()
	tbl := newTestTable(t)
	require.NoError(t, tbl.Insert("apple", []float32{1, 0}, metadata.Document{
		"kind":  metadata.String("fruit"),
		"price": metadata.Int(3),
	}))
	require.NoError(t, tbl.Insert("banana", []float32{0.9, 0.1}, metadata.Document{
		"kind":  metadata.String("fruit"),
		"price": metadata.Int(1),
	}))
	require.NoError(t, tbl.Insert("carrot", []float32{0.5, 0.5}, metadata.Document{
		"kind":  metadata.String("vegetable"),
		"price": metadata.Int(2),
	}))
	require.NoError(t, tbl.Insert("dish", []float32{0.8, 0.2}, nil))
	return tbl
}

func TestSearchFilterSetIndexed(t *testing.T) {
	tbl := searchFixture(t)

	// eq compiles against the posting lists.
	res, err := tbl.Search([]float32{1, 0}, 10, metadata.NewFilterSet(
		metadata.Filter{Key: "kind", Operator: metadata.OpEqual, Value: metadata.String("fruit")},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana"}, resultIDs(res))
	assert.Equal(t, metadata.String("fruit"), res[0].Metadata["kind"])
}

func TestSearchFilterSetFallback(t *testing.T) {
	tbl := searchFixture(t)

	// gt is not indexable, so this runs the scan path; results must agree
	// with evaluating the predicate by hand.
	res, err := tbl.Search([]float32{1, 0}, 10, metadata.NewFilterSet(
		metadata.Filter{Key: "price", Operator: metadata.OpGreaterThan, Value: metadata.Int(1)},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "carrot"}, resultIDs(res))
}

func TestSearchFuncPredicate(t *testing.T) {
	tbl := searchFixture(t)

	res, err := tbl.Search([]float32{1, 0}, 10, metadata.Func(func(doc metadata.Document) bool {
		price, ok := doc["price"].AsInt64()
		return ok && price <= 2
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"banana", "carrot"}, resultIDs(res))
}

func TestSearchPredicateSkipsRecordsWithoutMetadata(t *testing.T) {
	tbl := searchFixture(t)

	// "dish" scores well but carries no document: any non-nil predicate
	// excludes it, even one that matches everything.
	res, err := tbl.Search([]float32{1, 0}, 10, metadata.NewFilterSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "carrot"}, resultIDs(res))

	res, err = tbl.Search([]float32{1, 0}, 10, metadata.Func(func(metadata.Document) bool { return true }))
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "carrot"}, resultIDs(res))

	// Without a predicate it ranks like any other record.
	res, err = tbl.Search([]float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Contains(t, resultIDs(res), "dish")
}

func TestSearchNilFilterSet(t *testing.T) {
	tbl := searchFixture(t)

	var fs *metadata.FilterSet
	res, err := tbl.Search([]float32{1, 0}, 10, fs)
	require.NoError(t, err)
	assert.Len(t, res, 4)
}

func TestSearchResultMetadataIsCopy(t *testing.T) {
	tbl := searchFixture(t)

	res, err := tbl.Search([]float32{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	res[0].Metadata["kind"] = metadata.String("tampered")

	again, err := tbl.Search([]float32{1, 0}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, metadata.String("fruit"), again[0].Metadata["kind"])
}

func TestSearchDeterministic(t *testing.T) {
	tbl := searchFixture(t)

	first, err := tbl.Search([]float32{0.7, 0.3}, 4, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		res, err := tbl.Search([]float32{0.7, 0.3}, 4, nil)
		require.NoError(t, err)
		assert.Equal(t, first, res)
	}
}
