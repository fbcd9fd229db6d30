package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorlite/vectorlite/metadata"
)

func TestParseVector(t *testing.T) {
	vec, err := parseVector("0.5, 1, -2")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1, -2}, vec)

	_, err = parseVector("")
	require.Error(t, err)

	_, err = parseVector("a,b")
	require.Error(t, err)
}

func TestFormatVectorRoundTrip(t *testing.T) {
	vec := []float32{1, -0.5, 0.25, 3.14159}
	parsed, err := parseVector(formatVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, parsed)
}

func TestParseMetadata(t *testing.T) {
	doc, err := parseMetadata(`{"kind":"fruit","price":3,"fresh":true}`)
	require.NoError(t, err)
	assert.Equal(t, metadata.String("fruit"), doc["kind"])
	assert.Equal(t, metadata.Float(3), doc["price"])
	assert.Equal(t, metadata.Bool(true), doc["fresh"])

	empty, err := parseMetadata("")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = parseMetadata("{bad")
	require.Error(t, err)
}

func TestParseFilters(t *testing.T) {
	fs, err := parseFilters(`[{"key":"kind","op":"eq","value":"fruit"},{"key":"price","op":"lte","value":2}]`)
	require.NoError(t, err)
	require.Len(t, fs.Filters, 2)
	assert.Equal(t, metadata.OpEqual, fs.Filters[0].Operator)
	assert.Equal(t, metadata.OpLessEqual, fs.Filters[1].Operator)

	// A single object works without the surrounding array.
	fs, err = parseFilters(`{"key":"kind","op":"eq","value":"fruit"}`)
	require.NoError(t, err)
	require.Len(t, fs.Filters, 1)

	_, err = parseFilters(`[{"key":"kind","op":"matches","value":1}]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown filter operator")

	none, err := parseFilters("")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDocumentToAny(t *testing.T) {
	doc := metadata.Document{
		"s": metadata.String("x"),
		"i": metadata.Int(3),
		"f": metadata.Float(1.5),
		"b": metadata.Bool(true),
		"n": metadata.Null(),
		"a": metadata.Array([]metadata.Value{metadata.String("y"), metadata.Int(2)}),
	}

	out := documentToAny(doc)
	assert.Equal(t, "x", out["s"])
	assert.Equal(t, int64(3), out["i"])
	assert.Equal(t, 1.5, out["f"])
	assert.Equal(t, true, out["b"])
	assert.Nil(t, out["n"])
	assert.Equal(t, []any{"y", int64(2)}, out["a"])
}
