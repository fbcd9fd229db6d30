package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentBinaryRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{
			name: "empty",
			doc:  Document{},
		},
		{
			name: "scalars",
			doc: Document{
				"null":   Null(),
				"int":    Int(-123456),
				"float":  Float(3.14159),
				"string": String("hello world"),
				"bool":   Bool(true),
			},
		},
		{
			name: "nested arrays",
			doc: Document{
				"tags": Array([]Value{
					String("a"),
					Int(1),
					Array([]Value{Bool(false), Float(-0.5)}),
				}),
			},
		},
		{
			name: "unicode keys and values",
			doc: Document{
				"catégorie": String("日本語"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.doc.MarshalBinary()
			require.NoError(t, err)

			var got Document
			require.NoError(t, got.UnmarshalBinary(data))
			assert.Equal(t, tt.doc, got)
		})
	}
}

func TestDocumentUnmarshalErrors(t *testing.T) {
	doc := Document{"key": String("value"), "n": Int(7)}
	data, err := doc.MarshalBinary()
	require.NoError(t, err)

	t.Run("empty input", func(t *testing.T) {
		var got Document
		assert.Error(t, got.UnmarshalBinary(nil))
	})

	t.Run("truncated", func(t *testing.T) {
		// Any strict prefix must fail rather than panic; the count header
		// promises more fields than the buffer holds.
		for cut := 1; cut < len(data); cut++ {
			var got Document
			if err := got.UnmarshalBinary(data[:cut]); err == nil {
				t.Fatalf("truncation at %d decoded successfully", cut)
			}
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		bad := []byte{1, 1, 'k', 0xEE}
		var got Document
		assert.Error(t, got.UnmarshalBinary(bad))
	})

	t.Run("oversized field count", func(t *testing.T) {
		// A count the buffer cannot possibly hold must fail before the map
		// is sized, not exhaust memory. 5-byte uvarint encoding of 1<<30.
		bad := []byte{0x80, 0x80, 0x80, 0x80, 0x04}
		var got Document
		assert.Error(t, got.UnmarshalBinary(bad))
	})

	t.Run("oversized array length", func(t *testing.T) {
		// count=1, key "a", kind array, length far beyond the buffer.
		bad := []byte{1, 1, 'a', byte(KindArray), 0xFF, 0xFF, 0xFF, 0x7F}
		var got Document
		assert.Error(t, got.UnmarshalBinary(bad))
	})
}

func TestDocumentBinarySelfDelimiting(t *testing.T) {
	// Trailing bytes after a complete document are ignored; block framing
	// owns the document boundaries.
	doc := Document{"k": Int(1)}
	data, err := doc.MarshalBinary()
	require.NoError(t, err)

	var got Document
	require.NoError(t, got.UnmarshalBinary(append(data, 0xAB, 0xCD)))
	assert.Equal(t, doc, got)
}
