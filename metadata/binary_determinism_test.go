package metadata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentBinaryDeterministic(t *testing.T) {
	doc := Document{
		"zeta":  Int(1),
		"alpha": String("x"),
		"mid":   Bool(true),
		"beta":  Float(2.5),
	}

	first, err := doc.MarshalBinary()
	require.NoError(t, err)

	// Map iteration order varies; the encoding must not.
	for i := 0; i < 16; i++ {
		again, err := doc.MarshalBinary()
		require.NoError(t, err)
		if !bytes.Equal(first, again) {
			t.Fatal("document encoding depends on map iteration order")
		}
	}
}
