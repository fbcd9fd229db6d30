package persistence

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Low-level append/parse helpers for the snapshot blocks. Encoding is
// explicit little-endian byte math, never a reinterpretation of host memory,
// so files are portable across architectures.

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func parseString(data []byte) (string, []byte, error) {
	n, w := binary.Uvarint(data)
	if w <= 0 {
		return "", nil, fmt.Errorf("%w: invalid string length", ErrMalformed)
	}
	data = data[w:]
	if uint64(len(data)) < n {
		return "", nil, fmt.Errorf("%w: short buffer for string", ErrMalformed)
	}
	return string(data[:n]), data[n:], nil
}

func appendFloat32s(buf []byte, vals []float32) []byte {
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

func parseFloat32s(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: float payload length %d not a multiple of 4", ErrMalformed, len(data))
	}
	vals := make([]float32, len(data)/4)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vals, nil
}
