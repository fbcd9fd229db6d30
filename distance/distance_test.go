package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{in: "cosine", want: Cosine},
		{in: "l2", want: L2},
		{in: "euclidean", want: L2},
		{in: "dot", want: Dot},
		{in: "hamming", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Metric {
	t.Helper()
	m, err := Parse(s)
	require.NoError(t, err)
	return m
}

func TestMetricTags(t *testing.T) {
	// On-disk tags: cosine=0, l2=1, dot=2.
	assert.Equal(t, uint8(0), uint8(Cosine))
	assert.Equal(t, uint8(1), uint8(L2))
	assert.Equal(t, uint8(2), uint8(Dot))
}

func TestPolarity(t *testing.T) {
	assert.False(t, Cosine.Ascending())
	assert.True(t, L2.Ascending())
	assert.False(t, Dot.Ascending())

	assert.True(t, math.IsInf(L2.Worst(), 1))
	assert.True(t, math.IsInf(Cosine.Worst(), -1))
	assert.True(t, math.IsInf(Dot.Worst(), -1))
}

func TestDotProduct(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "orthogonal", a: []float32{1, 0, 0}, b: []float32{0, 1, 0}, want: 0},
		{name: "identity", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 14},
		{name: "mixed signs", a: []float32{1, -2, 3}, b: []float32{4, 5, -6}, want: -24},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DotProduct(tt.a, tt.b), 1e-6)
		})
	}
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "same point", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 0},
		{name: "unit axes", a: []float32{1, 0, 0}, b: []float32{0, 1, 0}, want: math.Sqrt2},
		{name: "3-4-5", a: []float32{0, 0}, b: []float32{3, 4}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Euclidean(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical unit", a: []float32{1, 0, 0}, b: []float32{1, 0, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0, 0}, b: []float32{0, 1, 0}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "scaled copy", a: []float32{1, 2, 3}, b: []float32{2, 4, 6}, want: 1},
		{name: "zero norm left", a: []float32{0, 0, 0}, b: []float32{1, 2, 3}, want: 0},
		{name: "zero norm right", a: []float32{1, 2, 3}, b: []float32{0, 0, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-6)
			assert.LessOrEqual(t, got, 1.0)
			assert.GreaterOrEqual(t, got, -1.0)
		})
	}
}

func TestCosineSimilaritySelfBound(t *testing.T) {
	// The clamp keeps float rounding from leaking past the mathematical range.
	a := []float32{0.1, 0.2, 0.30000001, 0.4}
	got := CosineSimilarity(a, a)
	assert.LessOrEqual(t, got, 1.0)
	assert.InDelta(t, 1.0, got, 1e-6)
}

func TestScoreDispatch(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}

	assert.Equal(t, CosineSimilarity(a, b), Cosine.Score(a, b))
	assert.Equal(t, Euclidean(a, b), L2.Score(a, b))
	assert.Equal(t, DotProduct(a, b), Dot.Score(a, b))

	for _, m := range []Metric{Cosine, L2, Dot} {
		fn, err := Provider(m)
		require.NoError(t, err)
		assert.Equal(t, m.Score(a, b), fn(a, b))
	}

	_, err := Provider(Metric(9))
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	v, ok := Normalize([]float32{3, 4})
	require.True(t, ok)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
	assert.InDelta(t, 1.0, DotProduct(v, v), 1e-6)

	_, ok = Normalize([]float32{0, 0, 0})
	assert.False(t, ok)
}

func BenchmarkCosineSimilarity(b *testing.B) {
	a := make([]float32, 128)
	c := make([]float32, 128)
	for i := range a {
		a[i] = float32(i) * 0.25
		c[i] = float32(127-i) * 0.25
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CosineSimilarity(a, c)
	}
}
