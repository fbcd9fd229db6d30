// Package distance provides the similarity metrics used to score vectors.
//
// Three metrics are supported:
//
//   - Cosine: cosine similarity, higher is more similar
//   - L2: Euclidean distance, lower is more similar
//   - Dot: raw inner product, higher is more similar
//
// Scores are computed in float64 over float32 inputs. Dot products and norms
// go through gonum's BLAS implementation, which dispatches to SIMD kernels
// internally.
package distance

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/blas/gonum"
)

// Metric identifies the similarity metric of a database.
//
// The numeric values double as the on-disk metric tag and must not be
// reordered.
type Metric uint8

const (
	// Cosine scores with cosine similarity in [-1, 1].
	Cosine Metric = iota
	// L2 scores with Euclidean distance in [0, +inf).
	L2
	// Dot scores with the raw inner product.
	Dot
)

func (m Metric) String() string {
	switch m {
	case Cosine:
		return "cosine"
	case L2:
		return "l2"
	case Dot:
		return "dot"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// Valid reports whether m is one of the defined metrics.
func (m Metric) Valid() bool {
	return m <= Dot
}

// Parse returns the metric named by s ("cosine", "l2", "dot").
func Parse(s string) (Metric, error) {
	switch s {
	case "cosine":
		return Cosine, nil
	case "l2", "euclidean":
		return L2, nil
	case "dot":
		return Dot, nil
	default:
		return 0, fmt.Errorf("unknown distance metric %q", s)
	}
}

// Ascending reports the metric's polarity: true when lower scores indicate
// greater similarity.
func (m Metric) Ascending() bool {
	return m == L2
}

// Worst returns the score that ranks after every real score for m.
func (m Metric) Worst() float64 {
	if m.Ascending() {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// Score computes the metric score between two equal-length vectors.
// Length agreement is the caller's responsibility.
func (m Metric) Score(a, b []float32) float64 {
	switch m {
	case Cosine:
		return CosineSimilarity(a, b)
	case L2:
		return Euclidean(a, b)
	default:
		return DotProduct(a, b)
	}
}

// Func scores two equal-length vectors.
type Func func(a, b []float32) float64

// Provider returns the scoring function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case Cosine:
		return CosineSimilarity, nil
	case L2:
		return Euclidean, nil
	case Dot:
		return DotProduct, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Gonum handles SIMD dispatch internally.
var blasEngine = gonum.Implementation{}

// DotProduct returns the inner product of a and b.
func DotProduct(a, b []float32) float64 {
	return float64(blasEngine.Sdot(len(a), a, 1, b, 1))
}

// Euclidean returns the L2 norm of (a - b).
func Euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|), clamped to [-1, 1].
// A zero-norm operand yields 0 rather than an error so that ranking stays
// total.
func CosineSimilarity(a, b []float32) float64 {
	na := blasEngine.Snrm2(len(a), a, 1)
	nb := blasEngine.Snrm2(len(b), b, 1)
	if na == 0 || nb == 0 {
		return 0
	}
	cos := float64(blasEngine.Sdot(len(a), a, 1, b, 1)) / (float64(na) * float64(nb))
	if cos > 1 {
		return 1
	}
	if cos < -1 {
		return -1
	}
	return cos
}

// Normalize returns an L2-normalized copy of src.
// Returns false if src has zero norm.
func Normalize(src []float32) ([]float32, bool) {
	norm := blasEngine.Snrm2(len(src), src, 1)
	if norm == 0 {
		return nil, false
	}
	dst := slices.Clone(src)
	inv := 1 / norm
	for i := range dst {
		dst[i] *= inv
	}
	return dst, true
}
