package util

import (
	"math"
	"math/rand"
)

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// GenerateRandomVectors generates random vectors with components in [0, 1).
func (r *RNG) GenerateRandomVectors(num int, dimensions int) [][]float32 {
	vectors := make([][]float32, num)
	for i := range vectors {
		vectors[i] = make([]float32, dimensions)
		for j := range vectors[i] {
			vectors[i][j] = r.rand.Float32()
		}
	}

	return vectors
}

// GenerateUnitVectors generates random vectors normalized to unit length.
func (r *RNG) GenerateUnitVectors(num int, dimensions int) [][]float32 {
	vectors := make([][]float32, num)
	for i := range vectors {
		vectors[i] = r.unitVector(dimensions)
	}

	return vectors
}

func (r *RNG) unitVector(dimensions int) []float32 {
	v := make([]float32, dimensions)

	var norm float64
	for j := range v {
		v[j] = r.rand.Float32()*2 - 1
		norm += float64(v[j]) * float64(v[j])
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		v[0] = 1
		return v
	}

	for j := range v {
		v[j] = float32(float64(v[j]) / norm)
	}

	return v
}
