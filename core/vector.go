package core

import "math"

// NormalizeVector returns a copy of v scaled to unit length, so dot
// products against other unit vectors equal cosine similarity. A zero
// vector comes back as a zero vector of the same length.
func NormalizeVector(v []float32) []float32 {
	out := make([]float32, len(v))
	if len(v) == 0 {
		return out
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}

	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
