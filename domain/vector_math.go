package domain

import "math"

func (v TasteVector) Dot(other TasteVector) float64 {
	sum := 0.0
	for i := range VectorDim {
		sum += v[i] * other[i]
	}
	return sum
}

func (v TasteVector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize scales to unit length. The zero vector normalizes to itself.
func (v TasteVector) Normalize() TasteVector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	var out TasteVector
	for i := range VectorDim {
		out[i] = v[i] / n
	}
	return out
}

// CosineDistance is 1 - cosine similarity, range [0, 2]. Either vector being
// zero yields the neutral distance 1.
func (v TasteVector) CosineDistance(other TasteVector) float64 {
	nv, no := v.Norm(), other.Norm()
	if nv == 0 || no == 0 {
		return 1.0
	}
	return 1.0 - v.Dot(other)/(nv*no)
}

func (v TasteVector) Scale(factor float64) TasteVector {
	var out TasteVector
	for i := range VectorDim {
		out[i] = v[i] * factor
	}
	return out
}

func (v TasteVector) Add(other TasteVector) TasteVector {
	var out TasteVector
	for i := range VectorDim {
		out[i] = v[i] + other[i]
	}
	return out
}

func (v TasteVector) Sub(other TasteVector) TasteVector {
	var out TasteVector
	for i := range VectorDim {
		out[i] = v[i] - other[i]
	}
	return out
}
