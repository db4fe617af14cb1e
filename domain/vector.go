package domain

// VectorDim is fixed platform-wide. Every stored taste vector and every track
// embedding has exactly this many components.
const VectorDim = 5

// VectorCategories names each dimension, in storage order. The classifier that
// produces track embeddings and the onboarding survey both use this order.
var VectorCategories = [VectorDim]string{
	"rain",
	"sea_waves",
	"thunderstorm",
	"wind",
	"crackling_fire",
}

// TasteVector is a taste profile: either one user's learned preference or one
// track's acoustic embedding. Treated as a direction; magnitude carries no
// meaning but storage does not force unit length.
type TasteVector [VectorDim]float64

// VectorFromSlice converts a raw slice into a TasteVector, rejecting any
// length other than VectorDim.
func VectorFromSlice(values []float64) (TasteVector, error) {
	if len(values) != VectorDim {
		return TasteVector{}, ErrInvalidDimension
	}
	var v TasteVector
	copy(v[:], values)
	return v, nil
}

// IsZero reports whether every component is exactly zero (a never-voted,
// never-surveyed preference).
func (v TasteVector) IsZero() bool {
	for _, c := range v {
		if c != 0 {
			return false
		}
	}
	return true
}
