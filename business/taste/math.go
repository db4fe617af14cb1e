package taste

import "cosound/domain"

// applyLike pulls the preference toward the liked embedding with a convex
// blend, re-normalized to unit length: u' = normalize((1-a)u + a*s).
func applyLike(u, s domain.TasteVector, alpha float64) domain.TasteVector {
	return u.Scale(1 - alpha).Add(s.Scale(alpha)).Normalize()
}

// applyDislike pushes the preference away from the disliked embedding,
// scaled by how aligned it already was: u' = normalize(u - a*b*(u・s)*s).
// A track orthogonal to current taste barely moves the vector.
func applyDislike(u, s domain.TasteVector, alpha, softness float64) domain.TasteVector {
	return u.Sub(s.Scale(alpha * softness * u.Dot(s))).Normalize()
}
