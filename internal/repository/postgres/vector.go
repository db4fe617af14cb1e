package postgres

import (
	"cosound/domain"

	"github.com/pgvector/pgvector-go"
)

// pgvector speaks float32 slices; the engine works on fixed float64 arrays.
// These two adapters are the only place the formats meet.

func toPgVector(v domain.TasteVector) pgvector.Vector {
	s := make([]float32, domain.VectorDim)
	for i, c := range v {
		s[i] = float32(c)
	}
	return pgvector.NewVector(s)
}

func fromPgVector(vec pgvector.Vector) (domain.TasteVector, error) {
	raw := vec.Slice()
	f := make([]float64, len(raw))
	for i, c := range raw {
		f[i] = float64(c)
	}
	return domain.VectorFromSlice(f)
}
