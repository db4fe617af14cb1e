package recommend

import (
	"context"
	"fmt"

	"cosound/domain"
)

// DebugRanking exposes the full pipeline state for inspection without
// recording a play: who counted, what target they produced, and every score
// component per track.
type DebugRanking struct {
	Population []uint               `json:"population"`
	Fallback   bool                 `json:"fallback"`
	Target     domain.TasteVector   `json:"target"`
	Ranked     []domain.RankedTrack `json:"ranked"`
}

func (s *RecommendService) DebugRank(ctx context.Context, limit int) (DebugRanking, error) {
	if err := ctx.Err(); err != nil {
		return DebugRanking{}, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	population, fallback, err := s.loadPopulation(ctx)
	if err != nil {
		return DebugRanking{}, err
	}

	target, err := s.Aggregate(ctx, population)
	if err != nil {
		return DebugRanking{}, err
	}

	ranked, err := s.Rank(ctx, target, limit)
	if err != nil {
		return DebugRanking{}, err
	}

	return DebugRanking{
		Population: population,
		Fallback:   fallback,
		Target:     target,
		Ranked:     ranked,
	}, nil
}
