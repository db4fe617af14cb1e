package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"cosound/domain"
)

// recencyPenalty decays exponentially with time since the last play. A track
// never played carries zero penalty. The smooth decay de-prioritizes recent
// tracks without the hard cutoff of an outright repeat ban, so a recently
// played track can still win when nothing else scores well.
func (s *RecommendService) recencyPenalty(lastPlayed time.Time, now time.Time) float64 {
	if lastPlayed.IsZero() {
		return 0
	}
	age := now.Sub(lastPlayed)
	if age < 0 {
		age = 0
	}
	lambda := math.Ln2 / s.cfg.PenaltyHalfLife.Seconds()
	return s.cfg.PenaltyWeight * math.Exp(-lambda*age.Seconds())
}

// Rank scores every track with an embedding against the query vector:
// adjusted_score = cosine_distance + recency_penalty, ascending, ties broken
// by track id. Pure read; recording a play is the selector's job.
func (s *RecommendService) Rank(ctx context.Context, query domain.TasteVector, limit int) ([]domain.RankedTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	tracks, err := s.trackRepo.FindEmbedded(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	lastPlayed, err := s.historyRepo.LastPlayedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load play history: %w", err)
	}

	now := time.Now()
	ranked := make([]domain.RankedTrack, 0, len(tracks))
	for _, track := range tracks {
		if track.Embedding == nil {
			continue
		}
		d := track.Embedding.CosineDistance(query)
		pen := s.recencyPenalty(lastPlayed[track.ID], now)
		ranked = append(ranked, domain.RankedTrack{
			Track:         track,
			Distance:      d,
			Penalty:       pen,
			AdjustedScore: d + pen,
		})
	}
	if len(ranked) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AdjustedScore == ranked[j].AdjustedScore {
			return ranked[i].Track.ID < ranked[j].Track.ID
		}
		return ranked[i].AdjustedScore < ranked[j].AdjustedScore
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked, nil
}
