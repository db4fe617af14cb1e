package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosound/domain"
	"cosound/pkg/logger"
	"cosound/pkg/metrics"
)

var ErrNothingPlaying = errors.New("nothing has been played yet")

// ---- Repository interfaces ----

type PreferenceRepository interface {
	Get(ctx context.Context, userID uint) (domain.TasteVector, error)
	// AllUserIDs returns every user who has ever stored a preference,
	// used when nobody is checked in.
	AllUserIDs(ctx context.Context) ([]uint, error)
}

type PresenceRegistry interface {
	ListActive(ctx context.Context) ([]uint, error)
}

type TrackRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Track, error)
	// FindEmbedded returns every track with a non-null embedding.
	FindEmbedded(ctx context.Context) ([]domain.Track, error)
}

type PlayHistoryRepository interface {
	Append(ctx context.Context, entry *domain.PlayHistoryEntry) error
	// LastPlayedAt maps track id to its most recent play. Tracks never
	// played are absent.
	LastPlayedAt(ctx context.Context) (map[uint]time.Time, error)
	Latest(ctx context.Context) (domain.PlayHistoryEntry, bool, error)
}

// ---- Usecase / Service ----

// RecommendService is a stateless pipeline: presence -> aggregate -> rank ->
// record. All state lives in the stores, so concurrent calls need no
// coordination; the playback client polls at a bounded rate.
type RecommendService struct {
	prefRepo    PreferenceRepository
	presence    PresenceRegistry
	trackRepo   TrackRepository
	historyRepo PlayHistoryRepository
	cfg         Config
}

func NewRecommendService(
	prefRepo PreferenceRepository,
	presence PresenceRegistry,
	trackRepo TrackRepository,
	historyRepo PlayHistoryRepository,
	cfg Config,
) *RecommendService {
	return &RecommendService{
		prefRepo:    prefRepo,
		presence:    presence,
		trackRepo:   trackRepo,
		historyRepo: historyRepo,
		cfg:         cfg,
	}
}

// Aggregate reduces a population to a single target: the arithmetic mean of
// their vectors, normalized. Zero vectors count toward the mean on purpose --
// excluding newcomers would bias the room away from them. The snapshot read
// here may be stale relative to in-flight votes; best-effort current.
func (s *RecommendService) Aggregate(ctx context.Context, userIDs []uint) (domain.TasteVector, error) {
	if err := ctx.Err(); err != nil {
		return domain.TasteVector{}, fmt.Errorf("context error: %w", err)
	}
	if len(userIDs) == 0 {
		return domain.TasteVector{}, domain.ErrEmptyPopulation
	}

	var sum domain.TasteVector
	for _, id := range userIDs {
		v, err := s.prefRepo.Get(ctx, id)
		if err != nil {
			return domain.TasteVector{}, fmt.Errorf("failed to load preference for user %d: %w", id, err)
		}
		sum = sum.Add(v)
	}

	mean := sum.Scale(1.0 / float64(len(userIDs)))
	return mean.Normalize(), nil
}

// SelectNext produces the next track(s) and records each selection in the
// play history, which is what makes the recency penalty bite on the next
// call. Falls back to the full known population when nobody is checked in;
// fails with NoPreferenceData only when no preference exists anywhere.
func (s *RecommendService) SelectNext(ctx context.Context, limit int) ([]domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 1
	}

	population, fallback, err := s.loadPopulation(ctx)
	if err != nil {
		return nil, err
	}

	target, err := s.Aggregate(ctx, population)
	if err != nil {
		return nil, err
	}

	ranked, err := s.Rank(ctx, target, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	selected := make([]domain.Track, 0, len(ranked))
	for _, r := range ranked {
		entry := &domain.PlayHistoryEntry{TrackID: r.Track.ID, PlayedAt: now}
		if err := s.historyRepo.Append(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record play: %w", err)
		}
		selected = append(selected, r.Track)
	}

	logger.Debug("track_selected",
		"population", len(population),
		"fallback", fallback,
		"selected", len(selected),
	)

	return selected, nil
}

// loadPopulation returns the active users, or every user with a stored
// preference when the room is empty.
func (s *RecommendService) loadPopulation(ctx context.Context) ([]uint, bool, error) {
	active, err := s.presence.ListActive(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list active users: %w", err)
	}
	if len(active) > 0 {
		return active, false, nil
	}

	all, err := s.prefRepo.AllUserIDs(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list known users: %w", err)
	}
	if len(all) == 0 {
		return nil, false, domain.ErrNoPreferenceData
	}

	metrics.RecommendFallbacks.Inc()
	return all, true, nil
}

// NowPlaying is a pure read over the play log: the most recent entry is
// "what's playing". No mutable current-song state exists anywhere.
func (s *RecommendService) NowPlaying(ctx context.Context) (domain.Track, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return domain.Track{}, time.Time{}, fmt.Errorf("context error: %w", err)
	}

	entry, ok, err := s.historyRepo.Latest(ctx)
	if err != nil {
		return domain.Track{}, time.Time{}, fmt.Errorf("failed to load play history: %w", err)
	}
	if !ok {
		return domain.Track{}, time.Time{}, ErrNothingPlaying
	}

	track, err := s.trackRepo.FindByID(ctx, entry.TrackID)
	if err != nil {
		return domain.Track{}, time.Time{}, fmt.Errorf("failed to load track %d: %w", entry.TrackID, err)
	}

	return track, entry.PlayedAt, nil
}
