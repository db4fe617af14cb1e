package taste

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cosound/domain"
	"cosound/pkg/logger"

	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type PreferenceRepository interface {
	// Get returns the stored vector, or the zero vector for a user who has
	// never voted or surveyed.
	Get(ctx context.Context, userID uint) (domain.TasteVector, error)
	// Set is an idempotent upsert.
	Set(ctx context.Context, userID uint, vector domain.TasteVector) error
}

type VoteRepository interface {
	Save(ctx context.Context, vote *domain.Vote) error
	CountSince(ctx context.Context, userID uint, since time.Time) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type TrackRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Track, error)
}

// ---- Usecase / Service ----

// TasteService turns individual votes into bounded nudges of the voter's
// taste vector, and handles the survey bulk overwrite.
type TasteService struct {
	prefRepo  PreferenceRepository
	voteRepo  VoteRepository
	trackRepo TrackRepository
	cfg       Config
}

func NewTasteService(
	prefRepo PreferenceRepository,
	voteRepo VoteRepository,
	trackRepo TrackRepository,
	cfg Config,
) *TasteService {
	return &TasteService{
		prefRepo:  prefRepo,
		voteRepo:  voteRepo,
		trackRepo: trackRepo,
		cfg:       cfg,
	}
}

// ProcessVote applies one vote to the voter's preference and appends the vote
// fact. The fact is authoritative: it is written even when the vector update
// cannot be applied or persisted. Concurrent votes from the same user race
// last-write-wins on the vector; the facts are never lost.
//
// trackRef is the catalog id as text, or a free-text label in degraded mode.
// value follows the binary convention: > 0 like, <= 0 dislike.
func (s *TasteService) ProcessVote(
	ctx context.Context,
	userID uint,
	trackRef string,
	value int,
	source string,
	voteCtx map[string]any,
) (domain.TasteVector, error) {

	if err := ctx.Err(); err != nil {
		return domain.TasteVector{}, fmt.Errorf("context error: %w", err)
	}

	now := time.Now()

	if s.cfg.VoteCooldown > 0 {
		n, err := s.voteRepo.CountSince(ctx, userID, now.Add(-s.cfg.VoteCooldown))
		if err != nil {
			return domain.TasteVector{}, fmt.Errorf("failed to check vote cooldown: %w", err)
		}
		if n > 0 {
			return domain.TasteVector{}, domain.ErrVoteCooldown
		}
	}

	choice := domain.VoteDislike
	if value > 0 {
		choice = domain.VoteLike
	}

	vote := &domain.Vote{
		UserID:  userID,
		Value:   choice,
		Context: datatypes.JSONMap(voteCtx),
	}
	if trackRef != "" {
		vote.TrackRef = &trackRef
	}

	embedding := s.resolveEmbedding(ctx, trackRef)
	if embedding == nil {
		// Unusable reference: keep the engagement signal, skip the update.
		if err := s.voteRepo.Save(ctx, vote); err != nil {
			return domain.TasteVector{}, fmt.Errorf("failed to save vote: %w", err)
		}
		VoteEventsTotal.WithLabelValues(choiceLabel(choice), source).Inc()
		return domain.TasteVector{}, domain.ErrInvalidEmbedding
	}

	u, err := s.prefRepo.Get(ctx, userID)
	if err != nil {
		return domain.TasteVector{}, fmt.Errorf("failed to load preference: %w", err)
	}

	var next domain.TasteVector
	if choice > 0 {
		next = applyLike(u, *embedding, s.cfg.Alpha)
	} else {
		next = applyDislike(u, *embedding, s.cfg.Alpha, s.cfg.Softness)
	}

	setErr := s.prefRepo.Set(ctx, userID, next)

	// The fact is appended regardless of the vector persist outcome.
	if err := s.voteRepo.Save(ctx, vote); err != nil {
		logger.Error("Failed to save vote fact", err)
		return next, fmt.Errorf("failed to save vote: %w", err)
	}

	VoteEventsTotal.WithLabelValues(choiceLabel(choice), source).Inc()

	if setErr != nil {
		logger.Error("Vote recorded but preference update failed", setErr)
		return next, fmt.Errorf("failed to persist preference: %w", setErr)
	}

	logger.Debug("vote_processed",
		"user_id", userID,
		"track_ref", trackRef,
		"choice", choiceLabel(choice),
		"source", source,
	)

	return next, nil
}

// resolveEmbedding maps a track reference to a usable embedding, or nil.
func (s *TasteService) resolveEmbedding(ctx context.Context, trackRef string) *domain.TasteVector {
	id, err := strconv.ParseUint(trackRef, 10, 64)
	if err != nil {
		return nil
	}
	track, err := s.trackRepo.FindByID(ctx, uint(id))
	if err != nil {
		return nil
	}
	return track.Embedding
}

// SetSurvey converts an onboarding quiz (one 1-5 rating per category, in
// VectorCategories order) into a normalized vector and overwrites the stored
// preference, bypassing the incremental rule.
func (s *TasteService) SetSurvey(ctx context.Context, userID uint, ratings []int) (domain.TasteVector, error) {
	if err := ctx.Err(); err != nil {
		return domain.TasteVector{}, fmt.Errorf("context error: %w", err)
	}
	if len(ratings) != domain.VectorDim {
		return domain.TasteVector{}, domain.ErrInvalidDimension
	}

	var v domain.TasteVector
	for i, r := range ratings {
		if r < 1 || r > 5 {
			return domain.TasteVector{}, errors.New("ratings must be between 1 and 5")
		}
		v[i] = float64(r-1) / 4.0
	}
	v = v.Normalize()

	if err := s.prefRepo.Set(ctx, userID, v); err != nil {
		return domain.TasteVector{}, fmt.Errorf("failed to persist preference: %w", err)
	}

	return v, nil
}

// GetPreference returns the stored vector and the user's lifetime vote count.
func (s *TasteService) GetPreference(ctx context.Context, userID uint) (domain.TasteVector, int64, error) {
	if err := ctx.Err(); err != nil {
		return domain.TasteVector{}, 0, fmt.Errorf("context error: %w", err)
	}

	v, err := s.prefRepo.Get(ctx, userID)
	if err != nil {
		return domain.TasteVector{}, 0, fmt.Errorf("failed to load preference: %w", err)
	}

	count, err := s.voteRepo.CountByUser(ctx, userID)
	if err != nil {
		return domain.TasteVector{}, 0, fmt.Errorf("failed to count votes: %w", err)
	}

	return v, count, nil
}

func choiceLabel(choice int) string {
	if choice > 0 {
		return "like"
	}
	return "dislike"
}
