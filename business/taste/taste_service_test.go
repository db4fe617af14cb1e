package taste

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"cosound/domain"

	"gorm.io/gorm"
)

// ---- in-memory fakes ----

type fakePrefRepo struct {
	vectors map[uint]domain.TasteVector
	setErr  error
}

func newFakePrefRepo() *fakePrefRepo {
	return &fakePrefRepo{vectors: make(map[uint]domain.TasteVector)}
}

func (f *fakePrefRepo) Get(_ context.Context, userID uint) (domain.TasteVector, error) {
	return f.vectors[userID], nil
}

func (f *fakePrefRepo) Set(_ context.Context, userID uint, v domain.TasteVector) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.vectors[userID] = v
	return nil
}

type fakeVoteRepo struct {
	votes []domain.Vote
}

func (f *fakeVoteRepo) Save(_ context.Context, vote *domain.Vote) error {
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	f.votes = append(f.votes, *vote)
	return nil
}

func (f *fakeVoteRepo) CountSince(_ context.Context, userID uint, since time.Time) (int64, error) {
	var n int64
	for _, v := range f.votes {
		if v.UserID == userID && v.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeVoteRepo) CountByUser(_ context.Context, userID uint) (int64, error) {
	var n int64
	for _, v := range f.votes {
		if v.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeTrackRepo struct {
	tracks map[uint]domain.Track
}

func (f *fakeTrackRepo) FindByID(_ context.Context, id uint) (domain.Track, error) {
	track, ok := f.tracks[id]
	if !ok {
		return domain.Track{}, gorm.ErrRecordNotFound
	}
	return track, nil
}

func embedded(v domain.TasteVector) *domain.TasteVector {
	n := v.Normalize()
	return &n
}

func newTestService(cfg Config) (*TasteService, *fakePrefRepo, *fakeVoteRepo, *fakeTrackRepo) {
	prefs := newFakePrefRepo()
	votes := &fakeVoteRepo{}
	tracks := &fakeTrackRepo{tracks: map[uint]domain.Track{
		1: {ID: 1, Title: "Rain on Tent", Embedding: embedded(domain.TasteVector{1, 0, 0, 0, 0})},
		2: {ID: 2, Title: "Shoreline", Embedding: embedded(domain.TasteVector{0, 1, 0, 0, 0})},
		3: {ID: 3, Title: "Unclassified"},
	}}
	return NewTasteService(prefs, votes, tracks, cfg), prefs, votes, tracks
}

// ---- tests ----

func TestProcessVoteLikeFromCold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = 0
	svc, prefs, votes, _ := newTestService(cfg)

	got, err := svc.ProcessVote(context.Background(), 7, "1", 1, "app", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// cold start: the first like lands exactly on the track's direction
	want := domain.TasteVector{1, 0, 0, 0, 0}
	if got.CosineDistance(want) > 1e-9 {
		t.Fatalf("expected vector aligned with embedding, got %v", got)
	}
	if math.Abs(got.Norm()-1) > 1e-9 {
		t.Fatalf("expected unit norm, got %v", got.Norm())
	}
	if stored := prefs.vectors[7]; stored != got {
		t.Fatalf("stored vector %v differs from returned %v", stored, got)
	}
	if len(votes.votes) != 1 {
		t.Fatalf("expected 1 vote fact, got %d", len(votes.votes))
	}
}

func TestProcessVoteLikeMovesCloser(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = 0
	svc, prefs, _, _ := newTestService(cfg)

	start := domain.TasteVector{0, 1, 0, 0, 0}
	prefs.vectors[7] = start
	target := domain.TasteVector{1, 0, 0, 0, 0}

	before := start.CosineDistance(target)
	got, err := svc.ProcessVote(context.Background(), 7, "1", 1, "app", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := got.CosineDistance(target)

	if after >= before {
		t.Fatalf("like should move closer: before=%v after=%v", before, after)
	}
	if math.Abs(got.Norm()-1) > 1e-9 {
		t.Fatalf("expected unit norm, got %v", got.Norm())
	}
}

func TestProcessVoteDislikeMovesAway(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = 0
	svc, prefs, _, _ := newTestService(cfg)

	// partially aligned with track 1
	start := domain.TasteVector{1, 1, 0, 0, 0}.Normalize()
	prefs.vectors[7] = start
	target := domain.TasteVector{1, 0, 0, 0, 0}

	before := start.CosineDistance(target)
	got, err := svc.ProcessVote(context.Background(), 7, "1", -1, "app", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := got.CosineDistance(target)

	if after <= before {
		t.Fatalf("dislike should move away: before=%v after=%v", before, after)
	}
	if math.Abs(got.Norm()-1) > 1e-9 {
		t.Fatalf("expected unit norm, got %v", got.Norm())
	}
}

func TestProcessVoteCooldown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = time.Minute
	svc, _, votes, _ := newTestService(cfg)

	if _, err := svc.ProcessVote(context.Background(), 7, "1", 1, "app", nil); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	_, err := svc.ProcessVote(context.Background(), 7, "2", 1, "app", nil)
	if !errors.Is(err, domain.ErrVoteCooldown) {
		t.Fatalf("expected ErrVoteCooldown, got %v", err)
	}
	if len(votes.votes) != 1 {
		t.Fatalf("cooled-down vote must not be recorded, got %d facts", len(votes.votes))
	}

	// a different user is unaffected
	if _, err := svc.ProcessVote(context.Background(), 8, "1", 1, "app", nil); err != nil {
		t.Fatalf("other user's vote failed: %v", err)
	}
}

func TestProcessVoteUnusableRef(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = 0
	svc, prefs, votes, _ := newTestService(cfg)

	for _, ref := range []string{"not-a-number", "999", "3"} {
		_, err := svc.ProcessVote(context.Background(), 7, ref, 1, "app", nil)
		if !errors.Is(err, domain.ErrInvalidEmbedding) {
			t.Fatalf("ref %q: expected ErrInvalidEmbedding, got %v", ref, err)
		}
	}

	// the engagement signal is kept even though no update happened
	if len(votes.votes) != 3 {
		t.Fatalf("expected 3 vote facts, got %d", len(votes.votes))
	}
	if v := prefs.vectors[7]; !v.IsZero() {
		t.Fatalf("preference must stay untouched, got %v", v)
	}
}

func TestProcessVoteFactSurvivesSetFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = 0
	svc, prefs, votes, _ := newTestService(cfg)
	prefs.setErr = errors.New("store down")

	_, err := svc.ProcessVote(context.Background(), 7, "1", 1, "app", nil)
	if err == nil {
		t.Fatal("expected error when preference store fails")
	}
	if len(votes.votes) != 1 {
		t.Fatalf("vote fact must be recorded despite persist failure, got %d", len(votes.votes))
	}
}

func TestProcessVoteContextMetadata(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = 0
	svc, _, votes, _ := newTestService(cfg)

	_, err := svc.ProcessVote(context.Background(), 7, "1", 1, "tag", map[string]any{"ip": "10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vote := votes.votes[0]
	if vote.TrackRef == nil || *vote.TrackRef != "1" {
		t.Fatalf("expected track ref recorded, got %v", vote.TrackRef)
	}
	if vote.Value != domain.VoteLike {
		t.Fatalf("expected like, got %d", vote.Value)
	}
	if vote.Context["ip"] != "10.0.0.1" {
		t.Fatalf("expected context metadata, got %v", vote.Context)
	}
}

func TestSetSurvey(t *testing.T) {
	cfg := DefaultConfig()
	svc, prefs, _, _ := newTestService(cfg)

	got, err := svc.SetSurvey(context.Background(), 7, []int{5, 1, 1, 1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// rating 1 maps to zero intensity, so only the first category remains
	want := domain.TasteVector{1, 0, 0, 0, 0}
	if got.CosineDistance(want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if prefs.vectors[7] != got {
		t.Fatal("survey result not persisted")
	}

	if _, err := svc.SetSurvey(context.Background(), 7, []int{5, 5}); !errors.Is(err, domain.ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
	if _, err := svc.SetSurvey(context.Background(), 7, []int{0, 1, 1, 1, 1}); err == nil {
		t.Fatal("expected error for out-of-range rating")
	}
	if _, err := svc.SetSurvey(context.Background(), 7, []int{6, 1, 1, 1, 1}); err == nil {
		t.Fatal("expected error for out-of-range rating")
	}
}

func TestGetPreference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = 0
	svc, _, _, _ := newTestService(cfg)

	v, count, err := svc.GetPreference(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsZero() || count != 0 {
		t.Fatalf("expected cold state, got %v / %d", v, count)
	}

	if _, err := svc.ProcessVote(context.Background(), 7, "1", 1, "app", nil); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	v, count, err = svc.GetPreference(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IsZero() || count != 1 {
		t.Fatalf("expected warm state, got %v / %d", v, count)
	}
}
