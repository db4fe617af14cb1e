package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"cosound/domain"
)

// ---- in-memory fakes ----

type fakePrefRepo struct {
	vectors map[uint]domain.TasteVector
}

func (f *fakePrefRepo) Get(_ context.Context, userID uint) (domain.TasteVector, error) {
	return f.vectors[userID], nil
}

func (f *fakePrefRepo) AllUserIDs(_ context.Context) ([]uint, error) {
	ids := make([]uint, 0, len(f.vectors))
	for id := range f.vectors {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakePresence struct {
	active []uint
}

func (f *fakePresence) ListActive(_ context.Context) ([]uint, error) {
	return f.active, nil
}

type fakeTrackRepo struct {
	tracks []domain.Track
}

func (f *fakeTrackRepo) FindByID(_ context.Context, id uint) (domain.Track, error) {
	for _, tr := range f.tracks {
		if tr.ID == id {
			return tr, nil
		}
	}
	return domain.Track{}, errors.New("track not found")
}

func (f *fakeTrackRepo) FindEmbedded(_ context.Context) ([]domain.Track, error) {
	var out []domain.Track
	for _, tr := range f.tracks {
		if tr.Embedding != nil {
			out = append(out, tr)
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	entries []domain.PlayHistoryEntry
}

func (f *fakeHistoryRepo) Append(_ context.Context, entry *domain.PlayHistoryEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) LastPlayedAt(_ context.Context) (map[uint]time.Time, error) {
	last := make(map[uint]time.Time)
	for _, e := range f.entries {
		if e.PlayedAt.After(last[e.TrackID]) {
			last[e.TrackID] = e.PlayedAt
		}
	}
	return last, nil
}

func (f *fakeHistoryRepo) Latest(_ context.Context) (domain.PlayHistoryEntry, bool, error) {
	if len(f.entries) == 0 {
		return domain.PlayHistoryEntry{}, false, nil
	}
	latest := f.entries[0]
	for _, e := range f.entries[1:] {
		if e.PlayedAt.After(latest.PlayedAt) {
			latest = e
		}
	}
	return latest, true, nil
}

func unit(v domain.TasteVector) *domain.TasteVector {
	n := v.Normalize()
	return &n
}

type fixture struct {
	svc     *RecommendService
	prefs   *fakePrefRepo
	room    *fakePresence
	tracks  *fakeTrackRepo
	history *fakeHistoryRepo
}

func newFixture() *fixture {
	prefs := &fakePrefRepo{vectors: make(map[uint]domain.TasteVector)}
	room := &fakePresence{}
	tracks := &fakeTrackRepo{tracks: []domain.Track{
		{ID: 1, Title: "Rain on Tent", Embedding: unit(domain.TasteVector{1, 0, 0, 0, 0})},
		{ID: 2, Title: "Shoreline", Embedding: unit(domain.TasteVector{0, 1, 0, 0, 0})},
		{ID: 3, Title: "Rolling Thunder", Embedding: unit(domain.TasteVector{0, 0, 1, 0, 0})},
		{ID: 4, Title: "Unclassified"},
	}}
	history := &fakeHistoryRepo{}
	svc := NewRecommendService(prefs, room, tracks, history, DefaultConfig())
	return &fixture{svc: svc, prefs: prefs, room: room, tracks: tracks, history: history}
}

// ---- tests ----

func TestAggregateMean(t *testing.T) {
	f := newFixture()
	f.prefs.vectors[1] = domain.TasteVector{1, 0, 0, 0, 0}
	f.prefs.vectors[2] = domain.TasteVector{0, 1, 0, 0, 0}

	got, err := f.svc.Aggregate(context.Background(), []uint{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.TasteVector{1, 1, 0, 0, 0}.Normalize()
	if got.CosineDistance(want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if math.Abs(got.Norm()-1) > 1e-9 {
		t.Fatalf("expected unit norm, got %v", got.Norm())
	}
}

func TestAggregateIncludesNewcomers(t *testing.T) {
	f := newFixture()
	f.prefs.vectors[1] = domain.TasteVector{1, 0, 0, 0, 0}
	// user 2 has never voted: zero vector, still part of the mean

	solo, err := f.svc.Aggregate(context.Background(), []uint{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	both, err := f.svc.Aggregate(context.Background(), []uint{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the newcomer dilutes the mean but normalization restores direction
	if solo.CosineDistance(both) > 1e-9 {
		t.Fatalf("direction should be unchanged: %v vs %v", solo, both)
	}
}

func TestAggregateEmptyPopulation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Aggregate(context.Background(), nil)
	if !errors.Is(err, domain.ErrEmptyPopulation) {
		t.Fatalf("expected ErrEmptyPopulation, got %v", err)
	}
}

func TestRankOrdersByDistance(t *testing.T) {
	f := newFixture()

	query := domain.TasteVector{1, 0, 0, 0, 0}
	ranked, err := f.svc.Rank(context.Background(), query, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != 3 {
		t.Fatalf("expected 3 embedded tracks, got %d", len(ranked))
	}
	if ranked[0].Track.ID != 1 {
		t.Fatalf("expected track 1 first, got %d", ranked[0].Track.ID)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].AdjustedScore < ranked[i-1].AdjustedScore {
			t.Fatalf("scores not ascending at %d", i)
		}
	}
}

func TestRankTieBreaksByTrackID(t *testing.T) {
	f := newFixture()

	// equidistant from tracks 2 and 3, track 1 exactly opposite
	query := domain.TasteVector{-1, 1, 1, 0, 0}.Normalize()
	ranked, err := f.svc.Rank(context.Background(), query, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ranked[0].Track.ID != 2 || ranked[1].Track.ID != 3 {
		t.Fatalf("expected tie broken by id: got %d then %d", ranked[0].Track.ID, ranked[1].Track.ID)
	}
}

func TestRankPenalizesRecentPlay(t *testing.T) {
	f := newFixture()

	// tracks 2 and 3 are equally distant from the query; 2 just played
	f.history.entries = append(f.history.entries, domain.PlayHistoryEntry{
		TrackID:  2,
		PlayedAt: time.Now().Add(-time.Minute),
	})

	query := domain.TasteVector{-1, 1, 1, 0, 0}.Normalize()
	ranked, err := f.svc.Rank(context.Background(), query, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ranked[0].Track.ID != 3 {
		t.Fatalf("recent play should demote track 2, got %d first", ranked[0].Track.ID)
	}

	var penalized domain.RankedTrack
	for _, r := range ranked {
		if r.Track.ID == 2 {
			penalized = r
		}
	}
	if penalized.Penalty <= 0 {
		t.Fatalf("expected positive penalty, got %v", penalized.Penalty)
	}
}

func TestRankEmptyCatalog(t *testing.T) {
	f := newFixture()
	f.tracks.tracks = nil

	_, err := f.svc.Rank(context.Background(), domain.TasteVector{1, 0, 0, 0, 0}, 10)
	if !errors.Is(err, domain.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestRecencyPenaltyDecay(t *testing.T) {
	f := newFixture()
	now := time.Now()

	fresh := f.svc.recencyPenalty(now.Add(-time.Minute), now)
	old := f.svc.recencyPenalty(now.Add(-2*time.Hour), now)
	never := f.svc.recencyPenalty(time.Time{}, now)

	if fresh <= old {
		t.Fatalf("penalty must decay: fresh=%v old=%v", fresh, old)
	}
	if never != 0 {
		t.Fatalf("never-played penalty must be 0, got %v", never)
	}
	if fresh > f.svc.cfg.PenaltyWeight {
		t.Fatalf("penalty exceeds weight: %v", fresh)
	}

	// half-life: penalty halves after PenaltyHalfLife
	half := f.svc.recencyPenalty(now.Add(-f.svc.cfg.PenaltyHalfLife), now)
	if math.Abs(half-f.svc.cfg.PenaltyWeight/2) > 1e-9 {
		t.Fatalf("expected half weight at half-life, got %v", half)
	}
}

func TestSelectNextRecordsPlay(t *testing.T) {
	f := newFixture()
	f.prefs.vectors[1] = domain.TasteVector{1, 0, 0, 0, 0}
	f.room.active = []uint{1}

	tracks, err := f.svc.SelectNext(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != 1 {
		t.Fatalf("expected track 1, got %v", tracks)
	}
	if len(f.history.entries) != 1 || f.history.entries[0].TrackID != 1 {
		t.Fatalf("expected play recorded for track 1, got %v", f.history.entries)
	}
}

func TestSelectNextAvoidsImmediateRepeat(t *testing.T) {
	f := newFixture()
	// leaning to rain but with real interest in sea waves, so a penalized
	// winner has a viable runner-up
	f.prefs.vectors[1] = domain.TasteVector{1, 0.6, 0, 0, 0}.Normalize()
	f.room.active = []uint{1}

	first, err := f.svc.SelectNext(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.SelectNext(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first[0].ID == second[0].ID {
		t.Fatalf("back-to-back selection repeated track %d", first[0].ID)
	}
}

func TestSelectNextFallsBackToFullPopulation(t *testing.T) {
	f := newFixture()
	f.prefs.vectors[1] = domain.TasteVector{0, 0, 1, 0, 0}
	// nobody checked in

	tracks, err := f.svc.SelectNext(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracks[0].ID != 3 {
		t.Fatalf("expected fallback to known population, got track %d", tracks[0].ID)
	}
}

func TestSelectNextNoPreferenceData(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SelectNext(context.Background(), 1)
	if !errors.Is(err, domain.ErrNoPreferenceData) {
		t.Fatalf("expected ErrNoPreferenceData, got %v", err)
	}
}

func TestNowPlaying(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.NowPlaying(context.Background())
	if !errors.Is(err, ErrNothingPlaying) {
		t.Fatalf("expected ErrNothingPlaying, got %v", err)
	}

	playedAt := time.Now().Add(-30 * time.Second)
	f.history.entries = append(f.history.entries,
		domain.PlayHistoryEntry{TrackID: 1, PlayedAt: playedAt.Add(-time.Hour)},
		domain.PlayHistoryEntry{TrackID: 2, PlayedAt: playedAt},
	)

	track, at, err := f.svc.NowPlaying(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.ID != 2 {
		t.Fatalf("expected track 2, got %d", track.ID)
	}
	if !at.Equal(playedAt) {
		t.Fatalf("expected played_at %v, got %v", playedAt, at)
	}
}

func TestDebugRankDoesNotRecord(t *testing.T) {
	f := newFixture()
	f.prefs.vectors[1] = domain.TasteVector{1, 0, 0, 0, 0}
	f.room.active = []uint{1}

	ranking, err := f.svc.DebugRank(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranking.Ranked) == 0 {
		t.Fatal("expected ranked tracks")
	}
	if ranking.Fallback {
		t.Fatal("fallback flag should be false with an active room")
	}
	if len(f.history.entries) != 0 {
		t.Fatal("debug ranking must not record a play")
	}
}
