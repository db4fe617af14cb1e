package taste

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cosound/domain"

	"github.com/pobyzaarif/goshortcute"
)

const testTagKey = "0123456789abcdef"

func newTagTestService() (*TasteService, *fakeVoteRepo) {
	cfg := DefaultConfig()
	cfg.VoteCooldown = 0
	cfg.TagTokenKey = testTagKey
	svc, _, votes, _ := newTestService(cfg)
	return svc, votes
}

func TestTapTokenRoundTrip(t *testing.T) {
	svc, votes := newTagTestService()

	token, err := svc.MintTapToken("1", 1, 0)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	got, err := svc.RedeemTapToken(context.Background(), 7, token, nil)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if got.IsZero() {
		t.Fatal("expected preference update from tag vote")
	}

	if len(votes.votes) != 1 {
		t.Fatalf("expected 1 vote fact, got %d", len(votes.votes))
	}
}

func TestTapTokenOpaque(t *testing.T) {
	svc, _ := newTagTestService()

	token, err := svc.MintTapToken("1", -1, time.Hour)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	// a tag must not leak its target in the URL
	if token == "1" || len(token) < 16 {
		t.Fatalf("token looks transparent: %q", token)
	}
}

func TestTapTokenExpired(t *testing.T) {
	svc, votes := newTagTestService()

	past := time.Now().Add(-time.Hour).Unix()
	payload := fmt.Sprintf("1|1|%d", past)
	enc, err := goshortcute.AESCBCEncrypt([]byte(payload), []byte(testTagKey))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	token := goshortcute.StringtoBase64Encode(enc)

	_, err = svc.RedeemTapToken(context.Background(), 7, token, nil)
	if !errors.Is(err, domain.ErrInvalidTapToken) {
		t.Fatalf("expected ErrInvalidTapToken, got %v", err)
	}
	if len(votes.votes) != 0 {
		t.Fatal("expired token must not record a vote")
	}
}

func TestTapTokenGarbage(t *testing.T) {
	svc, _ := newTagTestService()

	for _, token := range []string{"", "not-a-token", "YWJjZGVm"} {
		if _, err := svc.RedeemTapToken(context.Background(), 7, token, nil); !errors.Is(err, domain.ErrInvalidTapToken) {
			t.Fatalf("token %q: expected ErrInvalidTapToken, got %v", token, err)
		}
	}
}

func TestMintTapTokenRejectsSeparator(t *testing.T) {
	svc, _ := newTagTestService()

	if _, err := svc.MintTapToken("1|2", 1, 0); err == nil {
		t.Fatal("expected error for separator in track ref")
	}
	if _, err := svc.MintTapToken("", 1, 0); err == nil {
		t.Fatal("expected error for empty track ref")
	}
}
