package taste

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cosound/domain"
	"cosound/pkg/logger"

	"github.com/pobyzaarif/goshortcute"
)

// Physical NFC tags carry an opaque token in their URL instead of a raw track
// reference, so a tag cannot be rewritten to vote on arbitrary targets.
// Payload format: trackRef|value|expUnix (exp 0 = tag never expires).

var ErrInvalidTapToken = domain.ErrInvalidTapToken

func (s *TasteService) MintTapToken(trackRef string, value int, ttl time.Duration) (string, error) {
	if trackRef == "" {
		return "", errors.New("track ref is required")
	}
	if strings.Contains(trackRef, "|") {
		return "", errors.New("track ref must not contain '|'")
	}

	expAt := int64(0)
	if ttl > 0 {
		expAt = time.Now().Add(ttl).Unix()
	}

	payload := fmt.Sprintf("%s|%d|%d", trackRef, value, expAt)
	enc, err := goshortcute.AESCBCEncrypt([]byte(payload), []byte(s.cfg.TagTokenKey))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt tap token: %w", err)
	}

	return goshortcute.StringtoBase64Encode(enc), nil
}

// RedeemTapToken decodes a tag token and casts the embedded vote for userID.
func (s *TasteService) RedeemTapToken(
	ctx context.Context,
	userID uint,
	token string,
	voteCtx map[string]any,
) (domain.TasteVector, error) {

	strDecode := goshortcute.StringtoBase64Decode(token)
	payload, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.cfg.TagTokenKey))
	if err != nil {
		logger.Error("Tap token decrypt failed", err)
		return domain.TasteVector{}, ErrInvalidTapToken
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return domain.TasteVector{}, ErrInvalidTapToken
	}

	trackRef := parts[0]
	value, err := strconv.Atoi(parts[1])
	if err != nil {
		return domain.TasteVector{}, ErrInvalidTapToken
	}

	expAt, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return domain.TasteVector{}, ErrInvalidTapToken
	}
	if expAt > 0 && time.Now().After(time.Unix(expAt, 0)) {
		return domain.TasteVector{}, ErrInvalidTapToken
	}

	return s.ProcessVote(ctx, userID, trackRef, value, "tag", voteCtx)
}
