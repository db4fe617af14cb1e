package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cosound/domain"
	"cosound/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	VoteHandler struct {
		validate    *validator.Validate
		voteService VoteService
		timeout     time.Duration
	}

	VoteService interface {
		ProcessVote(ctx context.Context, userID uint, trackRef string, value int, source string, voteCtx map[string]any) (domain.TasteVector, error)
		MintTapToken(trackRef string, value int, ttl time.Duration) (string, error)
		RedeemTapToken(ctx context.Context, userID uint, token string, voteCtx map[string]any) (domain.TasteVector, error)
	}

	VoteInput struct {
		TrackRef string         `json:"track_ref"`
		Value    int            `json:"value" validate:"required"`
		Context  map[string]any `json:"context,omitempty"`
	}

	TapTokenInput struct {
		TrackRef   string `json:"track_ref" validate:"required"`
		Value      int    `json:"value" validate:"required"`
		TTLSeconds int    `json:"ttl_seconds" validate:"min=0"`
	}

	VoteResult struct {
		Applied bool      `json:"applied"`
		Vector  []float64 `json:"vector"`
	}
)

func NewVoteHandler(voteService VoteService) *VoteHandler {
	return &VoteHandler{
		validate:    validator.New(),
		voteService: voteService,
		timeout:     10 * time.Second,
	}
}

// Cast handles an app-sourced vote from the authenticated user.
func (h *VoteHandler) Cast(c echo.Context) error {
	userID := c.Get("user_id").(uint)

	var request VoteInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate vote request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	vector, err := h.voteService.ProcessVote(ctx, userID, request.TrackRef, request.Value, "app", request.Context)
	if err != nil {
		return voteError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(VoteResult{
		Applied: true,
		Vector:  vector[:],
	}))
}

// RedeemTap handles a vote carried in a pre-minted tag token. The token binds
// the track and the choice; the caller only contributes identity.
func (h *VoteHandler) RedeemTap(c echo.Context) error {
	userID := c.Get("user_id").(uint)

	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	vector, err := h.voteService.RedeemTapToken(ctx, userID, token, map[string]any{
		"ip": c.RealIP(),
	})
	if err != nil {
		return voteError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(VoteResult{
		Applied: true,
		Vector:  vector[:],
	}))
}

// MintTap issues a tag token for provisioning a physical tag. Admin only.
func (h *VoteHandler) MintTap(c echo.Context) error {
	var request TapTokenInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate tap token request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	token, err := h.voteService.MintTapToken(request.TrackRef, request.Value, time.Duration(request.TTLSeconds)*time.Second)
	if err != nil {
		logger.Error("Failed to mint tap token", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(map[string]any{
		"token": token,
	}))
}

func voteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrVoteCooldown):
		return c.JSON(http.StatusTooManyRequests, ResponseError{Message: "vote cooldown in effect"})
	case errors.Is(err, domain.ErrInvalidTapToken):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidEmbedding):
		// Vote recorded as a fact; no preference update happened.
		return c.JSON(http.StatusOK, fres.Response.StatusOK(VoteResult{Applied: false}))
	default:
		logger.Error("Failed to process vote", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
}
