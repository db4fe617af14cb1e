package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cosound/business/recommend"
	"cosound/domain"
	"cosound/pkg/logger"
	"cosound/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	PlaybackHandler struct {
		recommendService RecommendService
		timeout          time.Duration
	}

	RecommendService interface {
		SelectNext(ctx context.Context, limit int) ([]domain.Track, error)
		NowPlaying(ctx context.Context) (domain.Track, time.Time, error)
		DebugRank(ctx context.Context, limit int) (recommend.DebugRanking, error)
	}

	NowPlayingResult struct {
		Track    domain.Track `json:"track"`
		PlayedAt time.Time    `json:"played_at"`
	}
)

func NewPlaybackHandler(recommendService RecommendService) *PlaybackHandler {
	return &PlaybackHandler{
		recommendService: recommendService,
		timeout:          10 * time.Second,
	}
}

// Next serves the playback client's poll for what to play. Each call records
// the returned tracks as played.
func (h *PlaybackHandler) Next(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.RecommendLatency)
	defer timer.ObserveDuration()
	metrics.RecommendRequests.Inc()

	limit := 1
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	tracks, err := h.recommendService.SelectNext(ctx, limit)
	if err != nil {
		return recommendError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(tracks))
}

func (h *PlaybackHandler) Now(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	track, playedAt, err := h.recommendService.NowPlaying(ctx)
	if err != nil {
		if errors.Is(err, recommend.ErrNothingPlaying) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to load now playing", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(NowPlayingResult{
		Track:    track,
		PlayedAt: playedAt,
	}))
}

// Rank exposes the scored ranking without recording a play. Admin only.
func (h *PlaybackHandler) Rank(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ranking, err := h.recommendService.DebugRank(ctx, limit)
	if err != nil {
		return recommendError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ranking))
}

// recommendError maps the structural empty states to 404: nothing is wrong,
// there is just nothing to recommend yet.
func recommendError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoPreferenceData),
		errors.Is(err, domain.ErrEmptyPopulation),
		errors.Is(err, domain.ErrEmptyCatalog):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	default:
		logger.Error("Failed to rank tracks", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
}
