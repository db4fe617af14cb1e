package rest

import (
	"context"
	"net/http"
	"time"

	"cosound/domain"
	"cosound/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	TrackHandler struct {
		validate     *validator.Validate
		trackService TrackCatalog
		timeout      time.Duration
	}

	TrackCatalog interface {
		Create(ctx context.Context, track *domain.Track) error
	}

	TrackInput struct {
		Title   string `json:"title" validate:"required"`
		Artist  string `json:"artist"`
		FileURL string `json:"file_url" validate:"required,url"`
		// Per-category intensities; omit for an unclassified track.
		Embedding []float64 `json:"embedding,omitempty" validate:"omitempty,len=5"`
	}
)

func NewTrackHandler(trackService TrackCatalog) *TrackHandler {
	return &TrackHandler{
		validate:     validator.New(),
		trackService: trackService,
		timeout:      10 * time.Second,
	}
}

// Create provisions a catalog entry. Tracks without an embedding are stored
// but never ranked.
func (h *TrackHandler) Create(c echo.Context) error {
	var request TrackInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate track request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	track := domain.Track{
		Title:   request.Title,
		Artist:  request.Artist,
		FileURL: request.FileURL,
	}
	if len(request.Embedding) > 0 {
		vec, err := domain.VectorFromSlice(request.Embedding)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		norm := vec.Normalize()
		track.Embedding = &norm
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.trackService.Create(ctx, &track); err != nil {
		logger.Error("Failed to create track", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(track))
}
