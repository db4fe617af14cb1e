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
	PreferenceHandler struct {
		validate     *validator.Validate
		tasteService TasteService
		timeout      time.Duration
	}

	TasteService interface {
		GetPreference(ctx context.Context, userID uint) (domain.TasteVector, int64, error)
		SetSurvey(ctx context.Context, userID uint, ratings []int) (domain.TasteVector, error)
	}

	SurveyInput struct {
		// One 1-5 rating per sound category, in catalog order.
		Ratings []int `json:"ratings" validate:"required,len=5,dive,min=1,max=5"`
	}

	PreferenceResult struct {
		Vector     []float64 `json:"vector"`
		Categories []string  `json:"categories"`
		VoteCount  int64     `json:"vote_count"`
	}
)

func NewPreferenceHandler(tasteService TasteService) *PreferenceHandler {
	return &PreferenceHandler{
		validate:     validator.New(),
		tasteService: tasteService,
		timeout:      10 * time.Second,
	}
}

func (h *PreferenceHandler) Get(c echo.Context) error {
	userID := c.Get("user_id").(uint)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	vector, votes, err := h.tasteService.GetPreference(ctx, userID)
	if err != nil {
		logger.Error("Failed to load preference", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(PreferenceResult{
		Vector:     vector[:],
		Categories: domain.VectorCategories[:],
		VoteCount:  votes,
	}))
}

// PutSurvey replaces the stored vector with one derived from explicit 1-5
// ratings, overwriting whatever voting has accumulated.
func (h *PreferenceHandler) PutSurvey(c echo.Context) error {
	userID := c.Get("user_id").(uint)

	var request SurveyInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate survey request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	vector, err := h.tasteService.SetSurvey(ctx, userID, request.Ratings)
	if err != nil {
		logger.Error("Failed to store survey", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(PreferenceResult{
		Vector:     vector[:],
		Categories: domain.VectorCategories[:],
	}))
}
