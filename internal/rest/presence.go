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
	PresenceHandler struct {
		validate        *validator.Validate
		presenceService PresenceService
		timeout         time.Duration
	}

	PresenceService interface {
		CheckIn(ctx context.Context, userID uint, window time.Duration) (domain.PresenceSession, error)
		CheckOut(ctx context.Context, userID uint) error
		ListActive(ctx context.Context) ([]uint, error)
	}

	CheckInInput struct {
		// Optional override of the default presence window, in seconds.
		WindowSeconds int `json:"window_seconds" validate:"min=0"`
	}
)

func NewPresenceHandler(presenceService PresenceService) *PresenceHandler {
	return &PresenceHandler{
		validate:        validator.New(),
		presenceService: presenceService,
		timeout:         10 * time.Second,
	}
}

func (h *PresenceHandler) CheckIn(c echo.Context) error {
	userID := c.Get("user_id").(uint)

	var request CheckInInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate check-in request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := h.presenceService.CheckIn(ctx, userID, time.Duration(request.WindowSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownUser) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to check in", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(session))
}

func (h *PresenceHandler) CheckOut(c echo.Context) error {
	userID := c.Get("user_id").(uint)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.presenceService.CheckOut(ctx, userID); err != nil {
		logger.Error("Failed to check out", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Checked out"))
}

func (h *PresenceHandler) ListActive(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	userIDs, err := h.presenceService.ListActive(ctx)
	if err != nil {
		logger.Error("Failed to list active users", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{
		"user_ids": userIDs,
		"count":    len(userIDs),
	}))
}
