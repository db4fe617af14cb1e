package middleware

import (
	"net/http"

	"cosound/pkg/logger"

	jsonres "cosound/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler turns unhandled echo errors into the shared envelope so every
// response body has the same shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("unhandled request error", err)
	}

	if jsonErr := c.JSON(code, jsonres.Error(http.StatusText(code), message, nil)); jsonErr != nil {
		logger.Error("failed to write error response", jsonErr)
	}
}
