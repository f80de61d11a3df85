package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.inbound/internal/model"
)

// serviceError maps service failures onto HTTP statuses. Storage details stay
// in the internal error and never reach the client.
func serviceError(err error) error {
	switch {
	case errors.Is(err, model.ErrorInvalidInput):
		message := err.Error()
		if i := strings.Index(message, model.ErrorInvalidInput.Error()); i >= 0 {
			message = message[i:]
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, message).SetInternal(err)
	case errors.Is(err, model.ErrorStorage):
		return echo.NewHTTPError(http.StatusInternalServerError, "storage unavailable").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}
