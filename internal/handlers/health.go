package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func Live() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, statusResponse{Status: "alive"})
	}
}

// Ready fails until a webhook secret is configured and the database answers.
func Ready(messageService MessageService, secret string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if secret == "" {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "webhook secret not configured")
		}
		if err := messageService.Ready(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
		}
		return c.JSON(http.StatusOK, statusResponse{Status: "ready"})
	}
}
