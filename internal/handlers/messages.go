package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.inbound/internal/model"
)

func bindListParams(c echo.Context) (model.ListParams, error) {
	params := model.NewListParams()

	var since time.Time
	err := echo.QueryParamsBinder(c).
		Int("limit", &params.Limit).
		Int("offset", &params.Offset).
		String("from", &params.Filter.Sender).
		Time("since", &since, time.RFC3339Nano).
		String("q", &params.Filter.Q).
		BindError()
	if err != nil {
		return params, err
	}

	if c.QueryParam("since") != "" {
		params.Filter.Since = &since
	}
	return params, nil
}

func ListMessages(messageService MessageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params, err := bindListParams(c)
		if err != nil {
			var bindingError *echo.BindingError
			if errors.As(err, &bindingError) {
				return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("invalid %s", bindingError.Field)).SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}

		page, err := messageService.List(c.Request().Context(), params)
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(http.StatusOK, page)
	}
}

func Stats(messageService MessageService) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := messageService.Stats(c.Request().Context())
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(http.StatusOK, stats)
	}
}
