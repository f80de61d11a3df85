package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.inbound/internal/metrics"
	"uk.co.dudmesh.inbound/internal/model"
	"uk.co.dudmesh.inbound/pkg/signature"
)

type MessageService interface {
	Ingest(ctx context.Context, params *model.IngestParams) (model.InsertResult, error)
	List(ctx context.Context, params model.ListParams) (*model.Page, error)
	Stats(ctx context.Context) (*model.Stats, error)
	Ready(ctx context.Context) error
}

type statusResponse struct {
	Status string `json:"status"`
}

func unmarshallIngestParams(rawRequest []byte) (*model.IngestParams, error) {
	var params model.IngestParams
	err := json.Unmarshal(rawRequest, &params)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling payload: %w", err)
	}
	return &params, nil
}

// Webhook verifies the X-Signature of the raw body before it is parsed. A
// replayed message_id answers 200 exactly like the first delivery.
func Webhook(messageService MessageService, secret string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if secret == "" {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "webhook secret not configured")
		}

		body := c.Request().Body
		defer body.Close()

		rawRequest, err := io.ReadAll(body)
		if err != nil {
			var httpError *echo.HTTPError
			if errors.As(err, &httpError) {
				return httpError
			}
			return fmt.Errorf("reading request body: %w", err)
		}

		err = signature.Verify(secret, rawRequest, c.Request().Header.Get(signature.HeaderName))
		if err != nil {
			metrics.ObserveWebhook(metrics.ResultInvalidSignature)
			c.Set(ContextKeyResult, metrics.ResultInvalidSignature)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature").SetInternal(err)
		}

		params, err := unmarshallIngestParams(rawRequest)
		if err != nil {
			metrics.ObserveWebhook(metrics.ResultInvalidPayload)
			c.Set(ContextKeyResult, metrics.ResultInvalidPayload)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid payload").SetInternal(err)
		}
		c.Set(ContextKeyMessageID, params.MessageID)

		result, err := messageService.Ingest(c.Request().Context(), params)
		if err != nil {
			if errors.Is(err, model.ErrorInvalidInput) {
				metrics.ObserveWebhook(metrics.ResultInvalidPayload)
				c.Set(ContextKeyResult, metrics.ResultInvalidPayload)
			}
			return serviceError(err)
		}

		metrics.ObserveWebhook(result.String())
		c.Set(ContextKeyResult, result.String())

		return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
	}
}
