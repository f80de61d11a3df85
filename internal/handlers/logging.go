package handlers

import (
	"math"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.inbound/internal/metrics"
)

const (
	ContextKeyMessageID = "message_id"
	ContextKeyResult    = "result"
)

// RequestLogger writes one JSON line per request. It needs the RequestID
// middleware to run first.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		HandleError:  true,
		LogRequestID: true,
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.JSON{
				"request_id": v.RequestID,
				"method":     v.Method,
				"path":       v.URIPath,
				"status":     v.Status,
				"latency_ms": math.Round(float64(v.Latency.Microseconds())/10) / 100,
			}
			if messageID, ok := c.Get(ContextKeyMessageID).(string); ok {
				entry["message_id"] = messageID
			}
			if result, ok := c.Get(ContextKeyResult).(string); ok {
				entry["result"] = result
				entry["dup"] = result == metrics.ResultDuplicate
			}
			if v.Error != nil {
				entry["error"] = v.Error.Error()
			}

			if v.Status >= 500 {
				c.Logger().Errorj(entry)
			} else {
				c.Logger().Infoj(entry)
			}
			return nil
		},
	})
}
