package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.inbound/internal/metrics"
	"uk.co.dudmesh.inbound/internal/model"
)

func counter(result string) float64 {
	return testutil.ToFloat64(metrics.WebhookRequests.WithLabelValues(result))
}

func TestWebhook(t *testing.T) {
	assert := assert.New(t)
	server := newTestServer(t, testSecret)

	body := `{"message_id":"m1","from":"+919876543210","to":"+14155550100","ts":"2025-01-15T10:00:00Z","text":"Hello"}`

	t.Run("Created", func(t *testing.T) {
		created := counter(metrics.ResultCreated)

		rec := deliverSigned(server, body)
		assert.Equal(http.StatusOK, rec.Code)
		assert.JSONEq(`{"status":"ok"}`, rec.Body.String())
		assert.Equal(created+1, counter(metrics.ResultCreated))
	})

	t.Run("Duplicate", func(t *testing.T) {
		duplicate := counter(metrics.ResultDuplicate)

		replay := `{"message_id":"m1","from":"+10000000000","to":"+14155550100","ts":"2030-01-01T00:00:00Z","text":"changed"}`
		rec := deliverSigned(server, replay)
		assert.Equal(http.StatusOK, rec.Code)
		assert.JSONEq(`{"status":"ok"}`, rec.Body.String())
		assert.Equal(duplicate+1, counter(metrics.ResultDuplicate))

		rec = get(server, "/messages", nil)
		assert.Equal(http.StatusOK, rec.Code)
		var page model.Page
		assert.Nil(json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(1, page.Total)
		if assert.Len(page.Data, 1) {
			assert.Equal("+919876543210", page.Data[0].Sender)
			assert.Equal("Hello", *page.Data[0].Text)
		}
	})

	t.Run("Invalid Signature", func(t *testing.T) {
		invalid := counter(metrics.ResultInvalidSignature)

		rec := deliver(server, body, strings.Repeat("0", 64))
		assert.Equal(http.StatusUnauthorized, rec.Code)

		rec = deliver(server, body, "")
		assert.Equal(http.StatusUnauthorized, rec.Code)
		assert.Equal(invalid+2, counter(metrics.ResultInvalidSignature))
	})
}

func TestWebhookNotConfigured(t *testing.T) {
	assert := assert.New(t)
	server := newTestServer(t, "")

	rec := deliverSigned(server, `{"message_id":"m1","from":"A","to":"B","ts":"2025-01-15T10:00:00Z"}`)
	assert.Equal(http.StatusServiceUnavailable, rec.Code)

	rec = get(server, "/messages", nil)
	assert.Equal(http.StatusOK, rec.Code)
	assert.JSONEq(`{"data":[],"total":0,"limit":50,"offset":0}`, rec.Body.String())
}

func TestWebhookInvalidPayload(t *testing.T) {
	server := newTestServer(t, testSecret)

	tests := []struct {
		name string
		body string
	}{
		{"Not JSON", `message_id=m1`},
		{"Empty Body", ``},
		{"Missing Message ID", `{"from":"A","to":"B","ts":"2025-01-15T10:00:00Z"}`},
		{"Missing From", `{"message_id":"m1","to":"B","ts":"2025-01-15T10:00:00Z"}`},
		{"Missing To", `{"message_id":"m1","from":"A","ts":"2025-01-15T10:00:00Z"}`},
		{"Missing TS", `{"message_id":"m1","from":"A","to":"B"}`},
		{"Bad TS", `{"message_id":"m1","from":"A","to":"B","ts":"15/01/2025"}`},
		{"Numeric Message ID", `{"message_id":1,"from":"A","to":"B","ts":"2025-01-15T10:00:00Z"}`},
		{"Text Too Long", fmt.Sprintf(`{"message_id":"m1","from":"A","to":"B","ts":"2025-01-15T10:00:00Z","text":"%s"}`, strings.Repeat("x", model.MaxTextLength+1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			invalid := counter(metrics.ResultInvalidPayload)

			rec := deliverSigned(server, tt.body)
			assert.Equal(http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(invalid+1, counter(metrics.ResultInvalidPayload))
		})
	}

	rec := get(server, "/stats", nil)
	assert.JSONEq(t, `{"total_messages":0,"senders_count":0,"messages_per_sender":[],"first_message_ts":null,"last_message_ts":null}`, rec.Body.String())
}
