package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultCreated          = "created"
	ResultDuplicate        = "duplicate"
	ResultInvalidSignature = "invalid_signature"
	ResultInvalidPayload   = "invalid_payload"
)

// WebhookRequests counts webhook deliveries by outcome. It is registered on
// the default registry, which is what echoprometheus.NewHandler serves.
var WebhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inbound",
	Name:      "webhook_requests_total",
	Help:      "Webhook deliveries by result.",
}, []string{"result"})

func ObserveWebhook(result string) {
	WebhookRequests.WithLabelValues(result).Inc()
}
