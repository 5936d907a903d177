package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IntentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oms",
		Subsystem: "checkout",
		Name:      "intents_created_total",
		Help:      "Payment intents successfully opened with the provider.",
	})

	WebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oms",
		Subsystem: "checkout",
		Name:      "webhook_events_total",
		Help:      "Verified webhook events by type and reconciliation outcome.",
	}, []string{"type", "outcome"})

	AmountMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oms",
		Subsystem: "checkout",
		Name:      "amount_mismatch_total",
		Help:      "Events whose reported amount differed from the order total.",
	})
)

func init() {
	prometheus.MustRegister(IntentsCreated, WebhookEvents, AmountMismatches)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
