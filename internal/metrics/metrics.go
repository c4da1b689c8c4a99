// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stores_api"

var (
	TokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "tokens_issued_total",
		Help:      "Tokens issued, by kind and freshness.",
	}, []string{"kind", "fresh"})

	AuthDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "authorize_total",
		Help:      "Authorization outcomes at the request boundary.",
	}, []string{"outcome"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	Revocations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "revocations_total",
		Help:      "Token ids added to the blocklist.",
	})

	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notify",
		Name:      "emails_total",
		Help:      "Transactional emails by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(TokensIssued, AuthDecisions, Logins, Revocations, Notifications)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
