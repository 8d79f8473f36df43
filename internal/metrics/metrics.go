package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del flujo de login. Viven en un paquete aparte para que webflow y
// tenant no dependan entre sí.

// Outcomes de AuthorizeResults.
const (
	OutcomeSucceeded           = "succeeded"
	OutcomeAccessDenied        = "access_denied"
	OutcomeProviderError       = "provider_error"
	OutcomeInvalidState        = "invalid_state"
	OutcomeNotHandled          = "not_handled"
	OutcomeLaunchFailed        = "launch_failed"
	OutcomeInvalidAuthorizeURL = "invalid_authorize_url"
)

// Sources de TenantFetches.
const (
	SourceCache   = "cache"
	SourceNetwork = "network"
	SourceError   = "error"
)

var (
	AuthorizeStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lock_authorize_started_total",
		Help: "Intentos de autorización web iniciados",
	}, []string{"strategy_type"})

	AuthorizeResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lock_authorize_results_total",
		Help: "Resultados de redirects procesados",
	}, []string{"outcome"})

	TenantFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lock_tenant_fetches_total",
		Help: "Lecturas del descriptor del tenant por origen",
	}, []string{"source"})

	TenantFetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lock_tenant_fetch_latency_ms",
		Help:    "Latencia del GET del descriptor en milisegundos",
		Buckets: prometheus.ExponentialBuckets(5, 2, 10),
	})
)

// Register registra las métricas en reg (o el default si es nil). Registrar dos
// veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{AuthorizeStarted, AuthorizeResults, TenantFetches, TenantFetchLatency} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
