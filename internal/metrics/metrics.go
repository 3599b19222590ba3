package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Upstream adapter outcomes: outcome is ok|upstream_error|malformed
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenlens",
		Name:      "provider_requests_total",
		Help:      "Upstream provider calls by provider and outcome",
	}, []string{"provider", "outcome"})

	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tokenlens",
		Name:      "provider_request_seconds",
		Help:      "Upstream provider call latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenlens",
		Name:      "cache_requests_total",
		Help:      "Response cache lookups by result (hit|miss|error)",
	}, []string{"result"})
)

const (
	OutcomeOK        = "ok"
	OutcomeUpstream  = "upstream_error"
	OutcomeMalformed = "malformed"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
