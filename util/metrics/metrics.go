// Package metrics defines the prometheus collectors exported by the panel.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_login_attempts_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	ProxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_proxy_requests_total",
		Help: "Upstream proxy relays by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	ProxyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bazaar_proxy_duration_seconds",
		Help:    "Upstream proxy round-trip duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	KycRecordsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_kyc_records_scanned_total",
		Help: "KYC records scanned by the reconciliation job.",
	})

	KycOrphansDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_kyc_orphans_deleted_total",
		Help: "Orphaned KYC records deleted by the reconciliation job.",
	})

	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_ratelimit_hits_total",
		Help: "Requests rejected by the rate limiter.",
	})
)
