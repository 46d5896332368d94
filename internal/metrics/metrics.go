// Package metrics registers the prometheus collectors of the service,
// exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TranslationsTotal counts translate requests by dialect and outcome.
	TranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wergeran_translations_total",
		Help: "Translate requests by dialect and outcome.",
	}, []string{"dialect", "outcome"})

	// UpstreamAttemptsTotal counts individual calls to the translation
	// provider, including retries.
	UpstreamAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wergeran_upstream_attempts_total",
		Help: "Individual upstream provider calls, retries included.",
	})

	// CacheHitsTotal counts translate requests served from the cache.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wergeran_translation_cache_hits_total",
		Help: "Translations served from the cache without an upstream call.",
	})

	// QuotaRejectionsTotal counts requests rejected by the quota ledger.
	QuotaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wergeran_quota_rejections_total",
		Help: "Translate requests rejected because the daily limit was reached.",
	})
)
