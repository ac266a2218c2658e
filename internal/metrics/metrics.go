package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ItemsInFlight is the number of batch items currently analyzing.
	ItemsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "imgtranslate",
		Subsystem: "batch",
		Name:      "items_in_flight",
		Help:      "Current number of batch items with a translation attempt in progress.",
	})

	// ItemsCompletedTotal counts finished attempts by terminal status.
	ItemsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imgtranslate",
		Subsystem: "batch",
		Name:      "items_completed_total",
		Help:      "Total number of translation attempts that reached a terminal state, labeled by status.",
	}, []string{"status"})

	// StaleCompletionsTotal counts completions dropped because the item was removed or retried.
	StaleCompletionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "imgtranslate",
		Subsystem: "batch",
		Name:      "stale_completions_total",
		Help:      "Total number of attempt completions discarded because the item changed underneath them.",
	})

	// ProviderCallsTotal counts remote calls by provider and outcome.
	ProviderCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imgtranslate",
		Subsystem: "provider",
		Name:      "calls_total",
		Help:      "Total number of remote provider calls, labeled by provider and outcome.",
	}, []string{"provider", "outcome"})

	// ProviderCallDurationSeconds is the latency of a single remote call.
	ProviderCallDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "imgtranslate",
		Subsystem: "provider",
		Name:      "call_duration_seconds",
		Help:      "Latency of a single remote provider call.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"provider"})

	// RetriesTotal counts backoff retries after quota errors.
	RetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imgtranslate",
		Subsystem: "provider",
		Name:      "quota_retries_total",
		Help:      "Total number of retries scheduled after a quota error, labeled by caller.",
	}, []string{"caller"})

	// FallbacksTotal counts premium to standard tier fallbacks.
	FallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imgtranslate",
		Subsystem: "translation",
		Name:      "tier_fallbacks_total",
		Help:      "Total number of times a quota failure moved translation to the next model tier.",
	}, []string{"provider"})
)

// Register registers metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ItemsInFlight,
			ItemsCompletedTotal,
			StaleCompletionsTotal,
			ProviderCallsTotal,
			ProviderCallDurationSeconds,
			RetriesTotal,
			FallbacksTotal,
		)
	})
}
