package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotf_orders_submitted_total",
			Help: "Total number of market orders submitted (by side).",
		},
		[]string{"side"},
	)

	SignalsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotf_signals_processed_total",
			Help: "Inbound signals marked processed, split by disposition.",
		},
		[]string{"disposition"}, // executed|rejected|stale|low_confidence|blocked
	)

	SafetyBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gotf_safety_blocks_total",
			Help: "Risk gate rejections split by failing check.",
		},
		[]string{"check"},
	)

	RegimeState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gotf_regime_state",
			Help: "Current market regime (one labeled series set to 1).",
		},
		[]string{"regime"},
	)

	AdaptiveValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gotf_adaptive_parameter",
			Help: "Current value of each adaptive parameter.",
		},
		[]string{"name"},
	)

	ProtectionRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gotf_protection_retries_total",
			Help: "Retry attempts made while attaching or moving protective levels.",
		},
	)

	UnprotectedPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gotf_unprotected_positions",
			Help: "Open positions whose protective levels could not be attached.",
		},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gotf_equity",
			Help: "Current account equity.",
		},
	)

	QualityScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gotf_signal_quality_score",
			Help: "Quality score of the most recently evaluated signal.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersSubmitted, SignalsProcessed, SafetyBlocks,
		RegimeState, AdaptiveValue,
		ProtectionRetries, UnprotectedPositions,
		EquityGauge, QualityScore,
	)
}

// SetRegime flips the labeled regime series so exactly one reads 1.
func SetRegime(current string) {
	for _, r := range []string{"trending", "ranging", "spiking", "low_volatility"} {
		v := 0.0
		if r == current {
			v = 1.0
		}
		RegimeState.WithLabelValues(r).Set(v)
	}
}

// Serve exposes /metrics on the given port. Blocks; run in its own goroutine.
func Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
