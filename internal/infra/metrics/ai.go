package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsTotal,
		aiTokensIn,
		aiCallsLatencyMs,
	)
}

var (
	aiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_calls_total",
			Help: "Chat completions per provider/model and outcome.",
		},
		[]string{"provider", "model", "success"},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "model", "success"},
	)
)

// ObserveChatCall records one completed provider call.
func ObserveChatCall(provider, model string, tokensIn int, latencyMs int, success bool) {
	ok := strconv.FormatBool(success)
	aiCallsTotal.WithLabelValues(norm(provider), norm(model), ok).Inc()
	if tokensIn > 0 {
		aiTokensIn.WithLabelValues(norm(provider), norm(model)).Add(float64(tokensIn))
	}
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), ok).Observe(float64(latencyMs))
}
