package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(mediaGroupsTotal, mediaGroupSize, mediaUsageErrors)
}

var (
	mediaGroupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "media_groups_total",
			Help: "Media groups flushed by the aggregator.",
		},
	)

	mediaGroupSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_group_size",
			Help:    "Photos per aggregated media group.",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10},
		},
	)

	mediaUsageErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "media_usage_errors_total",
			Help: "Media groups rejected for a missing caption.",
		},
	)
)

func ObserveMediaGroup(size int) {
	mediaGroupsTotal.Inc()
	mediaGroupSize.Observe(float64(size))
}

func IncMediaUsageError() { mediaUsageErrors.Inc() }
