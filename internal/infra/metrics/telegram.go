package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(tgUpdatesTotal, tgRateLimited)
}

var (
	tgUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tg_updates_total",
			Help: "Inbound Telegram updates by kind (command/text/photo/other).",
		},
		[]string{"kind"},
	)

	tgRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tg_rate_limited_total",
			Help: "Updates dropped by the per-user rate limiter.",
		},
	)
)

func IncUpdate(kind string) { tgUpdatesTotal.WithLabelValues(norm(kind)).Inc() }
func IncRateLimited() { tgRateLimited.Inc() }

