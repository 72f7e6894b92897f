package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type importMetrics struct {
	rowsParsed     prometheus.Counter
	userOutcomes   *prometheus.CounterVec
	importDuration prometheus.Histogram
}

var metricsSingleton = sync.OnceValue(func() *importMetrics {
	return &importMetrics{
		rowsParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "roster",
			Name:      "rows_parsed_total",
			Help:      "Total number of roster rows parsed from uploaded files.",
		}),
		userOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roster",
			Name:      "user_outcomes_total",
			Help:      "Per-user import outcomes by status.",
		}, []string{"status"}),
		importDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roster",
			Name:      "import_duration_seconds",
			Help:      "Latency distribution for whole import runs.",
			Buckets: []float64{
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10, 30, 60,
			},
		}),
	}
})

func RowsParsed(n int) {
	metricsSingleton().rowsParsed.Add(float64(n))
}

func UserOutcome(status string) {
	metricsSingleton().userOutcomes.WithLabelValues(status).Inc()
}

func ObserveImport(d time.Duration) {
	metricsSingleton().importDuration.Observe(d.Seconds())
}
