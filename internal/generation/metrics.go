package generation

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_requests_total",
			Help: "Total number of text generation calls by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_request_duration_seconds",
			Help:    "Text generation call duration in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"mode"},
	)
	deltasTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generation_deltas_total",
			Help: "Total number of text deltas appended from streamed responses.",
		},
	)
	framesSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generation_frames_skipped_total",
			Help: "Total number of delta lines discarded as malformed.",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, deltasTotal, framesSkippedTotal)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return errorCode(err)
}
