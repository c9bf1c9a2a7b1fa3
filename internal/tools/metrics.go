package tools

import "github.com/prometheus/client_golang/prometheus"

var (
	toolRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigndesk_tool_requests_total",
			Help: "Generation-backed tool invocations.",
		},
		[]string{"tool"},
	)
	toolErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigndesk_tool_errors_total",
			Help: "Tool invocations that failed in generation or reply parsing.",
		},
		[]string{"tool"},
	)
	sentimentScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campaigndesk_sentiment_score",
			Help:    "Distribution of local sentiment scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

func init() {
	prometheus.MustRegister(toolRequestsTotal, toolErrorsTotal, sentimentScores)
}
