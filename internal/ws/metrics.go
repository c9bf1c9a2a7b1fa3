package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	connectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "campaigndesk_ws_clients",
		Help: "Currently connected WebSocket clients.",
	})

	rejectedConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campaigndesk_ws_rejected_connections_total",
		Help: "Relay connections refused because the user was at the connection limit.",
	})

	relayedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campaigndesk_ws_generate_requests_total",
		Help: "Generation requests relayed over WebSocket, by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(connectedClients, rejectedConnections, relayedRequests)
}
