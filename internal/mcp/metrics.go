package mcp

import "github.com/prometheus/client_golang/prometheus"

var toolCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campaigndesk_mcp_tool_calls_total",
		Help: "MCP tool calls by tool and outcome.",
	},
	[]string{"tool", "outcome"},
)

func init() {
	prometheus.MustRegister(toolCallsTotal)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
