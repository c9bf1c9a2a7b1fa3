package generation

import (
	"context"
	"fmt"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// PingResult summarizes an ICMP reachability check of the service host.
type PingResult struct {
	Host     string        `json:"host"`
	Sent     int           `json:"sent"`
	Received int           `json:"received"`
	AvgRTT   time.Duration `json:"avg_rtt"`
}

// Reachable reports whether at least one echo reply arrived.
func (r *PingResult) Reachable() bool {
	return r != nil && r.Received > 0
}

// Ping pings the host of the configured base URL. It is a diagnostic only;
// generation calls never depend on it. Unprivileged ICMP is used except on
// Windows, where pro-bing requires privileged mode.
func (c *Client) Ping(ctx context.Context) (*PingResult, error) {
	host := c.baseURL.Hostname()

	pinger, err := probing.NewPinger(host)
	if err != nil {
		return nil, fmt.Errorf("create pinger for %s: %w", host, err)
	}
	pinger.Count = c.cfg.PingCount
	if pinger.Count <= 0 {
		pinger.Count = 3
	}
	pinger.Timeout = c.cfg.PingTimeout
	if pinger.Timeout <= 0 {
		pinger.Timeout = 5 * time.Second
	}
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("ping %s: %w", host, err)
		}
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return nil, ctx.Err()
	}

	stats := pinger.Statistics()
	c.logger.Debug("ping finished",
		zap.String("host", host),
		zap.Int("sent", stats.PacketsSent),
		zap.Int("received", stats.PacketsRecv),
		zap.Duration("avg_rtt", stats.AvgRtt),
	)
	return &PingResult{
		Host:     host,
		Sent:     stats.PacketsSent,
		Received: stats.PacketsRecv,
		AvgRTT:   stats.AvgRtt,
	}, nil
}
