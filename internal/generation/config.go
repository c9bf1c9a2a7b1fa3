package generation

import (
	"fmt"
	"time"
)

// Mode selects how a successful response body is consumed. It is fixed per
// deployment; the client never guesses from the response shape.
type Mode string

const (
	// ModeStream reads a line-delimited "0:{...}" delta stream.
	ModeStream Mode = "stream"
	// ModeSingle decodes one JSON object and returns its "text" field.
	ModeSingle Mode = "single"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "https://toolkit.rork.com"
	// ChatPath is resolved against the base URL for every call.
	ChatPath = "/agent/chat"
)

// Config holds the generation client configuration.
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	Mode           Mode          `mapstructure:"mode"`
	Timeout        time.Duration `mapstructure:"timeout"` // 0 means no client-side timeout.
	ReadBufferSize int           `mapstructure:"read_buffer_size"`
	RateLimit      float64       `mapstructure:"rate_limit"` // Calls per second; 0 disables.
	RateBurst      int           `mapstructure:"rate_burst"`
	PingCount     int           `mapstructure:"ping_count"`
	PingTimeout   time.Duration `mapstructure:"ping_timeout"`
}

// DefaultConfig returns the defaults: streaming mode against the public
// toolkit endpoint, no timeout and no rate limit.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Mode:           ModeStream,
		ReadBufferSize: 4096,
		PingCount:     3,
		PingTimeout:   5 * time.Second,
	}
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeStream, ModeSingle:
	default:
		return fmt.Errorf("invalid generation mode %q: must be %q or %q", c.Mode, ModeStream, ModeSingle)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}
