package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	DataDir      string        `mapstructure:"data_dir"`
	DevMode      bool          `mapstructure:"dev_mode"`
	ReadOnly     bool          `mapstructure:"read_only"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// DefaultConfig returns the listen defaults. The write timeout is long
// because tool requests wait for the whole generation.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		DataDir:      "./data",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		RateLimit:    100,
		RateBurst:    200,
	}
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LegacyBaseURLEnv is the variable the mobile client used for the
// generation service URL. It is honored as a fallback for generation.base_url.
const LegacyBaseURLEnv = "EXPO_PUBLIC_TOOLKIT_URL"

// LoadConfig reads configuration from file and environment variables.
// Environment keys use the CAMPAIGNDESK_ prefix with dots replaced by
// underscores, e.g. CAMPAIGNDESK_SERVER_PORT=9090.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("server.host", d.Host)
	v.SetDefault("server.port", d.Port)
	v.SetDefault("server.data_dir", d.DataDir)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.read_only", false)
	v.SetDefault("server.read_timeout", d.ReadTimeout.String())
	v.SetDefault("server.write_timeout", d.WriteTimeout.String())
	v.SetDefault("server.rate_limit", d.RateLimit)
	v.SetDefault("server.rate_burst", d.RateBurst)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/campaigndesk.db")

	v.SetDefault("generation.base_url", "https://toolkit.rork.com")
	v.SetDefault("generation.mode", "stream")
	v.SetDefault("generation.timeout", "0s")
	v.SetDefault("generation.read_buffer_size", 4096)
	v.SetDefault("generation.rate_limit", 0)
	v.SetDefault("generation.rate_burst", 1)
	v.SetDefault("generation.ping_count", 3)
	v.SetDefault("generation.ping_timeout", "5s")

	v.SetDefault("auth.admin_email", "admin@app.com")
	v.SetDefault("auth.admin_password", "admin123")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "24h")
	v.SetDefault("auth.bcrypt_cost", 0)
	v.SetDefault("mcp.audit_retention", "720h")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("campaigndesk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/campaigndesk")
	}

	v.SetEnvPrefix("CAMPAIGNDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The prefixed variable wins; the legacy name is checked second.
	if err := v.BindEnv("generation.base_url", "CAMPAIGNDESK_GENERATION_BASE_URL", LegacyBaseURLEnv); err != nil {
		return nil, fmt.Errorf("binding %s: %w", LegacyBaseURLEnv, err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
