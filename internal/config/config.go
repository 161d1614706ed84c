// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
	PriceFeed PriceFeedConfig `mapstructure:"price_feed"`
	Releases  ReleasesConfig  `mapstructure:"releases"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// DaemonConfig holds the connection settings for the local trading daemon.
type DaemonConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	FeedPath       string        `mapstructure:"feed_path"`
	VersionPath    string        `mapstructure:"version_path"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// FeedWebSocketURL returns the daemon event feed endpoint with the
// ws/wss scheme derived from the base URL.
func (c *DaemonConfig) FeedWebSocketURL() string {
	base := c.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimSuffix(base, "/") + c.FeedPath
}

// VersionURL returns the daemon version endpoint.
func (c *DaemonConfig) VersionURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.VersionPath
}

// PriceFeedConfig holds the BitMEX mark price stream settings.
type PriceFeedConfig struct {
	WebSocketURL string        `mapstructure:"websocket_url"` // wss://ws.bitmex.com/realtime or wss://ws.testnet.bitmex.com/realtime
	Symbol       string        `mapstructure:"symbol"`
	StaleTimeout time.Duration `mapstructure:"stale_timeout"`
}

// ReleasesConfig holds the GitHub releases lookup settings.
type ReleasesConfig struct {
	APIURL            string        `mapstructure:"api_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("HERMES")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "HERMES_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "HERMES_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "HERMES_LOG_LEVEL", "LOG_LEVEL")

	// Daemon
	v.BindEnv("daemon.base_url", "HERMES_DAEMON_URL", "DAEMON_URL")
	v.BindEnv("daemon.feed_path", "HERMES_DAEMON_FEED_PATH")
	v.BindEnv("daemon.version_path", "HERMES_DAEMON_VERSION_PATH")

	// Price feed
	v.BindEnv("price_feed.websocket_url", "HERMES_PRICE_FEED_WS_URL", "PRICE_FEED_WS_URL")
	v.BindEnv("price_feed.symbol", "HERMES_PRICE_FEED_SYMBOL")

	// Releases
	v.BindEnv("releases.api_url", "HERMES_RELEASES_API_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "HERMES_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "HERMES_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "HERMES_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "hermes")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Daemon defaults
	v.SetDefault("daemon.base_url", "http://localhost:8000")
	v.SetDefault("daemon.feed_path", "/api/feed")
	v.SetDefault("daemon.version_path", "/api/version")
	v.SetDefault("daemon.connect_timeout", "10s")
	v.SetDefault("daemon.request_timeout", "10s")

	// Price feed defaults (BitMEX mainnet)
	v.SetDefault("price_feed.websocket_url", "wss://ws.bitmex.com/realtime")
	v.SetDefault("price_feed.symbol", "XBTUSD")
	v.SetDefault("price_feed.stale_timeout", "5m")

	// Releases defaults
	v.SetDefault("releases.api_url", "https://api.github.com/repos/comit-network/hermes/releases/latest")
	v.SetDefault("releases.request_timeout", "10s")
	v.SetDefault("releases.cache_ttl", "5m")
	v.SetDefault("releases.requests_per_minute", 10)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "hermes")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Daemon.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid daemon.base_url: %s", c.Daemon.BaseURL)
	}
	if !strings.HasPrefix(c.Daemon.FeedPath, "/") {
		return fmt.Errorf("daemon.feed_path must start with /: %s", c.Daemon.FeedPath)
	}
	if !strings.HasPrefix(c.Daemon.VersionPath, "/") {
		return fmt.Errorf("daemon.version_path must start with /: %s", c.Daemon.VersionPath)
	}
	if !strings.HasPrefix(c.PriceFeed.WebSocketURL, "ws://") && !strings.HasPrefix(c.PriceFeed.WebSocketURL, "wss://") {
		return fmt.Errorf("invalid price_feed.websocket_url: %s", c.PriceFeed.WebSocketURL)
	}
	if c.PriceFeed.Symbol == "" {
		return fmt.Errorf("price_feed.symbol cannot be empty")
	}
	if c.Releases.APIURL != "" && c.Releases.RequestsPerMinute <= 0 {
		return fmt.Errorf("releases.requests_per_minute must be positive")
	}
	return nil
}
