package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the trading client
type Config struct {
	Server   ServerConfig
	Backend  ServiceConfig
	Identity ServiceConfig
	Market   MarketConfig
	Logging  LoggingConfig
}

// ServerConfig holds local HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ServiceConfig holds configuration for external services
type ServiceConfig struct {
	URL     string
	Timeout time.Duration
}

// MarketConfig holds the refresh cadences and the initial selection
type MarketConfig struct {
	PriceInterval   time.Duration
	HistoryInterval time.Duration
	RequestTimeout  time.Duration
	DefaultClass    string
	DefaultSymbol   string
	DefaultRange    string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Backend defaults
	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.timeout", "15s")

	// Identity provider defaults
	v.SetDefault("identity.url", "http://localhost:8001")
	v.SetDefault("identity.timeout", "10s")

	// Market data defaults
	v.SetDefault("market.priceInterval", "20s")
	v.SetDefault("market.historyInterval", "60s")
	v.SetDefault("market.requestTimeout", "15s")
	v.SetDefault("market.defaultClass", "stocks")
	v.SetDefault("market.defaultSymbol", "AAPL")
	v.SetDefault("market.defaultRange", "1D")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
