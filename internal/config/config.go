package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Database configuration (wallet registry)
	Database DatabaseConfig

	// Redis configuration (snapshot cache)
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Upstream provider configuration
	Providers ProvidersConfig

	// Aggregator configuration
	Aggregator AggregatorConfig

	// Logging configuration
	Log LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"portfolio"`
	Password        string        `envconfig:"DB_PASSWORD" default:"portfolio"`
	Name            string        `envconfig:"DB_NAME" default:"portfolio_engine"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
}

// ProvidersConfig holds upstream data provider settings
type ProvidersConfig struct {
	BalanceURL     string        `envconfig:"BALANCE_API_URL" default:"http://localhost:9001"`
	BalanceTimeout time.Duration `envconfig:"BALANCE_TIMEOUT" default:"8s"`

	SecurityURL     string        `envconfig:"GUARDIAN_API_URL" default:"http://localhost:9002"`
	SecurityTimeout time.Duration `envconfig:"GUARDIAN_TIMEOUT" default:"6s"`

	OpportunityURL     string        `envconfig:"HUNTER_API_URL" default:"http://localhost:9003"`
	OpportunityTimeout time.Duration `envconfig:"HUNTER_TIMEOUT" default:"6s"`

	TaxURL     string        `envconfig:"HARVESTPRO_API_URL" default:"http://localhost:9004"`
	TaxTimeout time.Duration `envconfig:"HARVESTPRO_TIMEOUT" default:"6s"`

	PricePrimaryURL   string        `envconfig:"PRICE_PRIMARY_URL" default:"http://localhost:9005"`
	PriceSecondaryURL string        `envconfig:"PRICE_SECONDARY_URL" default:"http://localhost:9006"`
	PriceTimeout      time.Duration `envconfig:"PRICE_TIMEOUT" default:"5s"`
	PriceCacheTTL     time.Duration `envconfig:"PRICE_CACHE_TTL" default:"60s"`

	// Optional Ethereum RPC endpoint; when set the balance provider also
	// reads the native ETH balance on-chain.
	EthRPCURL string `envconfig:"ETH_RPC_URL" default:""`
}

// AggregatorConfig holds snapshot aggregation settings
type AggregatorConfig struct {
	BaseTTL     time.Duration `envconfig:"SNAPSHOT_BASE_TTL" default:"300s"`
	MinTTL      time.Duration `envconfig:"SNAPSHOT_MIN_TTL" default:"10s"`
	MaxTTL      time.Duration `envconfig:"SNAPSHOT_MAX_TTL" default:"300s"`
	FanoutLimit int           `envconfig:"SNAPSHOT_FANOUT_LIMIT" default:"16"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}
