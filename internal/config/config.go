package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Env      Environment `envconfig:"ENV" default:"development"`
	LogLevel string      `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool        `envconfig:"DEBUG" default:"false"`

	// Application
	App AppConfig

	// Server
	Server ServerConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Storage
	Storage StorageConfig

	// Crawler
	Crawler CrawlerConfig
}

// AppConfig holds application metadata
type AppConfig struct {
	Name    string `envconfig:"APP_NAME" default:"rivalscope"`
	Version string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// ServerConfig holds HTTP server settings for the trigger/ops API
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	EnableCORS      bool          `envconfig:"SERVER_ENABLE_CORS" default:"true"`
}

// Addr returns the server listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"rivalscope"`
	Password        string        `envconfig:"DB_PASSWORD" default:""`
	Database        string        `envconfig:"DB_NAME" default:"rivalscope"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"1m"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis settings for best-effort event publishing
type RedisConfig struct {
	Host         string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port         int           `envconfig:"REDIS_PORT" default:"6379"`
	Password     string        `envconfig:"REDIS_PASSWORD" default:""`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig holds MinIO/S3 settings for screenshot blobs
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY_ID" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_ACCESS_KEY" default:"minioadmin"`
	Bucket          string `envconfig:"STORAGE_BUCKET" default:"rivalscope"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicBaseURL   string `envconfig:"STORAGE_PUBLIC_BASE_URL" default:""`
}

// CrawlerConfig holds fetch executor and target selection settings
type CrawlerConfig struct {
	Headless       bool          `envconfig:"CRAWLER_HEADLESS" default:"true"`
	MaxPages       int           `envconfig:"CRAWLER_MAX_PAGES" default:"8"`
	FetchRetries   int           `envconfig:"CRAWLER_FETCH_RETRIES" default:"3"`
	NavTimeout     time.Duration `envconfig:"CRAWLER_NAV_TIMEOUT" default:"30s"`
	SettleDelay    time.Duration `envconfig:"CRAWLER_SETTLE_DELAY" default:"1500ms"`
	RetryBackoff   time.Duration `envconfig:"CRAWLER_RETRY_BACKOFF" default:"2s"`
	RespectRobots  bool          `envconfig:"CRAWLER_RESPECT_ROBOTS" default:"true"`
	RobotsTimeout  time.Duration `envconfig:"CRAWLER_ROBOTS_TIMEOUT" default:"10s"`
	PagesPerSecond float64       `envconfig:"CRAWLER_PAGES_PER_SECOND" default:"0.5"`
	StaleJobAge    time.Duration `envconfig:"CRAWLER_STALE_JOB_AGE" default:"30m"`
	ChangeWindow   time.Duration `envconfig:"CRAWLER_CHANGE_WINDOW" default:"720h"` // 30 days
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config without failing on missing required fields
// (for CLI tools that never touch the database)
func LoadWithDefaults() (*Config, error) {
	var cfg Config
	envconfig.Process("", &cfg)

	if cfg.Database.Password == "" {
		cfg.Database.Password = "rivalscope"
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	if c.Env != EnvDevelopment && c.Database.Password == "" {
		errs = append(errs, "DB_PASSWORD is required in non-development mode")
	}
	if c.Crawler.MaxPages < 1 {
		errs = append(errs, "CRAWLER_MAX_PAGES must be at least 1")
	}
	if c.Crawler.FetchRetries < 1 {
		errs = append(errs, "CRAWLER_FETCH_RETRIES must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// GetLogLevel returns the appropriate zap log level
func (c *Config) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
