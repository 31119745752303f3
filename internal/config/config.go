// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"3001"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Database settings
	Database DatabaseConfig

	// Auth settings
	Auth AuthConfig

	// Mailgun email settings
	Email EmailConfig

	// Object storage (DigitalOcean Spaces / S3-compatible)
	Storage StorageConfig

	// App-level settings
	App AppConfig

	// OpenTelemetry tracing
	Otel OtelConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host          string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port          int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User          string        `env:"POSTGRES_USER" envDefault:"kindred"`
	Password      string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database      string        `env:"POSTGRES_DB" envDefault:"kindred"`
	SSLMode       string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns  int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns  int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime   time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug    bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
	RunMigrations bool          `env:"DB_RUN_MIGRATIONS" envDefault:"true"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// AuthConfig holds JWT settings
type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`
	Issuer         string        `env:"JWT_ISSUER" envDefault:"kindred"`

	// Signup throttle (per remote address)
	SignupRatePerMinute int `env:"SIGNUP_RATE_PER_MINUTE" envDefault:"5"`
}

// EmailConfig holds Mailgun settings
type EmailConfig struct {
	Enabled       bool   `env:"EMAIL_ENABLED" envDefault:"false"`
	MailgunDomain string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey string `env:"MAILGUN_API_KEY"`
	FromName      string `env:"EMAIL_FROM_NAME" envDefault:"Kindred"`
	FromEmail     string `env:"EMAIL_FROM" envDefault:"no-reply@kindred.family"`
}

// IsConfigured returns true when Mailgun credentials are present
func (e *EmailConfig) IsConfigured() bool {
	return e.MailgunDomain != "" && e.MailgunAPIKey != ""
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint  string `env:"STORAGE_ENDPOINT"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"STORAGE_BUCKET" envDefault:"kindred-media"`
	CDNBase   string `env:"STORAGE_CDN_BASE"`
}

// Enabled returns true if storage is properly configured
func (s *StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

// AppConfig holds application-level settings
type AppConfig struct {
	// Base URL used by the join-link generator
	JoinLinkBase string `env:"JOIN_LINK_BASE" envDefault:"https://app.kindred.family/join"`
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
