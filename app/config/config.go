package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/lib/pq"
)

type Config struct {
	AppEnv        string `envconfig:"APP_ENV" default:"development"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	StartupClient bool   `envconfig:"STARTUP_CLIENT" default:"false"`

	Server    ServerConfig    `envconfig:"SERVER"`
	Database  DatabaseConfig  `envconfig:"DB"`
	Telemetry TelemetryConfig `envconfig:"OTEL"`
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// RateLimit is requests per minute per client IP; zero disables limiting.
	RateLimit int `envconfig:"RATE_LIMIT" default:"0"`
}

type DatabaseConfig struct {
	Driver   string `envconfig:"DRIVER" default:"postgres"`
	DSN      string `envconfig:"DSN" default:"host=localhost port=5432 user=postgres password=postgres dbname=produtos sslmode=disable"`
	URL      string `envconfig:"URL"`
	// QueryLog is the gorm log level: silent, error, warn or info.
	QueryLog string `envconfig:"QUERY_LOG" default:"warn"`
}

type TelemetryConfig struct {
	ServiceName  string `envconfig:"SERVICE_NAME" default:"produto-api"`
	OTLPEndpoint string `envconfig:"EXPORTER_OTLP_ENDPOINT"`
}

// ClientConfig configures the demonstration client executable.
type ClientConfig struct {
	BaseURL string        `envconfig:"PRODUTO_API_URL" default:"http://localhost:8080/produtos"`
	Timeout time.Duration `envconfig:"CLIENT_TIMEOUT" default:"10s"`
}

// LoadConfig reads a .env file when one exists, then the environment.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadClientConfig() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func (c *Config) normalize() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}

	if c.Database.URL != "" {
		if c.Database.Driver != "postgres" {
			return errors.New("DB_URL is only supported with the postgres driver")
		}
		dsn, err := pq.ParseURL(c.Database.URL)
		if err != nil {
			return fmt.Errorf("parse DB_URL: %w", err)
		}
		c.Database.DSN = dsn
	}
	return nil
}

func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}
