package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the service configuration.
type Config struct {
	Port           string
	DatabaseDriver string
	DatabaseURL    string

	// Upstream API
	APIBaseURL      string
	APIVersion      string
	UpstreamTimeout time.Duration

	// MonitoringURLOverride takes precedence over the stored monitoring URL.
	MonitoringURLOverride string

	KafkaBrokers       []string
	KafkaCheckTopic    string
	KafkaConsumerGroup string

	// Alerting on failed checks
	AlertWorkers  int
	AlertCooldown time.Duration
	SMTPAddr      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFrom      string

	OTLPEndpoint    string
	OTLPSampleRatio float64
	Environment     string

	AllowedOrigins []string
	AdminJWTSecret string
	ShutdownGrace  time.Duration
	LogLevel       string
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may be set by the container
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseDriver:        strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:           getEnv("DATABASE_URL", "sitepulse.db"),
		APIBaseURL:            strings.TrimRight(getEnv("SITEPULSE_API_BASE_URL", "https://api.sitepulse.dev"), "/"),
		APIVersion:            strings.Trim(getEnv("SITEPULSE_API_VERSION", "v1"), "/"),
		UpstreamTimeout:       getEnvDuration("UPSTREAM_TIMEOUT", 120*time.Second),
		MonitoringURLOverride: strings.TrimSpace(os.Getenv("SITEPULSE_MONITORING_URL")),
		KafkaBrokers:          getEnvList("KAFKA_BROKERS"),
		KafkaCheckTopic:       getEnv("KAFKA_CHECK_TOPIC", "sitepulse.checks"),
		KafkaConsumerGroup:    getEnv("KAFKA_CONSUMER_GROUP", "sitepulse-alerts"),
		AlertWorkers:          getEnvInt("ALERT_WORKERS", 4),
		AlertCooldown:         getEnvDuration("ALERT_COOLDOWN", 15*time.Minute),
		SMTPAddr:              os.Getenv("SMTP_ADDR"),
		SMTPUsername:          os.Getenv("SMTP_USERNAME"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:              getEnv("SMTP_FROM", "sitepulse@localhost"),
		OTLPEndpoint:          os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPSampleRatio:       getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		Environment:           getEnv("ENVIRONMENT", "development"),
		AllowedOrigins:        getEnvList("ALLOWED_ORIGINS"),
		AdminJWTSecret:        os.Getenv("ADMIN_JWT_SECRET"),
		ShutdownGrace:         getEnvDuration("SHUTDOWN_GRACE", 10*time.Second),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return &ConfigError{Field: "DatabaseDriver", Message: fmt.Sprintf("unsupported driver %q", c.DatabaseDriver)}
	}
	if c.DatabaseURL == "" {
		return &ConfigError{Field: "DatabaseURL", Message: "database url cannot be empty"}
	}
	if c.APIBaseURL == "" {
		return &ConfigError{Field: "APIBaseURL", Message: "upstream base url cannot be empty"}
	}
	if c.UpstreamTimeout <= 0 {
		return &ConfigError{Field: "UpstreamTimeout", Message: "timeout must be positive"}
	}
	if c.OTLPSampleRatio < 0 || c.OTLPSampleRatio > 1 {
		return &ConfigError{Field: "OTLPSampleRatio", Message: "must be between 0 and 1"}
	}
	if c.AlertWorkers <= 0 {
		return &ConfigError{Field: "AlertWorkers", Message: "must be at least 1"}
	}
	return nil
}

// KafkaEnabled reports whether check events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaCheckTopic != ""
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// plain seconds are accepted too
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
