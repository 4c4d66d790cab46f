// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrVideoGenAPIKeyRequired is returned when VIDEOGEN_API_KEY is not set.
	ErrVideoGenAPIKeyRequired = errors.New("config: VIDEOGEN_API_KEY is required")
	// ErrVideoGenModelIDRequired is returned when VIDEOGEN_MODEL_ID is not set.
	ErrVideoGenModelIDRequired = errors.New("config: VIDEOGEN_MODEL_ID is required")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Video generation provider settings
	VideoGenAPIKey  string `env:"VIDEOGEN_API_KEY, required" json:"-"` // Masked in JSON
	VideoGenModelID string `env:"VIDEOGEN_MODEL_ID, required" json:"videogen_model_id"`
	VideoGenBaseURL string `env:"VIDEOGEN_BASE_URL" json:"videogen_base_url,omitempty"`

	// Translation provider settings
	TranslateBaseURL string `env:"TRANSLATE_BASE_URL, default=http://localhost:5000" json:"translate_base_url"`
	TranslatePath    string `env:"TRANSLATE_PATH, default=/translate" json:"translate_path"`
	TranslateAPIKey  string `env:"TRANSLATE_API_KEY" json:"-"` // Masked in JSON

	// Pet detection service settings
	DetectBaseURL string `env:"DETECT_BASE_URL, default=http://localhost:7000" json:"detect_base_url"`

	// Job store settings
	RedisURL string        `env:"REDIS_URL, default=redis://localhost:6379/0" json:"redis_url"`
	UseRedis bool          `env:"USE_REDIS, default=true" json:"use_redis"`
	JobTTL   time.Duration `env:"JOB_TTL, default=168h" json:"job_ttl"`

	// Webhook settings
	WebhookSecret     string `env:"WEBHOOK_SECRET" json:"-"` // Masked in JSON
	BackendWebhookURL string `env:"BACKEND_WEBHOOK_URL" json:"backend_webhook_url,omitempty"`

	// Artifact storage settings
	StorageDir string `env:"STORAGE_DIR, default=storage/videos" json:"storage_dir"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Retry settings shared by all outbound calls
	MaxRetries     int           `env:"MAX_RETRIES, default=3" json:"max_retries"`
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY, default=1s" json:"retry_base_delay"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "VIDEOGEN_API_KEY") {
			return nil, ErrVideoGenAPIKeyRequired
		}
		if strings.Contains(err.Error(), "VIDEOGEN_MODEL_ID") {
			return nil, ErrVideoGenModelIDRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.VideoGenAPIKey == "" {
		return ErrVideoGenAPIKeyRequired
	}
	if c.VideoGenModelID == "" {
		return ErrVideoGenModelIDRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, VideoGenModelID: %s, TranslateBaseURL: %s, DetectBaseURL: %s, UseRedis: %t, JobTTL: %s, StorageDir: %s, S3Bucket: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.VideoGenModelID,
		c.TranslateBaseURL,
		c.DetectBaseURL,
		c.UseRedis,
		c.JobTTL,
		c.StorageDir,
		c.S3Bucket,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
