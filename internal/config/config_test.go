package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredVariables(t *testing.T) {
	// Clear all environment variables
	clearEnv := func() {
		os.Unsetenv("PORT")
		os.Unsetenv("VIDEOGEN_API_KEY")
		os.Unsetenv("VIDEOGEN_MODEL_ID")
		os.Unsetenv("VIDEOGEN_BASE_URL")
		os.Unsetenv("TRANSLATE_BASE_URL")
		os.Unsetenv("DETECT_BASE_URL")
		os.Unsetenv("REDIS_URL")
		os.Unsetenv("USE_REDIS")
		os.Unsetenv("JOB_TTL")
		os.Unsetenv("WEBHOOK_SECRET")
		os.Unsetenv("BACKEND_WEBHOOK_URL")
		os.Unsetenv("STORAGE_DIR")
		os.Unsetenv("S3_BUCKET")
		os.Unsetenv("S3_REGION")
		os.Unsetenv("MAX_RETRIES")
		os.Unsetenv("RETRY_BASE_DELAY")
		os.Unsetenv("LOG_FORMAT")
		os.Unsetenv("LOG_LEVEL")
	}

	t.Run("missing VIDEOGEN_API_KEY returns error", func(t *testing.T) {
		clearEnv()
		t.Setenv("VIDEOGEN_MODEL_ID", "fal-ai/test-model")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVideoGenAPIKeyRequired)
	})

	t.Run("missing VIDEOGEN_MODEL_ID returns error", func(t *testing.T) {
		clearEnv()
		t.Setenv("VIDEOGEN_API_KEY", "test-key")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrVideoGenModelIDRequired)
	})

	t.Run("all required variables present succeeds", func(t *testing.T) {
		clearEnv()
		t.Setenv("VIDEOGEN_API_KEY", "test-key")
		t.Setenv("VIDEOGEN_MODEL_ID", "fal-ai/test-model")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "test-key", cfg.VideoGenAPIKey)
		assert.Equal(t, "fal-ai/test-model", cfg.VideoGenModelID)
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VIDEOGEN_API_KEY", "test-key")
	t.Setenv("VIDEOGEN_MODEL_ID", "fal-ai/test-model")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.TranslateBaseURL)
	assert.Equal(t, "/translate", cfg.TranslatePath)
	assert.Equal(t, "http://localhost:7000", cfg.DetectBaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.True(t, cfg.UseRedis)
	assert.Equal(t, 168*time.Hour, cfg.JobTTL)
	assert.Equal(t, "storage/videos", cfg.StorageDir)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("VIDEOGEN_API_KEY", "custom-key")
	t.Setenv("VIDEOGEN_MODEL_ID", "fal-ai/custom-model")
	t.Setenv("PORT", "3000")
	t.Setenv("REDIS_URL", "redis://redis:6380/1")
	t.Setenv("USE_REDIS", "false")
	t.Setenv("JOB_TTL", "24h")
	t.Setenv("WEBHOOK_SECRET", "shared-secret")
	t.Setenv("BACKEND_WEBHOOK_URL", "http://backend/hooks")
	t.Setenv("STORAGE_DIR", "/data/videos")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_BASE_DELAY", "500ms")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "redis://redis:6380/1", cfg.RedisURL)
	assert.False(t, cfg.UseRedis)
	assert.Equal(t, 24*time.Hour, cfg.JobTTL)
	assert.Equal(t, "shared-secret", cfg.WebhookSecret)
	assert.Equal(t, "http://backend/hooks", cfg.BackendWebhookURL)
	assert.Equal(t, "/data/videos", cfg.StorageDir)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cfg := &Config{VideoGenAPIKey: "key", VideoGenModelID: "model"}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{VideoGenModelID: "model"}
	assert.ErrorIs(t, cfg.Validate(), ErrVideoGenAPIKeyRequired)

	cfg = &Config{VideoGenAPIKey: "key"}
	assert.ErrorIs(t, cfg.Validate(), ErrVideoGenModelIDRequired)
}

func TestS3Enabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.S3Enabled())

	cfg.S3Bucket = "bucket"
	assert.False(t, cfg.S3Enabled())

	cfg.S3Region = "us-east-1"
	assert.True(t, cfg.S3Enabled())
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{
		VideoGenAPIKey:     "super-secret-key",
		WebhookSecret:      "webhook-secret",
		AWSSecretAccessKey: "aws-secret",
		VideoGenModelID:    "fal-ai/test-model",
	}

	s := cfg.String()
	assert.NotContains(t, s, "super-secret-key")
	assert.NotContains(t, s, "webhook-secret")
	assert.NotContains(t, s, "aws-secret")
	assert.Contains(t, s, "fal-ai/test-model")
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		format string
		level  string
	}{
		{"json", "debug"},
		{"text", "info"},
		{"text", "warning"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.level, func(t *testing.T) {
			cfg := &Config{LogFormat: tt.format, LogLevel: tt.level}
			logger := cfg.NewLogger()
			require.NotNil(t, logger)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"ERROR", "ERROR"},
		{"bogus", "INFO"},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in).String(); !strings.EqualFold(got, tt.want) {
			t.Errorf("parseLogLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
