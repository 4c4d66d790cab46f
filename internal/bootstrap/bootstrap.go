// Package bootstrap provides dependency initialization for the PetRoast API.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/petroast/petroast-api/internal/config"
	"github.com/petroast/petroast-api/internal/detect"
	"github.com/petroast/petroast-api/internal/job"
	"github.com/petroast/petroast-api/internal/materialize"
	"github.com/petroast/petroast-api/internal/retry"
	"github.com/petroast/petroast-api/internal/storage"
	"github.com/petroast/petroast-api/internal/translate"
	"github.com/petroast/petroast-api/internal/videogen"
	"github.com/petroast/petroast-api/internal/webhook"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Service    *job.Service
	Translator translate.Client

	// redisStore is non-nil only when the durable store is in use.
	redisStore *job.RedisStore
}

// Close releases resources held by the dependencies, such as the
// Redis connection.
func (d *Dependencies) Close() error {
	if d.redisStore != nil {
		return d.redisStore.Close()
	}
	return nil
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	policy := retry.Policy{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.RetryBaseDelay,
		Multiplier:  retry.DefaultMultiplier,
	}

	// Initialize the job store. Storage degradation never blocks
	// startup: if Redis is unreachable the server runs on the
	// in-memory store and jobs do not survive a restart.
	store, redisStore := initStore(ctx, cfg, logger)

	detector, err := detect.NewHTTPDetector(cfg.DetectBaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pet detector: %w", err)
	}

	translator, err := translate.NewClient(cfg.TranslateBaseURL,
		translate.WithAPIKey(cfg.TranslateAPIKey),
		translate.WithTranslatePath(cfg.TranslatePath),
		translate.WithRetryPolicy(policy),
	)
	if err != nil {
		return nil, fmt.Errorf("create translate client: %w", err)
	}

	videogenOpts := []videogen.Option{videogen.WithRetryPolicy(policy)}
	if cfg.VideoGenBaseURL != "" {
		videogenOpts = append(videogenOpts, videogen.WithBaseURL(cfg.VideoGenBaseURL))
	}
	generator, err := videogen.NewClient(cfg.VideoGenAPIKey, cfg.VideoGenModelID, videogenOpts...)
	if err != nil {
		return nil, fmt.Errorf("create video generation client: %w", err)
	}

	artifactStore, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	materializer := materialize.New(artifactStore, logger,
		materialize.WithS3Push(cfg.S3Enabled()),
	)

	notifier := webhook.NewNotifier(cfg.BackendWebhookURL, logger,
		webhook.WithRetryPolicy(policy),
	)

	svc := job.NewService(store, detector, translator, generator, materializer, notifier, logger)

	return &Dependencies{
		Service:    svc,
		Translator: translator,
		redisStore: redisStore,
	}, nil
}

// initStore connects the Redis job store, falling back to the
// in-memory store when Redis is disabled or unreachable.
func initStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (job.Store, *job.RedisStore) {
	if !cfg.UseRedis {
		logger.Info("redis disabled, using in-memory job store")
		return job.NewMemoryStore(), nil
	}

	redisStore, err := job.NewRedisStore(cfg.RedisURL,
		job.WithTTL(cfg.JobTTL),
		job.WithLogger(logger),
	)
	if err == nil {
		err = redisStore.Connect(ctx)
	}
	if err != nil {
		logger.Warn("redis unavailable, degrading to in-memory job store",
			slog.String("redis_url", cfg.RedisURL),
			slog.Any("error", err),
		)
		return job.NewMemoryStore(), nil
	}

	logger.Info("redis job store connected",
		slog.Duration("job_ttl", cfg.JobTTL),
	)
	return redisStore, redisStore
}

// initStorage creates the appropriate artifact storage backend based
// on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.StorageDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 artifact storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local artifact storage configured",
		slog.String("storage_dir", cfg.StorageDir),
	)
	return localStore, nil
}
