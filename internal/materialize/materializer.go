// Package materialize downloads completed video artifacts and stores
// them locally exactly once, regardless of how many webhook and poll
// paths observe the same completed job.
package materialize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/petroast/petroast-api/internal/storage"
)

// DefaultTimeout bounds a single artifact download.
const DefaultTimeout = 60 * time.Second

// Materializer downloads remote artifacts into storage. Failures are
// reported to the caller for logging only; artifact download is a
// best-effort side effect and must never fail the webhook or polling
// path that triggered it.
type Materializer struct {
	store      storage.Storage
	httpClient *http.Client
	logger     *slog.Logger
	pushToS3   bool
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithHTTPClient sets a custom HTTP client for downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Materializer) {
		m.httpClient = hc
	}
}

// WithS3Push enables uploading each materialized artifact to S3.
// The storage implementation must have S3 configured.
func WithS3Push(enabled bool) Option {
	return func(m *Materializer) {
		m.pushToS3 = enabled
	}
}

// New creates a Materializer backed by the given storage.
func New(store storage.Storage, logger *slog.Logger, opts ...Option) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Materializer{
		store:      store,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize downloads the artifact at videoURL and stores it under
// a job-id-prefixed, timestamped filename. If an artifact already
// exists for the job the download is skipped and the existing path is
// returned; that check is what keeps a webhook and a subsequent poll
// from downloading the same video twice.
func (m *Materializer) Materialize(ctx context.Context, jobID, videoURL string) (string, error) {
	if path, ok, err := m.store.FindArtifact(ctx, jobID); err != nil {
		return "", fmt.Errorf("materialize: artifact lookup for %s: %w", jobID, err)
	} else if ok {
		m.logger.Debug("artifact already materialized",
			slog.String("job_id", jobID),
			slog.String("path", path),
		)
		return path, nil
	}

	m.logger.Info("downloading artifact",
		slog.String("job_id", jobID),
		slog.String("video_url", videoURL),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return "", fmt.Errorf("materialize: create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("materialize: download for %s: %w", jobID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("materialize: download for %s returned %d", jobID, resp.StatusCode)
	}

	filename := fmt.Sprintf("%s_%s.mp4", jobID, time.Now().UTC().Format("20060102_150405"))
	path, err := m.store.SaveArtifact(ctx, filename, resp.Body)
	if err != nil {
		return "", fmt.Errorf("materialize: save artifact for %s: %w", jobID, err)
	}

	m.logger.Info("artifact materialized",
		slog.String("job_id", jobID),
		slog.String("path", path),
	)

	if m.pushToS3 {
		if err := m.uploadToS3(ctx, jobID, filename, path); err != nil {
			// Delivery to S3 is best effort on top of best effort.
			m.logger.Error("artifact S3 upload failed",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()),
			)
		}
	}

	return path, nil
}

func (m *Materializer) uploadToS3(ctx context.Context, jobID, key, path string) error {
	f, err := os.Open(path) // #nosec G304 - path comes from our own storage
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	url, err := m.store.UploadToS3(ctx, key, io.Reader(f))
	if err != nil {
		return err
	}

	m.logger.Info("artifact uploaded to S3",
		slog.String("job_id", jobID),
		slog.String("url", url),
	)
	return nil
}
