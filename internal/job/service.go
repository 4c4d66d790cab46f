package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/petroast/petroast-api/internal/detect"
	"github.com/petroast/petroast-api/internal/translate"
	"github.com/petroast/petroast-api/internal/videogen"
	"github.com/petroast/petroast-api/internal/webhook"
)

// ErrNoPetsDetected is returned when the uploaded image contains no
// recognizable pet. No job is created for such a request.
var ErrNoPetsDetected = errors.New("job: no pets detected in image")

// Materializer downloads a completed artifact into local storage.
type Materializer interface {
	Materialize(ctx context.Context, jobID, videoURL string) (string, error)
}

// Notifier forwards normalized job events to the downstream backend.
type Notifier interface {
	Enabled() bool
	Notify(ctx context.Context, event webhook.Event) error
}

// GenerateInput contains the inputs for creating a roast video job.
type GenerateInput struct {
	// Text is the user-supplied roast script, possibly not in the
	// target language yet.
	Text string
	// ImageURL is the pet image reference (URL or data URL).
	ImageURL string
	// SourceLang is the language of Text; "auto" when unknown.
	SourceLang string
	// TargetLang is the generation language; defaults to "en".
	TargetLang string
}

// ResultState tags the outcome of a result query. "Still rendering"
// and "completed but artifact not delivered yet" are expected,
// frequent outcomes on the polling path, not errors.
type ResultState int

const (
	// ResultReady means the job is completed and the video URL is known.
	ResultReady ResultState = iota
	// ResultPending means generation has not completed yet.
	ResultPending
	// ResultArtifactPending means the job completed but the provider
	// has not surfaced the artifact URL yet; a webhook will supply it.
	ResultArtifactPending
)

// Result is the outcome of a result query.
type Result struct {
	State  ResultState
	Record *Record
}

// Service orchestrates the roast video pipeline: it gates job
// creation on pet detection and translation, and reconciles job state
// across the three update sources (creation, polling, webhooks) using
// the Store as the single source of truth.
type Service struct {
	store        Store
	detector     detect.Detector
	translator   translate.Client
	generator    videogen.Client
	materializer Materializer
	notifier     Notifier
	logger       *slog.Logger
}

// NewService creates a Service with its collaborators injected.
func NewService(
	store Store,
	detector detect.Detector,
	translator translate.Client,
	generator videogen.Client,
	materializer Materializer,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:        store,
		detector:     detector,
		translator:   translator,
		generator:    generator,
		materializer: materializer,
		notifier:     notifier,
		logger:       logger,
	}
}

// GenerateVideo validates the pet image, prepares the script, submits
// the generation job and records it as queued. Any upstream failure
// aborts before the record is written, so no partial job ever exists.
func (s *Service) GenerateVideo(ctx context.Context, input GenerateInput) (*Record, error) {
	detection, err := s.detector.Detect(ctx, input.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("job: pet detection: %w", err)
	}
	if !detection.HasPets {
		return nil, ErrNoPetsDetected
	}

	s.logger.Info("pets detected",
		slog.Any("labels", detection.Labels),
	)

	targetLang := input.TargetLang
	if targetLang == "" {
		targetLang = "en"
	}

	cleanText, err := s.translator.Translate(ctx, input.Text, input.SourceLang, targetLang)
	if err != nil {
		return nil, fmt.Errorf("job: prepare script: %w", err)
	}

	submitted, err := s.generator.Submit(ctx, videogen.SubmitInput{
		Text:     cleanText,
		ImageURL: input.ImageURL,
		Language: targetLang,
	})
	if err != nil {
		return nil, fmt.Errorf("job: submit generation job: %w", err)
	}

	status := StatusQueued
	if submitted.Status != "" {
		status = Normalize(submitted.Status)
	}

	record := NewRecord(submitted.JobID, status, cleanText, input.ImageURL, targetLang)
	record.Detail = submitted.Detail
	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("job: store record: %w", err)
	}

	s.logger.Info("job created",
		slog.String("job_id", record.JobID),
		slog.String("status", string(record.Status)),
		slog.String("language", targetLang),
	)
	return record, nil
}

// VideoStatus polls the provider for the latest job state and folds
// it into the store. When the provider call fails but a record exists
// locally, the stored state is served instead of an error. A poll for
// a job the store has never seen upserts a fresh record; a webhook or
// a process restart may have raced ahead of local knowledge.
func (s *Service) VideoStatus(ctx context.Context, jobID string) (*Record, error) {
	stored, err := s.store.Get(ctx, jobID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	remote, pollErr := s.generator.PollStatus(ctx, jobID)
	if pollErr != nil {
		if stored == nil {
			return nil, fmt.Errorf("job: poll status: %w", pollErr)
		}
		s.logger.Warn("status poll failed, serving stored state",
			slog.String("job_id", jobID),
			slog.String("error", pollErr.Error()),
		)
		return stored, nil
	}

	fields := Fields{
		Status:   StatusPtr(Normalize(remote.Status)),
		VideoURL: StringPtr(remote.VideoURL),
		Detail:   StringPtr(remote.Detail),
	}

	updated, err := s.store.Update(ctx, jobID, fields)
	if errors.Is(err, ErrNotFound) {
		record := NewRecord(jobID, Normalize(remote.Status), "", "", "en")
		record.VideoURL = remote.VideoURL
		record.Detail = remote.Detail
		if upsertErr := s.store.Upsert(ctx, record); upsertErr != nil {
			return nil, upsertErr
		}
		return record, nil
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// VideoResult resolves the final artifact for a job. The returned
// Result distinguishes ready, still rendering, and completed with the
// artifact not yet delivered; only unknown jobs and infrastructure
// failures are errors.
func (s *Service) VideoResult(ctx context.Context, jobID string) (Result, error) {
	record, err := s.store.Get(ctx, jobID)
	if err != nil {
		return Result{}, err
	}

	if record.Status == StatusCompleted && record.VideoURL != "" {
		s.materialize(ctx, record.JobID, record.VideoURL)
		return Result{State: ResultReady, Record: record}, nil
	}

	// Re-poll once; the record may be stale.
	remote, err := s.generator.PollStatus(ctx, jobID)
	if err != nil {
		return Result{}, fmt.Errorf("job: poll status: %w", err)
	}

	record, err = s.store.Update(ctx, jobID, Fields{
		Status:   StatusPtr(Normalize(remote.Status)),
		VideoURL: StringPtr(remote.VideoURL),
		Detail:   StringPtr(remote.Detail),
	})
	if err != nil {
		return Result{}, err
	}

	if record.Status != StatusCompleted {
		return Result{State: ResultPending, Record: record}, nil
	}

	if record.VideoURL == "" {
		// The provider reported completion without the artifact URL.
		// Try the secondary result lookup before giving up.
		payload, ok, err := s.generator.FetchResult(ctx, jobID)
		if err != nil {
			return Result{}, fmt.Errorf("job: fetch result: %w", err)
		}
		if !ok {
			s.logger.Warn("job completed but artifact not yet available",
				slog.String("job_id", jobID),
			)
			return Result{State: ResultArtifactPending, Record: record}, nil
		}
		record, err = s.store.Update(ctx, jobID, Fields{VideoURL: StringPtr(payload.VideoURL)})
		if err != nil {
			return Result{}, err
		}
	}

	s.materialize(ctx, record.JobID, record.VideoURL)
	return Result{State: ResultReady, Record: record}, nil
}

// WebhookEvent is a verified inbound provider callback.
type WebhookEvent struct {
	JobID    string
	Status   string
	VideoURL string
	Error    string
}

// HandleWebhook folds a provider callback into the store, creating
// the record when the job was never observed locally, then triggers
// materialization and the backend notification. Both side effects are
// isolated: their failures are logged and never fail the webhook.
func (s *Service) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	status := Normalize(event.Status)

	s.logger.Info("webhook received",
		slog.String("job_id", event.JobID),
		slog.String("status", string(status)),
	)

	record, err := s.store.Update(ctx, event.JobID, Fields{
		Status:   StatusPtr(status),
		VideoURL: StringPtr(event.VideoURL),
		Detail:   StringPtr(event.Error),
	})
	if errors.Is(err, ErrNotFound) {
		// Webhook for a job created before a restart, or the delivery
		// raced ahead of our own submission bookkeeping.
		record = NewRecord(event.JobID, status, "", "", "en")
		record.VideoURL = event.VideoURL
		record.Detail = event.Error
		if err := s.store.Upsert(ctx, record); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if record.VideoURL != "" {
		s.materialize(ctx, record.JobID, record.VideoURL)
	}

	if s.notifier != nil && s.notifier.Enabled() {
		// Error already logged by the notifier; the webhook must be
		// acknowledged regardless.
		_ = s.notifier.Notify(ctx, webhook.Event{
			JobID:     event.JobID,
			Status:    string(record.Status),
			VideoURL:  record.VideoURL,
			Error:     event.Error,
			Timestamp: time.Now().UTC(),
		})
	}

	return nil
}

// Status returns the stored record without touching the provider.
func (s *Service) Status(ctx context.Context, jobID string) (*Record, error) {
	return s.store.Get(ctx, jobID)
}

// materialize runs a best-effort artifact download. Failures are
// logged and swallowed; download is a side effect, not the contract.
func (s *Service) materialize(ctx context.Context, jobID, videoURL string) {
	if s.materializer == nil || videoURL == "" {
		return
	}
	if _, err := s.materializer.Materialize(ctx, jobID, videoURL); err != nil {
		s.logger.Error("artifact materialization failed",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
}
