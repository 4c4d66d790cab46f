package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/petroast/petroast-api/internal/job"
	"github.com/petroast/petroast-api/internal/retry"
	"github.com/petroast/petroast-api/internal/translate"
	"github.com/petroast/petroast-api/internal/videogen"
	"github.com/petroast/petroast-api/internal/webhook"
)

// supportedLanguages is the set of source languages accepted by the
// translation endpoint.
var supportedLanguages = map[string]struct{}{
	"hi": {}, "te": {}, "ta": {}, "ml": {}, "bn": {},
	"gu": {}, "mr": {}, "pa": {}, "en": {},
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service       *job.Service
	translator    translate.Client
	validator     *validator.Validate
	logger        *slog.Logger
	webhookSecret string
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithWebhookSecret enables signature verification for inbound
// webhooks. Without a secret, webhooks are accepted unauthenticated;
// NewHandlers logs a warning for that mode.
func WithWebhookSecret(secret string) HandlerOption {
	return func(h *Handlers) {
		h.webhookSecret = secret
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.Service, translator translate.Client, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:    service,
		translator: translator,
		validator:  validator.New(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.webhookSecret == "" {
		h.logger.Warn("no webhook secret configured; inbound webhooks are accepted unauthenticated")
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// TranslateText handles POST /api/translate-text requests.
func (h *Handlers) TranslateText(w http.ResponseWriter, r *http.Request) {
	var req TranslateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	sourceLang := strings.ToLower(req.SourceLang)
	if _, ok := supportedLanguages[sourceLang]; !ok {
		writeError(w, http.StatusBadRequest, "unsupported source language code", "UNSUPPORTED_LANGUAGE")
		return
	}
	targetLang := strings.ToLower(req.TargetLang)
	if targetLang == "" {
		targetLang = "en"
	}

	translated, err := h.translator.Translate(r.Context(), req.Text, sourceLang, targetLang)
	if err != nil {
		h.logger.Error("translation failed",
			slog.String("error", err.Error()),
		)
		writeProviderError(w, err, "TRANSLATION_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, TranslateTextResponse{
		TranslatedText: translated,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	})
}

// GenerateVideo handles POST /api/generate-video requests.
func (h *Handlers) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req GenerateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	record, err := h.service.GenerateVideo(r.Context(), job.GenerateInput{
		Text:       req.Text,
		ImageURL:   req.ImageURL,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		if errors.Is(err, job.ErrNoPetsDetected) {
			writeError(w, http.StatusBadRequest,
				"No pets found in the uploaded image. Please upload an image containing a pet to generate a roast video.",
				"NO_PETS_DETECTED")
			return
		}
		h.logger.Error("failed to create job",
			slog.String("error", err.Error()),
		)
		writeProviderError(w, err, "JOB_CREATION_FAILED")
		return
	}

	writeJSON(w, http.StatusAccepted, GenerateVideoResponse{
		JobID:  record.JobID,
		Status: string(record.Status),
	})
}

// VideoStatus handles GET /api/video-status/{job_id} requests.
func (h *Handlers) VideoStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	record, err := h.service.VideoStatus(r.Context(), jobID)
	if err != nil {
		h.logger.Error("failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeProviderError(w, err, "STATUS_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, VideoStatusResponse{
		JobID:     record.JobID,
		Status:    string(record.Status),
		Detail:    record.Detail,
		UpdatedAt: record.UpdatedAt,
	})
}

// VideoResult handles GET /api/video-result/{job_id} requests.
// An incomplete job answers 409 rather than an error payload:
// "not ready" is an expected outcome on this path.
func (h *Handlers) VideoResult(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	result, err := h.service.VideoResult(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get job result",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeProviderError(w, err, "RESULT_FETCH_FAILED")
		return
	}

	switch result.State {
	case job.ResultPending:
		writeError(w, http.StatusConflict, "video generation still in progress", "GENERATION_IN_PROGRESS")
	case job.ResultArtifactPending:
		writeError(w, http.StatusConflict, "video asset not ready yet", "ARTIFACT_NOT_READY")
	default:
		record := result.Record
		writeJSON(w, http.StatusOK, VideoResultResponse{
			JobID:    record.JobID,
			Status:   string(record.Status),
			VideoURL: record.VideoURL,
			Detail:   record.Detail,
		})
	}
}

// maxWebhookBody caps inbound webhook payloads; provider callbacks
// are small JSON documents.
const maxWebhookBody = 1 << 20

// VideoWebhook handles POST /api/webhook/video-complete requests from
// the provider. The raw body is read before JSON decoding because
// signature verification must run over the exact bytes sent.
func (h *Handlers) VideoWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", "INVALID_BODY")
		return
	}

	if h.webhookSecret != "" {
		signature := r.Header.Get("X-Webhook-Signature")
		if signature == "" {
			signature = r.Header.Get("X-Fal-Signature")
		}
		if !webhook.Verify(body, signature, h.webhookSecret) {
			h.logger.Warn("webhook signature verification failed")
			writeError(w, http.StatusUnauthorized, "invalid webhook signature", "INVALID_SIGNATURE")
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if payload.JobID == "" {
		writeError(w, http.StatusBadRequest, "missing job_id in webhook payload", "MISSING_JOB_ID")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), job.WebhookEvent{
		JobID:    payload.JobID,
		Status:   payload.Status,
		VideoURL: payload.VideoURL,
		Error:    payload.Error,
	}); err != nil {
		h.logger.Error("webhook processing failed",
			slog.String("job_id", payload.JobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to process webhook", "WEBHOOK_FAILED")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeProviderError maps upstream failures to HTTP statuses: a 4xx
// from the provider and a retry-exhausted transient failure both
// surface as 502 carrying the provider message; anything else is a
// plain 500.
func writeProviderError(w http.ResponseWriter, err error, code string) {
	var translateErr *translate.APIError
	var videogenErr *videogen.APIError
	var exhausted *retry.ExhaustedError
	if errors.As(err, &translateErr) || errors.As(err, &videogenErr) || errors.As(err, &exhausted) {
		writeError(w, http.StatusBadGateway, err.Error(), code)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error(), code)
}
