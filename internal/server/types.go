// Package server provides the HTTP server for the pet roast API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "time"

// TranslateTextRequest is the HTTP request body for the standalone
// translation endpoint.
type TranslateTextRequest struct {
	// Text is the script text to translate.
	Text string `json:"text" validate:"required,min=1,max=5000"`
	// SourceLang is an ISO 639-1 code such as hi, te, ta, en.
	SourceLang string `json:"source_lang" validate:"required"`
	// TargetLang is the target language; defaults to English.
	TargetLang string `json:"target_lang"`
}

// TranslateTextResponse is the HTTP response for the translation endpoint.
type TranslateTextResponse struct {
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// GenerateVideoRequest is the HTTP request body for creating a roast
// video job.
type GenerateVideoRequest struct {
	// Text is the roast script.
	Text string `json:"text" validate:"required,min=1,max=5000"`
	// ImageURL is the pet image reference; a URL or a data URL.
	ImageURL string `json:"image_url" validate:"required"`
	// SourceLang is the language of Text; "auto" when omitted.
	SourceLang string `json:"source_lang"`
	// TargetLang is the generation language; "en" when omitted.
	TargetLang string `json:"target_lang"`
}

// GenerateVideoResponse is the HTTP response after creating a job.
type GenerateVideoResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// VideoStatusResponse is the HTTP response for the status endpoint.
type VideoStatusResponse struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VideoResultResponse is the HTTP response for the result endpoint.
type VideoResultResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// WebhookPayload is the inbound provider callback body.
type WebhookPayload struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
