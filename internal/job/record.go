// Package job provides the job record for pet roast video generation,
// the canonical status vocabulary shared by every update source, and the
// Store port with in-memory and Redis-backed implementations.
package job

import (
	"strings"
	"time"
)

// Status represents the canonical state of a video generation job.
// Provider status strings are mapped onto these four values before
// they ever touch a Record.
type Status string

const (
	// StatusQueued indicates the job was accepted and is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusProcessing indicates the provider is rendering the video.
	StatusProcessing Status = "processing"
	// StatusCompleted indicates the job finished successfully.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the job encountered an error.
	StatusFailed Status = "failed"
)

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// statusTable maps provider status tokens to canonical statuses.
var statusTable = map[string]Status{
	"queued":      StatusQueued,
	"pending":     StatusQueued,
	"in_queue":    StatusQueued,
	"processing":  StatusProcessing,
	"rendering":   StatusProcessing,
	"in_progress": StatusProcessing,
	"completed":   StatusCompleted,
	"success":     StatusCompleted,
	"failed":      StatusFailed,
	"error":       StatusFailed,
}

// Normalize maps a raw provider status string to a canonical Status.
// Matching is case-insensitive. Unrecognized tokens map to
// StatusProcessing so an unknown state is never treated as terminal.
func Normalize(raw string) Status {
	if s, ok := statusTable[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusProcessing
}

// Record stores job metadata and the latest reconciled status.
// The JobID is assigned by the video generation provider and is
// immutable after creation.
type Record struct {
	JobID     string    `json:"job_id"`
	Status    Status    `json:"status"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"image_url"`
	Language  string    `json:"language"`
	VideoURL  string    `json:"video_url,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecord creates a Record with creation timestamps set to now.
func NewRecord(jobID string, status Status, text, imageURL, language string) *Record {
	now := time.Now().UTC()
	return &Record{
		JobID:     jobID,
		Status:    status,
		Text:      text,
		ImageURL:  imageURL,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fields is a partial update applied to a Record. Nil pointers leave
// the corresponding field untouched.
type Fields struct {
	Status   *Status
	VideoURL *string
	Detail   *string
}

// Apply merges the non-nil fields into the record and refreshes
// UpdatedAt. Two convergence rules hold regardless of which update
// source (poll, webhook, local upsert) supplied the fields:
//
//   - a terminal status is absorbing; any later status update leaves
//     it untouched but may still backfill detail and a missing
//     video URL
//   - VideoURL is first-write-wins; once set it is never replaced
func (r *Record) Apply(f Fields) {
	if f.Status != nil && !r.Status.IsTerminal() {
		r.Status = *f.Status
	}
	if f.VideoURL != nil && *f.VideoURL != "" && r.VideoURL == "" {
		r.VideoURL = *f.VideoURL
	}
	if f.Detail != nil && *f.Detail != "" {
		r.Detail = *f.Detail
	}
	r.UpdatedAt = time.Now().UTC()
}

// Clone creates a copy of the record for safe reads.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

// StatusPtr is a helper for building Fields literals.
func StatusPtr(s Status) *Status { return &s }

// StringPtr is a helper for building Fields literals. It returns nil
// for the empty string so absent provider fields stay absent.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
