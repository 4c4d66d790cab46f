// Package detect provides the pet detection gate applied before any
// video job is created. The classifier itself is an external service;
// this package only implements the client boundary.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrBaseURLRequired is returned when the detection service URL is not configured.
var ErrBaseURLRequired = errors.New("detect: base URL is required")

// Detection is the classifier verdict for an image.
type Detection struct {
	// HasPets reports whether at least one pet was found.
	HasPets bool `json:"has_pets"`
	// Labels lists the detected pet types, e.g. ["dog", "cat"].
	Labels []string `json:"labels"`
}

// Detector validates that an image contains a pet. A false verdict is
// a hard rejection: the orchestrator never creates a job for it.
type Detector interface {
	Detect(ctx context.Context, imageRef string) (Detection, error)
}

// HTTPDetector calls an external classifier service. The underlying
// HTTP client is initialized lazily exactly once; the detector is
// constructed and injected at startup rather than held as package
// state.
type HTTPDetector struct {
	baseURL string
	timeout time.Duration

	once       sync.Once
	httpClient *http.Client
}

// DetectorOption configures an HTTPDetector.
type DetectorOption func(*HTTPDetector)

// WithTimeout sets the per-request timeout (default 10s).
func WithTimeout(d time.Duration) DetectorOption {
	return func(h *HTTPDetector) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client, bypassing lazy init.
func WithHTTPClient(hc *http.Client) DetectorOption {
	return func(h *HTTPDetector) {
		h.httpClient = hc
	}
}

// NewHTTPDetector creates a detector client for the classifier
// service at baseURL.
func NewHTTPDetector(baseURL string, opts ...DetectorOption) (*HTTPDetector, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	h := &HTTPDetector{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *HTTPDetector) client() *http.Client {
	h.once.Do(func() {
		if h.httpClient == nil {
			h.httpClient = &http.Client{Timeout: h.timeout}
		}
	})
	return h.httpClient
}

type detectRequest struct {
	Image string `json:"image"`
}

// Detect posts the image reference to the classifier and returns its
// verdict. imageRef may be a URL or an embedded data URL.
func (h *HTTPDetector) Detect(ctx context.Context, imageRef string) (Detection, error) {
	body, err := json.Marshal(detectRequest{Image: imageRef})
	if err != nil {
		return Detection{}, fmt.Errorf("detect: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return Detection{}, fmt.Errorf("detect: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client().Do(req)
	if err != nil {
		return Detection{}, fmt.Errorf("detect: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Detection{}, fmt.Errorf("detect: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Detection{}, fmt.Errorf("detect: classifier returned %d: %s", resp.StatusCode, respBody)
	}

	var detection Detection
	if err := json.Unmarshal(respBody, &detection); err != nil {
		return Detection{}, fmt.Errorf("detect: unmarshal response: %w", err)
	}
	return detection, nil
}
