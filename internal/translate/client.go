// Package translate provides an HTTP client for the translation
// provider that cleans and translates roast scripts before video
// generation.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/petroast/petroast-api/internal/retry"
)

// Static errors for translation client operations.
var (
	// ErrBaseURLRequired is returned when the provider base URL is not configured.
	ErrBaseURLRequired = errors.New("translate: base URL is required")
	// ErrNoTranslation is returned when no candidate response field
	// contains translated text.
	ErrNoTranslation = errors.New("translate: no translated text in provider response")
)

// APIError is returned for 4xx provider responses. These are never
// retried.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("translate: provider returned %d: %s", e.StatusCode, e.Message)
}

// Client defines the interface for the translation provider.
type Client interface {
	// Translate converts text from sourceLang to targetLang and
	// returns the translated text.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// textCandidates is the ordered list of response fields that may carry
// the translated text; the first present non-empty value wins.
var textCandidates = []string{"translated_text", "translation", "output_text", "output", "text"}

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	baseURL       string
	translatePath string
	apiKey        string
	httpClient    *http.Client
	policy        retry.Policy
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithAPIKey sets the bearer token sent to the provider. The provider
// accepts unauthenticated requests when no key is configured.
func WithAPIKey(key string) Option {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithTranslatePath overrides the translate endpoint path.
func WithTranslatePath(path string) Option {
	return func(c *HTTPClient) {
		c.translatePath = path
	}
}

// WithRetryPolicy overrides the retry policy for transient failures.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *HTTPClient) {
		c.policy = p
	}
}

// NewClient creates a new translation HTTP client.
func NewClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &HTTPClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		translatePath: "/translate",
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		policy:        retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type translateRequest struct {
	Input          string `json:"input"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// Translate submits text to the provider and extracts the translated
// text from whichever response field the provider populated.
func (c *HTTPClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == "" {
		sourceLang = "auto"
	}
	if targetLang == "" {
		targetLang = "en"
	}

	body, err := json.Marshal(translateRequest{
		Input:          text,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("translate: marshal request: %w", err)
	}

	url := c.baseURL + c.translatePath

	var payload map[string]any
	err = c.policy.Do(ctx, func(ctx context.Context) error {
		p, reqErr := c.doRequest(ctx, url, body)
		if reqErr != nil {
			return reqErr
		}
		payload = p
		return nil
	})
	if err != nil {
		return "", err
	}

	return extractText(payload)
}

// doRequest performs a single POST. Transport failures and 5xx
// responses are marked transient; 4xx responses become an APIError.
func (c *HTTPClient) doRequest(ctx context.Context, url string, body []byte) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("translate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("translate: request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("translate: read response: %w", err))
	}

	if resp.StatusCode >= 500 {
		return nil, retry.Transient(fmt.Errorf("translate: server error %d: %s", resp.StatusCode, respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var payload map[string]any
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("translate: unmarshal response: %w", err)
	}
	return payload, nil
}

// extractText tries each candidate field in order and returns the
// first non-empty string.
func extractText(payload map[string]any) (string, error) {
	for _, key := range textCandidates {
		if value, ok := payload[key].(string); ok && strings.TrimSpace(value) != "" {
			return value, nil
		}
	}
	return "", ErrNoTranslation
}
