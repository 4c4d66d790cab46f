package videogen

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

// Static errors for video generation client operations.
var (
	// ErrAPIKeyRequired is returned when the provider API key is not configured.
	ErrAPIKeyRequired = errors.New("videogen: API key is required")
	// ErrModelIDRequired is returned when the model ID is not configured.
	ErrModelIDRequired = errors.New("videogen: model ID is required")
	// ErrJobIDRequired is returned when a job ID is not provided.
	ErrJobIDRequired = errors.New("videogen: job ID is required")
	// ErrNoJobID is returned when no candidate field of the submit
	// response carries a job identifier.
	ErrNoJobID = errors.New("videogen: submit response missing job ID")
)

// APIError is returned for 4xx provider responses. These are never
// retried.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("videogen: provider returned %d: %s", e.StatusCode, e.Message)
}

// Client defines the interface for the video generation provider.
type Client interface {
	// Submit creates a remote generation job and returns the
	// provider-assigned job ID with the initial status.
	Submit(ctx context.Context, input SubmitInput) (SubmitResult, error)

	// PollStatus fetches the current remote state of a job.
	PollStatus(ctx context.Context, jobID string) (StatusResult, error)

	// FetchResult is a best-effort secondary artifact lookup for jobs
	// that report completion without a video URL. The second return is
	// false when the artifact is still unavailable; that is not an
	// error, a webhook delivery supplies the URL eventually.
	FetchResult(ctx context.Context, jobID string) (ResultPayload, bool, error)
}

// jobIDCandidates is the ordered list of submit-response fields that
// may carry the provider-assigned identifier.
var jobIDCandidates = []string{"request_id", "id", "job_id"}

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	apiKey     string
	modelID    string
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL for the provider queue API.
func WithBaseURL(url string) Option {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRetryPolicy overrides the retry policy for transient failures.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *HTTPClient) {
		c.policy = p
	}
}

// NewClient creates a new video generation HTTP client for the given
// provider model.
func NewClient(apiKey, modelID string, opts ...Option) (*HTTPClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if modelID == "" {
		return nil, ErrModelIDRequired
	}

	c := &HTTPClient{
		apiKey:     apiKey,
		modelID:    modelID,
		baseURL:    "https://queue.fal.run",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit creates a remote generation job.
func (c *HTTPClient) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	body, err := json.Marshal(submitRequest{
		Input: submitInput{
			Prompt:   input.Text,
			ImageURL: input.ImageURL,
			Language: input.Language,
		},
	})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("videogen: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.modelID)

	payload, err := c.doWithRetry(ctx, http.MethodPost, url, body)
	if err != nil {
		return SubmitResult{}, err
	}

	jobID := firstString(payload, jobIDCandidates...)
	if jobID == "" {
		return SubmitResult{}, ErrNoJobID
	}

	return SubmitResult{
		JobID:  jobID,
		Status: stringField(payload, "status"),
		Detail: stringField(payload, "detail"),
	}, nil
}

// PollStatus fetches the current remote state of a job.
func (c *HTTPClient) PollStatus(ctx context.Context, jobID string) (StatusResult, error) {
	if jobID == "" {
		return StatusResult{}, ErrJobIDRequired
	}

	url := fmt.Sprintf("%s/%s/requests/%s/status", c.baseURL, c.modelID, jobID)

	payload, err := c.doWithRetry(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StatusResult{}, err
	}

	detail := stringField(payload, "detail")
	if detail == "" {
		detail = stringField(payload, "error")
	}

	return StatusResult{
		Status:   stringField(payload, "status"),
		VideoURL: extractVideoURL(payload),
		Detail:   detail,
	}, nil
}

// FetchResult looks up the artifact for a completed job. A 404 or a
// response without a video URL means the artifact is not ready yet.
func (c *HTTPClient) FetchResult(ctx context.Context, jobID string) (ResultPayload, bool, error) {
	if jobID == "" {
		return ResultPayload{}, false, ErrJobIDRequired
	}

	url := fmt.Sprintf("%s/%s/requests/%s", c.baseURL, c.modelID, jobID)

	payload, err := c.doWithRetry(ctx, http.MethodGet, url, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return ResultPayload{}, false, nil
		}
		return ResultPayload{}, false, err
	}

	videoURL := extractVideoURL(payload)
	if videoURL == "" {
		return ResultPayload{}, false, nil
	}
	return ResultPayload{VideoURL: videoURL}, true, nil
}

// doWithRetry performs a request under the retry policy and decodes
// the JSON response into a generic map for candidate-path extraction.
func (c *HTTPClient) doWithRetry(ctx context.Context, method, url string, body []byte) (map[string]any, error) {
	var payload map[string]any
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		p, reqErr := c.doRequest(ctx, method, url, body)
		if reqErr != nil {
			return reqErr
		}
		payload = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// doRequest performs a single HTTP request. Transport failures and
// 5xx responses are marked transient; other non-2xx responses become
// an APIError.
func (c *HTTPClient) doRequest(ctx context.Context, method, url string, body []byte) (map[string]any, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("videogen: create request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("videogen: request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("videogen: read response: %w", err))
	}

	if resp.StatusCode >= 500 {
		return nil, retry.Transient(fmt.Errorf("videogen: server error %d: %s", resp.StatusCode, respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var payload map[string]any
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("videogen: unmarshal response: %w", err)
	}
	return payload, nil
}

// stringField returns a top-level string field or "".
func stringField(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}

// firstString returns the first present non-empty string among the
// candidate keys.
func firstString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := payload[key].(string); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// extractVideoURL walks the candidate locations the provider is known
// to place the artifact URL in, returning the first hit:
// video_url, video (string), video.url, video.urls.mp4, and the same
// shapes nested under output.
func extractVideoURL(payload map[string]any) string {
	if url := stringField(payload, "video_url"); url != "" {
		return url
	}
	if url := videoFrom(payload["video"]); url != "" {
		return url
	}
	if output, ok := payload["output"].(map[string]any); ok {
		if url := stringField(output, "video_url"); url != "" {
			return url
		}
		if url := videoFrom(output["video"]); url != "" {
			return url
		}
	}
	return ""
}

// videoFrom extracts a URL from a "video" value that may be a plain
// string or an object with url / urls.mp4.
func videoFrom(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if url := stringField(v, "url"); url != "" {
			return url
		}
		if urls, ok := v["urls"].(map[string]any); ok {
			return stringField(urls, "mp4")
		}
	}
	return ""
}
