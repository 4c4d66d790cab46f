package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/petroast/petroast-api/internal/retry"
)

// Event is the normalized job event forwarded to the downstream
// backend when a webhook is processed.
type Event struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	VideoURL  string    `json:"video_url,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier forwards job events to a configured backend URL. Delivery
// is best effort: transport failures and 5xx responses are retried
// under the shared policy, a 4xx response is logged and dropped, and
// no failure ever propagates to the webhook handler that triggered it.
type Notifier struct {
	url        string
	httpClient *http.Client
	policy     retry.Policy
	logger     *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) NotifierOption {
	return func(n *Notifier) {
		n.httpClient = hc
	}
}

// WithRetryPolicy overrides the retry policy for transient failures.
func WithRetryPolicy(p retry.Policy) NotifierOption {
	return func(n *Notifier) {
		n.policy = p
	}
}

// NewNotifier creates a Notifier posting to url. An empty url yields
// a disabled notifier whose Notify is a no-op.
func NewNotifier(url string, logger *slog.Logger, opts ...NotifierOption) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		policy:     retry.DefaultPolicy(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Enabled reports whether a backend URL is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// Notify posts the event to the backend. The returned error is for
// logging only; callers must not fail their primary operation on it.
func (n *Notifier) Notify(ctx context.Context, event Event) error {
	if !n.Enabled() {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	err = n.policy.Do(ctx, func(ctx context.Context) error {
		return n.post(ctx, event.JobID, body)
	})
	if err != nil {
		n.logger.Error("backend notification failed",
			slog.String("job_id", event.JobID),
			slog.String("url", n.url),
			slog.String("error", err.Error()),
		)
		return err
	}

	n.logger.Info("backend notified",
		slog.String("job_id", event.JobID),
		slog.String("status", event.Status),
	)
	return nil
}

// post performs a single delivery attempt. Only transport failures
// and 5xx responses are marked transient; a 4xx answer from the
// backend is final.
func (n *Notifier) post(ctx context.Context, jobID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Source", "petroast-ai")
	req.Header.Set("X-Job-ID", jobID)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return retry.Transient(fmt.Errorf("webhook: post failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode >= 500 {
		return retry.Transient(fmt.Errorf("webhook: backend error %d: %s", resp.StatusCode, respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: backend rejected event with %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
