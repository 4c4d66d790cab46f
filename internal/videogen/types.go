// Package videogen provides an HTTP client for the queue-based video
// generation provider. The provider assigns job IDs at submission and
// reports progress through polling and webhooks; its responses vary in
// where they place identifiers and artifact URLs, so extraction works
// through ordered candidate paths.
package videogen

// SubmitInput carries the request payload for a new generation job.
type SubmitInput struct {
	// Text is the cleaned roast script used as the generation prompt.
	Text string
	// ImageURL is the source image reference (URL or data URL).
	ImageURL string
	// Language is the target language code for generation.
	Language string
}

// SubmitResult is the provider's answer to a job submission.
type SubmitResult struct {
	// JobID is the provider-assigned identifier.
	JobID string
	// Status is the raw provider status token, if any.
	Status string
	// Detail is a human-readable provider message, if any.
	Detail string
}

// StatusResult is the provider's answer to a status poll.
type StatusResult struct {
	// Status is the raw provider status token.
	Status string
	// VideoURL is the artifact URL when the provider included one.
	// The provider sometimes omits it even for completed jobs; the
	// webhook delivery supplies it eventually in that case.
	VideoURL string
	// Detail is a human-readable provider message, if any.
	Detail string
}

// ResultPayload is the artifact lookup response for a completed job.
type ResultPayload struct {
	// VideoURL is the artifact location.
	VideoURL string
}

type submitRequest struct {
	Input submitInput `json:"input"`
}

type submitInput struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url"`
	Language string `json:"language,omitempty"`
}
