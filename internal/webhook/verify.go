// Package webhook provides signature verification for inbound provider
// callbacks and the outbound notifier that forwards normalized job
// events to the downstream backend.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignaturePrefix is the scheme prefix providers prepend to the hex
// digest in the signature header.
const SignaturePrefix = "sha256="

// ExtractSignature returns the hex digest from a signature header
// value, stripping the sha256= prefix when present. Returns "" for a
// missing header.
func ExtractSignature(headerValue string) string {
	if headerValue == "" {
		return ""
	}
	return strings.TrimPrefix(headerValue, SignaturePrefix)
}

// Verify checks the HMAC-SHA256 signature of a webhook payload.
// The payload must be the exact raw request body bytes captured before
// any JSON parsing; re-serialization is not byte-identical. A missing
// or empty signature fails verification. Comparison is constant time.
func Verify(payload []byte, signatureHeader, secret string) bool {
	signature := ExtractSignature(signatureHeader)
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
