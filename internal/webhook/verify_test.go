package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify_ValidSignature(t *testing.T) {
	payload := []byte(`{"job_id":"job-1","status":"completed"}`)
	secret := "shared-secret"

	if !Verify(payload, sign(payload, secret), secret) {
		t.Error("valid signature rejected")
	}
}

func TestVerify_PrefixedSignature(t *testing.T) {
	payload := []byte(`{"job_id":"job-1"}`)
	secret := "shared-secret"

	if !Verify(payload, SignaturePrefix+sign(payload, secret), secret) {
		t.Error("sha256= prefixed signature rejected")
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	payload := []byte(`{"job_id":"job-1"}`)
	secret := "shared-secret"

	signature := []byte(sign(payload, secret))
	if signature[0] == 'a' {
		signature[0] = 'b'
	} else {
		signature[0] = 'a'
	}

	if Verify(payload, string(signature), secret) {
		t.Error("tampered signature accepted")
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	payload := []byte(`{"job_id":"job-1","status":"completed"}`)
	secret := "shared-secret"
	signature := sign(payload, secret)

	tampered := []byte(`{"job_id":"job-1","status":"failed"}`)
	if Verify(tampered, signature, secret) {
		t.Error("signature accepted for a different payload")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	payload := []byte(`{"job_id":"job-1"}`)

	if Verify(payload, sign(payload, "secret-a"), "secret-b") {
		t.Error("signature accepted with the wrong secret")
	}
}

func TestVerify_MissingSignature(t *testing.T) {
	if Verify([]byte("payload"), "", "secret") {
		t.Error("empty signature accepted")
	}
	if Verify([]byte("payload"), SignaturePrefix, "secret") {
		t.Error("bare prefix accepted")
	}
}

func TestExtractSignature(t *testing.T) {
	if got := ExtractSignature("sha256=abc123"); got != "abc123" {
		t.Errorf("expected abc123, got %q", got)
	}
	if got := ExtractSignature("abc123"); got != "abc123" {
		t.Errorf("expected passthrough, got %q", got)
	}
	if got := ExtractSignature(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
