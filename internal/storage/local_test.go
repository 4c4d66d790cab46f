package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLocalStorage_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "videos")

	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Dir() != dir {
		t.Errorf("expected dir %s, got %s", dir, store.Dir())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("storage directory not created: %v", err)
	}
}

func TestLocalStorage_SaveArtifact(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := store.SaveArtifact(context.Background(), "job-1_20260101_120000.mp4", strings.NewReader("video-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 - test-controlled path
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestLocalStorage_SaveArtifact_StripsPath(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewLocalStorage(dir)

	path, err := store.SaveArtifact(context.Background(), "../../escape.mp4", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("artifact escaped storage dir: %s", path)
	}
}

func TestLocalStorage_SaveArtifact_CancelledContext(t *testing.T) {
	store, _ := NewLocalStorage(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.SaveArtifact(ctx, "job-1.mp4", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestLocalStorage_FindArtifact(t *testing.T) {
	store, _ := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	_, ok, err := store.FindArtifact(ctx, "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no artifact before save")
	}

	saved, _ := store.SaveArtifact(ctx, "job-1_20260101_120000.mp4", strings.NewReader("x"))

	path, ok, err := store.FindArtifact(ctx, "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected artifact to be found")
	}
	if path != saved {
		t.Errorf("expected %s, got %s", saved, path)
	}
}

func TestLocalStorage_FindArtifact_PrefixOnly(t *testing.T) {
	store, _ := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	_, _ = store.SaveArtifact(ctx, "job-10_20260101_120000.mp4", strings.NewReader("x"))

	// "job-1" must not match "job-10" artifacts.
	_, ok, err := store.FindArtifact(ctx, "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("prefix match leaked across job IDs")
	}
}

func TestLocalStorage_FindArtifact_MetacharJobID(t *testing.T) {
	store, _ := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	// Provider-assigned IDs are opaque; bracket or wildcard characters
	// must behave as literals, not pattern syntax.
	jobID := "req-[abc]*?"
	saved, err := store.SaveArtifact(ctx, jobID+"_20260101_120000.mp4", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, ok, err := store.FindArtifact(ctx, jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("artifact not found for job ID with metacharacters")
	}
	if path != saved {
		t.Errorf("expected %s, got %s", saved, path)
	}

	// And the metacharacters must not match other jobs' artifacts.
	if _, ok, _ := store.FindArtifact(ctx, "req-a"); ok {
		t.Error("unrelated job ID matched")
	}
}

func TestLocalStorage_UploadToS3_NotConfigured(t *testing.T) {
	store, _ := NewLocalStorage(t.TempDir())

	_, err := store.UploadToS3(context.Background(), "key", strings.NewReader("x"))
	if !errors.Is(err, ErrS3NotConfigured) {
		t.Errorf("expected ErrS3NotConfigured, got %v", err)
	}
}
