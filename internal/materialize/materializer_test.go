package materialize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/petroast/petroast-api/internal/storage"
)

func newTestMaterializer(t *testing.T) *Materializer {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(store, nil)
}

func TestMaterialize_DownloadsAndStores(t *testing.T) {
	var downloads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		_, _ = w.Write([]byte("video-bytes"))
	}))
	defer srv.Close()

	m := newTestMaterializer(t)
	path, err := m.Materialize(context.Background(), "job-1", srv.URL+"/v.mp4")
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
	if !strings.Contains(path, "job-1_") || !strings.HasSuffix(path, ".mp4") {
		t.Errorf("unexpected artifact name %s", path)
	}
	if downloads.Load() != 1 {
		t.Errorf("expected 1 download, got %d", downloads.Load())
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	var downloads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		_, _ = w.Write([]byte("video-bytes"))
	}))
	defer srv.Close()

	m := newTestMaterializer(t)
	ctx := context.Background()

	first, err := m.Materialize(ctx, "job-1", srv.URL+"/v.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A webhook and a later poll both observe completion; only the
	// first call may download.
	second, err := m.Materialize(ctx, "job-1", srv.URL+"/v.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("expected same path, got %s and %s", first, second)
	}
	if downloads.Load() != 1 {
		t.Errorf("expected 1 download across 2 calls, got %d", downloads.Load())
	}
}

func TestMaterialize_DownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	m := newTestMaterializer(t)
	_, err := m.Materialize(context.Background(), "job-1", srv.URL+"/v.mp4")
	if err == nil {
		t.Fatal("expected error for failed download")
	}

	// Nothing half-written must remain.
	if _, ok, _ := m.store.FindArtifact(context.Background(), "job-1"); ok {
		t.Error("failed download left an artifact behind")
	}
}

func TestMaterialize_TransportFailure(t *testing.T) {
	m := newTestMaterializer(t)

	_, err := m.Materialize(context.Background(), "job-1", "http://127.0.0.1:1/v.mp4")
	if err == nil {
		t.Fatal("expected error for unreachable host")
	}
}
