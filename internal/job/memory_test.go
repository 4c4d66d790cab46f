package job

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_UpsertGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	rec := NewRecord("job-1", StatusQueued, "roast", "http://img", "en")

	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.JobID != "job-1" || got.Status != StatusQueued {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Upsert(ctx, NewRecord("job-1", StatusQueued, "roast", "http://img", "en"))

	updated, err := store.Update(ctx, "job-1", Fields{
		Status:   StatusPtr(StatusCompleted),
		VideoURL: StringPtr("http://cdn/v.mp4"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}
	if updated.VideoURL != "http://cdn/v.mp4" {
		t.Errorf("video URL not applied, got %q", updated.VideoURL)
	}

	// The stored record reflects the update.
	got, _ := store.Get(ctx, "job-1")
	if got.Status != StatusCompleted {
		t.Errorf("stored record not updated, got %s", got.Status)
	}
}

func TestMemoryStore_Update_NotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Update(context.Background(), "nonexistent", Fields{
		Status: StatusPtr(StatusCompleted),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Get_ReturnsClone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Upsert(ctx, NewRecord("job-1", StatusQueued, "roast", "http://img", "en"))

	found, _ := store.Get(ctx, "job-1")
	found.Status = StatusFailed
	found.VideoURL = "http://cdn/evil.mp4"

	original, _ := store.Get(ctx, "job-1")
	if original.Status != StatusQueued || original.VideoURL != "" {
		t.Error("modifying a returned record should not affect the store")
	}
}

func TestMemoryStore_Upsert_StoresClone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	rec := NewRecord("job-1", StatusQueued, "roast", "http://img", "en")
	_ = store.Upsert(ctx, rec)

	rec.Status = StatusFailed

	got, _ := store.Get(ctx, "job-1")
	if got.Status != StatusQueued {
		t.Error("mutating the original after Upsert should not affect the store")
	}
}
