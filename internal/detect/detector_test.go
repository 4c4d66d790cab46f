package detect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHTTPDetector_MissingBaseURL(t *testing.T) {
	_, err := NewHTTPDetector("")
	if !errors.Is(err, ErrBaseURLRequired) {
		t.Errorf("expected ErrBaseURLRequired, got %v", err)
	}
}

func TestDetect_PetFound(t *testing.T) {
	var gotPath string
	var gotReq detectRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(Detection{HasPets: true, Labels: []string{"dog"}})
	}))
	defer srv.Close()

	detector, err := NewHTTPDetector(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	detection, err := detector.Detect(context.Background(), "http://img/dog.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/detect" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotReq.Image != "http://img/dog.jpg" {
		t.Errorf("unexpected image ref %q", gotReq.Image)
	}
	if !detection.HasPets {
		t.Error("expected HasPets true")
	}
	if len(detection.Labels) != 1 || detection.Labels[0] != "dog" {
		t.Errorf("unexpected labels %v", detection.Labels)
	}
}

func TestDetect_NoPets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Detection{HasPets: false})
	}))
	defer srv.Close()

	detector, _ := NewHTTPDetector(srv.URL)
	detection, err := detector.Detect(context.Background(), "http://img/chair.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detection.HasPets {
		t.Error("expected HasPets false")
	}
}

func TestDetect_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "classifier down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	detector, _ := NewHTTPDetector(srv.URL)
	_, err := detector.Detect(context.Background(), "http://img/dog.jpg")
	if err == nil {
		t.Fatal("expected error for classifier failure")
	}
}

func TestDetect_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	detector, _ := NewHTTPDetector(srv.URL)
	_, err := detector.Detect(context.Background(), "http://img/dog.jpg")
	if err == nil {
		t.Fatal("expected error for malformed response")
	}
}
