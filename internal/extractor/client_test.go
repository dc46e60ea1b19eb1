package extractor_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/internal/config"
	"quill/internal/extractor"
	"quill/internal/services"
)

func newClient(t *testing.T, baseURL string, attempts int) *extractor.Client {
	t.Helper()
	cfg := config.Default()
	cfg.Extractor.BaseURL = baseURL
	cfg.Extractor.RetryAttempts = attempts
	client, err := extractor.NewClient(&cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestFetchDecodesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("source"); got != "https://source.example/novel/42" {
			t.Errorf("source param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"title": "The Green Tea Lady",
			"author": "Anon",
			"synopsis": "A story.",
			"coverUrl": "https://img.example/cover.jpg",
			"status": "ongoing",
			"chapters": [
				{"number": 1, "title": "One", "rawText": "First."},
				{"number": 2, "title": "Two", "rawText": "Second."}
			]
		}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, 1)
	payload, err := client.Fetch(context.Background(), "https://source.example/novel/42")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if payload.Title != "The Green Tea Lady" {
		t.Fatalf("title = %q", payload.Title)
	}
	if len(payload.Chapters) != 2 || payload.Chapters[1].Number != 2 {
		t.Fatalf("chapters = %+v", payload.Chapters)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"title": "Recovered", "chapters": []}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, 5)
	payload, err := client.Fetch(context.Background(), "https://source.example/novel/1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if payload.Title != "Recovered" {
		t.Fatalf("title = %q", payload.Title)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "no such novel", http.StatusNotFound)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, 5)
	_, err := client.Fetch(context.Background(), "https://source.example/novel/404")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrSource) {
		t.Fatalf("err = %v, want source error", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestFetchRejectsMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "", "chapters": []}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, 1)
	_, err := client.Fetch(context.Background(), "https://source.example/novel/2")
	if !errors.Is(err, services.ErrSource) {
		t.Fatalf("err = %v, want source error", err)
	}
}

func TestFetchCover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, 1)
	body, contentType, err := client.FetchCover(context.Background(), srv.URL+"/cover.png")
	if err != nil {
		t.Fatalf("fetch cover: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("content type = %q", contentType)
	}
	if len(body) != 4 {
		t.Fatalf("body length = %d", len(body))
	}
}
