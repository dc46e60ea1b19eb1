package testsupport

import (
	"context"
	"testing"

	"quill/internal/catalog"
	"quill/internal/config"
	"quill/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SubmitJob creates a new pending job for tests using the provided store.
func SubmitJob(t testing.TB, store *jobs.Store, sourceURL string) *jobs.Job {
	t.Helper()

	job, err := store.Submit(context.Background(), sourceURL)
	if err != nil {
		t.Fatalf("store.Submit: %v", err)
	}
	return job
}
