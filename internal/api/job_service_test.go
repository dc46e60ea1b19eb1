package api_test

import (
	"context"
	"errors"
	"testing"

	"quill/internal/api"
	"quill/internal/jobs"
	"quill/internal/services"
	"quill/internal/testsupport"
)

func TestSubmitRejectsRelativeURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.NewJobService(store)

	for _, bad := range []string{"", "   ", "not-a-url", "/relative/path"} {
		if _, err := svc.Submit(context.Background(), bad); !errors.Is(err, services.ErrValidation) {
			t.Errorf("Submit(%q) err = %v, want validation error", bad, err)
		}
	}
}

func TestSubmitCreatesPendingJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.NewJobService(store)

	job, err := svc.Submit(context.Background(), "  https://source.test/novel/1  ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.Status != string(jobs.StatusPending) {
		t.Fatalf("status = %q", job.Status)
	}
	if job.SourceURL != "https://source.test/novel/1" {
		t.Fatalf("source url = %q", job.SourceURL)
	}
	if job.ID == 0 {
		t.Fatal("job id not assigned")
	}
}

func TestDescribeMissingJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.NewJobService(store)

	job, err := svc.Describe(context.Background(), 9999)
	if err != nil {
		t.Fatal(err)
	}
	if job != nil {
		t.Fatalf("job = %+v, want nil", job)
	}
}

func TestStatsIncludeAllStatuses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.NewJobService(store)

	testsupport.SubmitJob(t, store, "https://source.test/novel/1")

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats["pending"] != 1 {
		t.Fatalf("pending = %d", stats["pending"])
	}
	for _, status := range jobs.AllStatuses() {
		if _, ok := stats[string(status)]; !ok {
			t.Fatalf("missing status key %s", status)
		}
	}
}
