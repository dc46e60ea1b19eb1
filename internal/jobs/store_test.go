package jobs_test

import (
	"context"
	"testing"

	"quill/internal/jobs"
	"quill/internal/testsupport"
)

func TestSubmitCreatesPendingJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job, err := store.Submit(ctx, "https://source.test/novels/42")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected job ID to be assigned")
	}
	if job.Status != jobs.StatusPending {
		t.Fatalf("expected pending status, got %s", job.Status)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.SourceURL != "https://source.test/novels/42" {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
}

func TestSubmitRequiresSourceURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Submit(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty source url")
	}
}

func TestClaimIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.SubmitJob(t, store, "https://source.test/novels/1")

	claimed, err := store.Claim(ctx, job.ID)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	again, err := store.Claim(ctx, job.ID)
	if err != nil {
		t.Fatalf("second Claim failed: %v", err)
	}
	if again {
		t.Fatal("expected second claim to no-op")
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != jobs.StatusFetching {
		t.Fatalf("expected fetching after claim, got %s", fetched.Status)
	}
}

func TestTransitionEnforcesMonotonicOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.SubmitJob(t, store, "https://source.test/novels/2")

	if _, err := store.Claim(ctx, job.ID); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	job, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	for _, next := range []jobs.Status{jobs.StatusStoring, jobs.StatusImporting, jobs.StatusCompleted} {
		if err := store.Transition(ctx, job, next); err != nil {
			t.Fatalf("Transition to %s failed: %v", next, err)
		}
	}

	if err := store.Transition(ctx, job, jobs.StatusFailed); err == nil {
		t.Fatal("expected transition out of completed to be rejected")
	}
}

func TestTransitionRejectsSkippedStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.SubmitJob(t, store, "https://source.test/novels/3")

	if err := store.Transition(ctx, job, jobs.StatusImporting); err == nil {
		t.Fatal("expected pending -> importing to be rejected")
	}
	if err := store.Transition(ctx, job, jobs.StatusFailed); err != nil {
		t.Fatalf("pending -> failed should be allowed: %v", err)
	}
}

func TestFailStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	inFlight := testsupport.SubmitJob(t, store, "https://source.test/novels/4")
	if _, err := store.Claim(ctx, inFlight.ID); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	pending := testsupport.SubmitJob(t, store, "https://source.test/novels/5")

	count, err := store.FailStaleProcessing(ctx, "")
	if err != nil {
		t.Fatalf("FailStaleProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 job failed, got %d", count)
	}

	failed, err := store.GetByID(ctx, inFlight.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if failed.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
	if failed.ErrorMessage != jobs.DaemonStopReason {
		t.Fatalf("unexpected error message: %q", failed.ErrorMessage)
	}

	untouched, err := store.GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != jobs.StatusPending {
		t.Fatalf("pending job should be untouched, got %s", untouched.Status)
	}
}

func TestNextPendingReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.SubmitJob(t, store, "https://source.test/novels/6")
	testsupport.SubmitJob(t, store, "https://source.test/novels/7")

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest job %d, got %#v", first.ID, next)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SubmitJob(t, store, "https://source.test/novels/8")
	claimed := testsupport.SubmitJob(t, store, "https://source.test/novels/9")
	if _, err := store.Claim(ctx, claimed.ID); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Processing != 1 {
		t.Fatalf("unexpected health summary: %+v", health)
	}
}

func TestClearTerminalKeepsActiveJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	active := testsupport.SubmitJob(t, store, "https://source.test/novels/10")
	done := testsupport.SubmitJob(t, store, "https://source.test/novels/11")
	done.SetFailed("source unreachable")
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	removed, err := store.ClearTerminal(ctx)
	if err != nil {
		t.Fatalf("ClearTerminal failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != active.ID {
		t.Fatalf("unexpected remaining jobs: %#v", remaining)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := jobs.ParseStatus(" Importing "); !ok || status != jobs.StatusImporting {
		t.Fatalf("ParseStatus failed: %v %v", status, ok)
	}
	if _, ok := jobs.ParseStatus("ripping"); ok {
		t.Fatal("unknown status should not parse")
	}
}
