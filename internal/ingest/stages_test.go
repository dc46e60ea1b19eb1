package ingest_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"quill/internal/blobstore"
	"quill/internal/ingest"
	"quill/internal/jobs"
	"quill/internal/services"
	"quill/internal/testsupport"
)

const testSource = "https://source.test/novel/1"

func runPipeline(t *testing.T, stages ingest.Stages, job *jobs.Job) error {
	t.Helper()
	ctx := context.Background()
	for _, status := range []jobs.Status{jobs.StatusFetching, jobs.StatusStoring, jobs.StatusImporting} {
		handler, ok := stages.ForStatus(status)
		if !ok {
			t.Fatalf("no handler for %s", status)
		}
		if err := handler.Prepare(ctx, job); err != nil {
			return err
		}
		if err := handler.Execute(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	queue := testsupport.MustOpenStore(t, cfg)
	blobs, err := blobstore.NewFilesystem(cfg.Paths.BlobDir, "https://cdn.test")
	if err != nil {
		t.Fatal(err)
	}

	fake := testsupport.NewFakeExtractor()
	payload := *samplePayload()
	payload.CoverURL = "https://img.test/cover.jpg"
	fake.Add(testSource, payload)
	fake.AddCover("https://img.test/cover.jpg", []byte{0xff, 0xd8, 0xff})

	stages := ingest.NewStages(fake, blobs, cat, nil)
	job := testsupport.SubmitJob(t, queue, testSource)

	if err := runPipeline(t, stages, job); err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	if job.NovelSlug != "the-green-tea-lady" {
		t.Fatalf("slug = %q", job.NovelSlug)
	}
	if job.ChaptersImported != 2 {
		t.Fatalf("chapters imported = %d", job.ChaptersImported)
	}

	ctx := context.Background()
	for _, key := range []string{
		blobstore.MetadataKey(job.NovelSlug),
		blobstore.CoverKey(job.NovelSlug),
		blobstore.ChapterKey(job.NovelSlug, 1),
		blobstore.ChapterKey(job.NovelSlug, 2),
	} {
		ok, err := blobs.Exists(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("missing artifact %s", key)
		}
	}

	raw, err := blobs.Get(ctx, blobstore.MetadataKey(job.NovelSlug))
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("metadata not json: %v", err)
	}
	if doc["title"] != "The Green Tea Lady" {
		t.Fatalf("metadata title = %v", doc["title"])
	}

	novel, err := cat.GetNovel(ctx, job.NovelID)
	if err != nil {
		t.Fatal(err)
	}
	if !novel.Ingested {
		t.Fatal("novel not flagged as ingested")
	}
	if !strings.HasPrefix(novel.CoverURL, "https://cdn.test/rawNovels/") {
		t.Fatalf("cover url = %q", novel.CoverURL)
	}

	findings, err := ingest.NewAuditor(blobs, nil).Audit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Fatalf("audit after full run = %+v", findings)
	}
}

func TestPipelineRerunConverges(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	queue := testsupport.MustOpenStore(t, cfg)
	blobs, err := blobstore.NewFilesystem(cfg.Paths.BlobDir, "")
	if err != nil {
		t.Fatal(err)
	}

	fake := testsupport.NewFakeExtractor()
	fake.Add(testSource, *samplePayload())

	stages := ingest.NewStages(fake, blobs, cat, nil)

	first := testsupport.SubmitJob(t, queue, testSource)
	if err := runPipeline(t, stages, first); err != nil {
		t.Fatal(err)
	}
	second := testsupport.SubmitJob(t, queue, testSource)
	if err := runPipeline(t, stages, second); err != nil {
		t.Fatal(err)
	}

	if second.NovelID != first.NovelID {
		t.Fatalf("novel id drifted: %d vs %d", first.NovelID, second.NovelID)
	}

	ctx := context.Background()
	novels, err := cat.ListNovels(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(novels) != 1 {
		t.Fatalf("novel count = %d", len(novels))
	}
	count, err := cat.ChapterCount(ctx, first.NovelID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("chapter count = %d", count)
	}
}

func TestFetchFailureLeavesNoWrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	queue := testsupport.MustOpenStore(t, cfg)
	blobs, err := blobstore.NewFilesystem(cfg.Paths.BlobDir, "")
	if err != nil {
		t.Fatal(err)
	}

	fake := testsupport.NewFakeExtractor()
	fake.FailWith(testSource, services.Wrap(services.ErrSource, "fetch", "request", "site unreachable", nil))

	stages := ingest.NewStages(fake, blobs, cat, nil)
	job := testsupport.SubmitJob(t, queue, testSource)

	err = runPipeline(t, stages, job)
	if err == nil {
		t.Fatal("expected fetch failure")
	}
	if !errors.Is(err, services.ErrSource) {
		t.Fatalf("err = %v", err)
	}

	ctx := context.Background()
	slugs, err := blobs.ListNovelSlugs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 0 {
		t.Fatalf("artifacts written on fetch failure: %v", slugs)
	}
	novels, err := cat.ListNovels(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(novels) != 0 {
		t.Fatalf("catalog written on fetch failure: %d novels", len(novels))
	}
}

func TestPipelineNovelWithoutCover(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	queue := testsupport.MustOpenStore(t, cfg)
	blobs, err := blobstore.NewFilesystem(cfg.Paths.BlobDir, "")
	if err != nil {
		t.Fatal(err)
	}

	fake := testsupport.NewFakeExtractor()
	fake.Add(testSource, *samplePayload())

	stages := ingest.NewStages(fake, blobs, cat, nil)
	job := testsupport.SubmitJob(t, queue, testSource)
	if err := runPipeline(t, stages, job); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	findings, err := ingest.NewAuditor(blobs, nil).Audit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 || !findings[0].MissingCover || findings[0].MissingMetadata {
		t.Fatalf("findings = %+v", findings)
	}

	ch, err := cat.GetChapter(ctx, job.NovelID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ch.CleanText == "" {
		t.Fatal("clean text not populated")
	}
	if ch.WordCount == 0 {
		t.Fatal("word count not populated")
	}
}
