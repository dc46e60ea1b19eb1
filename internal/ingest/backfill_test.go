package ingest_test

import (
	"context"
	"testing"

	"quill/internal/catalog"
	"quill/internal/ingest"
	"quill/internal/testsupport"
)

func TestBackfillCleansStaleText(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	novel := &catalog.Novel{Title: "Backfill Target", Slug: "backfill-target"}
	if err := cat.CreateNovel(ctx, novel); err != nil {
		t.Fatal(err)
	}
	// clean_text predates the current pattern set: spam still embedded
	stale := &catalog.Chapter{
		NovelID:   novel.ID,
		Number:    1,
		Title:     "One",
		RawText:   "The door opened.\nPlease visit freewebnovel for more!",
		CleanText: "The door opened.\nPlease visit freewebnovel for more!",
	}
	if _, err := cat.UpsertChapter(ctx, stale); err != nil {
		t.Fatal(err)
	}
	clean := &catalog.Chapter{
		NovelID:   novel.ID,
		Number:    2,
		Title:     "Two",
		RawText:   "Nothing to strip here.",
		CleanText: "Nothing to strip here.",
	}
	if _, err := cat.UpsertChapter(ctx, clean); err != nil {
		t.Fatal(err)
	}

	res, err := ingest.BackfillCleanText(ctx, cat, nil)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if res.ChaptersScanned != 2 {
		t.Fatalf("scanned = %d", res.ChaptersScanned)
	}
	if res.ChaptersUpdated != 1 {
		t.Fatalf("updated = %d", res.ChaptersUpdated)
	}

	ch, err := cat.GetChapter(ctx, novel.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ch.CleanText != "The door opened." {
		t.Fatalf("clean text = %q", ch.CleanText)
	}

	// second pass is a no-op
	res, err = ingest.BackfillCleanText(ctx, cat, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.ChaptersUpdated != 0 {
		t.Fatalf("second pass updated = %d", res.ChaptersUpdated)
	}
}
