package ingest_test

import (
	"context"
	"testing"

	"quill/internal/catalog"
	"quill/internal/extractor"
	"quill/internal/ingest"
	"quill/internal/testsupport"
)

func samplePayload() *extractor.NovelPayload {
	return &extractor.NovelPayload{
		Title:    "The Green Tea Lady",
		Author:   "Anon",
		Synopsis: "A story about tea.",
		Status:   "ongoing",
		Chapters: []extractor.ChapterPayload{
			{Number: 1, Title: "One", RawText: "First chapter text."},
			{Number: 2, Title: "Two", RawText: "Second chapter text."},
		},
	}
}

func TestReconcileCreatesNovelAndChapters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	rec := ingest.NewReconciler(store, nil)
	ctx := context.Background()

	res, err := rec.Reconcile(ctx, "https://source.test/novel/1", samplePayload(), "")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !res.Created {
		t.Fatal("expected novel creation")
	}
	if res.Slug != "the-green-tea-lady" {
		t.Fatalf("slug = %q", res.Slug)
	}
	if res.ChaptersUpserted != 2 || res.ChaptersCreated != 2 {
		t.Fatalf("chapters = %+v", res)
	}

	count, err := store.ChapterCount(ctx, res.NovelID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("chapter count = %d", count)
	}
}

func TestReconcileReplayConverges(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	rec := ingest.NewReconciler(store, nil)
	ctx := context.Background()

	first, err := rec.Reconcile(ctx, "https://source.test/novel/1", samplePayload(), "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := rec.Reconcile(ctx, "https://source.test/novel/1", samplePayload(), "")
	if err != nil {
		t.Fatal(err)
	}
	if second.Created {
		t.Fatal("replay created a duplicate novel")
	}
	if second.NovelID != first.NovelID {
		t.Fatalf("novel id changed: %d vs %d", first.NovelID, second.NovelID)
	}
	if second.ChaptersCreated != 0 {
		t.Fatalf("replay created %d chapters", second.ChaptersCreated)
	}

	novels, err := store.ListNovels(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(novels) != 1 {
		t.Fatalf("novel count = %d", len(novels))
	}
	count, err := store.ChapterCount(ctx, first.NovelID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("chapter count = %d", count)
	}
}

func TestReconcileMatchesTitleDrift(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	rec := ingest.NewReconciler(store, nil)
	ctx := context.Background()

	existing := &catalog.Novel{Title: "Green Tea Lady", Slug: "green-tea-lady"}
	if err := store.CreateNovel(ctx, existing); err != nil {
		t.Fatal(err)
	}

	res, err := rec.Reconcile(ctx, "https://other.test/novel/9", samplePayload(), "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Created {
		t.Fatal("expected loose title match, got new novel")
	}
	if res.NovelID != existing.ID {
		t.Fatalf("matched id = %d, want %d", res.NovelID, existing.ID)
	}
	if res.Slug != "green-tea-lady" {
		t.Fatalf("slug = %q, must not change on match", res.Slug)
	}
}

func TestReconcileSourceURLWinsOverTitle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	rec := ingest.NewReconciler(store, nil)
	ctx := context.Background()

	bySource := &catalog.Novel{Title: "Completely Different", Slug: "completely-different", SourceURL: "https://source.test/novel/1"}
	if err := store.CreateNovel(ctx, bySource); err != nil {
		t.Fatal(err)
	}
	byTitle := &catalog.Novel{Title: "The Green Tea Lady", Slug: "the-green-tea-lady"}
	if err := store.CreateNovel(ctx, byTitle); err != nil {
		t.Fatal(err)
	}

	res, err := rec.Reconcile(ctx, "https://source.test/novel/1", samplePayload(), "")
	if err != nil {
		t.Fatal(err)
	}
	if res.NovelID != bySource.ID {
		t.Fatalf("matched id = %d, want source-url match %d", res.NovelID, bySource.ID)
	}
}

func TestReconcileChapterUpdateInPlace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	rec := ingest.NewReconciler(store, nil)
	ctx := context.Background()

	res, err := rec.Reconcile(ctx, "https://source.test/novel/1", samplePayload(), "")
	if err != nil {
		t.Fatal(err)
	}

	revised := samplePayload()
	revised.Chapters[1].Title = "Two, Revised"
	revised.Chapters[1].RawText = "Second chapter, corrected text."
	if _, err := rec.Reconcile(ctx, "https://source.test/novel/1", revised, ""); err != nil {
		t.Fatal(err)
	}

	ch, err := store.GetChapter(ctx, res.NovelID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Title != "Two, Revised" {
		t.Fatalf("title = %q", ch.Title)
	}
	if ch.RawText != "Second chapter, corrected text." {
		t.Fatalf("raw text = %q", ch.RawText)
	}
	count, err := store.ChapterCount(ctx, res.NovelID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("chapter count = %d, want update in place", count)
	}
}

func TestReconcileSlugDisambiguation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	rec := ingest.NewReconciler(store, nil)
	ctx := context.Background()

	taken := &catalog.Novel{Title: "zz unrelated", Slug: "rebirth"}
	if err := store.CreateNovel(ctx, taken); err != nil {
		t.Fatal(err)
	}

	payload := samplePayload()
	payload.Title = "Rebirth"
	res, err := rec.Reconcile(ctx, "https://source.test/novel/2", payload, "")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Created {
		t.Fatal("expected new novel; titles do not overlap")
	}
	if res.Slug != "rebirth-2" {
		t.Fatalf("slug = %q, want rebirth-2", res.Slug)
	}
}

func TestTitlesMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"The Green Tea Lady", "Green Tea Lady", true},
		{"green tea lady", "The Green Tea Lady!", true},
		{"  Green Tea Lady  ", "green tea lady", true},
		{"Green Tea Lady", "Red Wine Duke", false},
		{"", "Green Tea Lady", false},
	}
	for _, tc := range cases {
		if got := ingest.TitlesMatch(tc.a, tc.b); got != tc.want {
			t.Errorf("TitlesMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestFilterNewClassifiesCandidates(t *testing.T) {
	existing := []string{"The Green Tea Lady", "Red Wine Duke"}
	candidates := []string{
		"Green Tea Lady",        // substring of an existing title
		"Red Wine Duke: Sequel", // existing title is a substring of it
		"Iron Orchid",
		"Moonlit Forge",
	}

	fresh := ingest.FilterNew(candidates, existing)
	want := []string{"Iron Orchid", "Moonlit Forge"}
	if len(fresh) != len(want) {
		t.Fatalf("FilterNew returned %v, want %v", fresh, want)
	}
	for i, title := range want {
		if fresh[i] != title {
			t.Fatalf("FilterNew returned %v, want %v", fresh, want)
		}
	}
}

func TestFilterNewEmptyCatalogKeepsAll(t *testing.T) {
	candidates := []string{"Iron Orchid", "Moonlit Forge"}
	fresh := ingest.FilterNew(candidates, nil)
	if len(fresh) != len(candidates) {
		t.Fatalf("expected all candidates kept, got %v", fresh)
	}
}
