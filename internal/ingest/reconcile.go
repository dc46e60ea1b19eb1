package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"quill/internal/catalog"
	"quill/internal/extractor"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/textclean"
)

// Reconciler folds an extraction payload into the relational catalog without
// creating duplicates across repeated or partially-failed runs.
type Reconciler struct {
	catalog *catalog.Store
	logger  *slog.Logger
}

// NewReconciler wires a reconciler over the catalog store.
func NewReconciler(store *catalog.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{catalog: store, logger: logging.NewComponentLogger(logger, "reconciler")}
}

// Result summarizes one reconciliation pass.
type Result struct {
	NovelID          int64
	Slug             string
	Created          bool
	ChaptersUpserted int
	ChaptersCreated  int
}

// TitlesMatch reports whether two titles identify the same novel. Matching is
// deliberately loose: after case-folding and trimming, either title being a
// substring of the other counts, which absorbs source-site drift like trailing
// punctuation or appended subtitles. False positives are possible; callers
// with a source URL should prefer that discriminant first.
func TitlesMatch(a, b string) bool {
	na := catalog.NormalizeTitle(a)
	nb := catalog.NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// FilterNew classifies candidate titles against the existing catalog titles,
// returning only the candidates no existing title matches. It uses the same
// loose pairwise match as Reconcile so a pre-ingestion triage agrees with what
// ingestion itself would decide. Pure: no catalog access, no side effects.
func FilterNew(candidates, existingTitles []string) []string {
	fresh := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		known := false
		for _, existing := range existingTitles {
			if TitlesMatch(candidate, existing) {
				known = true
				break
			}
		}
		if !known {
			fresh = append(fresh, candidate)
		}
	}
	return fresh
}

// Reconcile matches the payload against the catalog, creating or updating the
// novel record and upserting every chapter. Replaying the same payload any
// number of times converges on the same catalog rows.
func (r *Reconciler) Reconcile(ctx context.Context, sourceURL string, payload *extractor.NovelPayload, coverURL string) (Result, error) {
	if payload == nil {
		return Result{}, services.Wrap(services.ErrValidation, "import", "reconcile", "extraction payload is required", nil)
	}

	novel, created, err := r.resolveNovel(ctx, sourceURL, payload, coverURL)
	if err != nil {
		return Result{}, err
	}

	res := Result{NovelID: novel.ID, Slug: novel.Slug, Created: created}
	for _, ch := range payload.Chapters {
		cleaned := textclean.Clean(ch.RawText)
		chapter := &catalog.Chapter{
			NovelID:   novel.ID,
			Number:    ch.Number,
			Title:     ch.Title,
			RawText:   ch.RawText,
			CleanText: cleaned.Text,
		}
		wasCreated, err := r.catalog.UpsertChapter(ctx, chapter)
		if err != nil {
			return res, services.Wrap(services.ErrStorage, "import", "upsert chapter",
				fmt.Sprintf("chapter %d of %s", ch.Number, novel.Slug), err)
		}
		res.ChaptersUpserted++
		if wasCreated {
			res.ChaptersCreated++
		}
		if cleaned.Outcome == textclean.OutcomeEmptied {
			r.logger.WarnContext(ctx, "normalizer would empty chapter; kept original",
				logging.String(logging.FieldNovelSlug, novel.Slug),
				logging.Int("chapter", ch.Number))
		}
	}

	r.logger.InfoContext(ctx, "catalog reconciled",
		logging.String(logging.FieldNovelSlug, novel.Slug),
		logging.Bool("created", created),
		logging.Int("chaptersUpserted", res.ChaptersUpserted),
		logging.Int("chaptersCreated", res.ChaptersCreated))
	return res, nil
}

// PinNovel resolves (or creates) the catalog record the payload belongs to,
// fixing its slug before any artifacts are written. The storing stage calls
// this so artifact keys and the eventual chapter rows agree on ownership.
func (r *Reconciler) PinNovel(ctx context.Context, sourceURL string, payload *extractor.NovelPayload, coverURL string) (*catalog.Novel, bool, error) {
	return r.resolveNovel(ctx, sourceURL, payload, coverURL)
}

// resolveNovel finds the catalog record the payload belongs to, creating one
// when nothing matches. Source URL is checked before the loose title match so
// a stable external key always wins.
func (r *Reconciler) resolveNovel(ctx context.Context, sourceURL string, payload *extractor.NovelPayload, coverURL string) (*catalog.Novel, bool, error) {
	if existing, err := r.catalog.FindBySourceURL(ctx, sourceURL); err != nil {
		return nil, false, services.Wrap(services.ErrStorage, "import", "find novel", "lookup by source URL", err)
	} else if existing != nil {
		return r.refreshNovel(ctx, existing, payload, coverURL, sourceURL)
	}

	titles, err := r.catalog.ListTitles(ctx)
	if err != nil {
		return nil, false, services.Wrap(services.ErrStorage, "import", "find novel", "list catalog titles", err)
	}
	for _, entry := range titles {
		if TitlesMatch(entry.Title, payload.Title) {
			existing, err := r.catalog.GetNovel(ctx, entry.ID)
			if err != nil {
				return nil, false, services.Wrap(services.ErrStorage, "import", "find novel", "load matched novel", err)
			}
			r.logger.InfoContext(ctx, "matched existing novel by title",
				logging.String(logging.FieldNovelSlug, existing.Slug),
				logging.String("incomingTitle", payload.Title))
			return r.refreshNovel(ctx, existing, payload, coverURL, sourceURL)
		}
	}

	slug, err := r.catalog.NextAvailableSlug(ctx, catalog.Slugify(payload.Title))
	if err != nil {
		return nil, false, services.Wrap(services.ErrStorage, "import", "create novel", "derive slug", err)
	}
	novel := &catalog.Novel{
		Title:     payload.Title,
		Slug:      slug,
		Author:    payload.Author,
		Synopsis:  payload.Synopsis,
		CoverURL:  coverURL,
		SourceURL: sourceURL,
		Status:    catalog.ParseNovelStatus(payload.Status),
		Language:  payload.Language,
		Ingested:  true,
	}
	if err := r.catalog.CreateNovel(ctx, novel); err != nil {
		return nil, false, services.Wrap(services.ErrStorage, "import", "create novel", payload.Title, err)
	}
	return novel, true, nil
}

// refreshNovel updates mutable metadata on a matched record. The slug never
// changes once assigned; chapter ownership stays stable across re-ingestion.
func (r *Reconciler) refreshNovel(ctx context.Context, novel *catalog.Novel, payload *extractor.NovelPayload, coverURL, sourceURL string) (*catalog.Novel, bool, error) {
	novel.Author = payload.Author
	novel.Synopsis = payload.Synopsis
	if coverURL != "" {
		novel.CoverURL = coverURL
	}
	if novel.SourceURL == "" {
		novel.SourceURL = sourceURL
	}
	if status := catalog.ParseNovelStatus(payload.Status); status != catalog.NovelUnknown {
		novel.Status = status
	}
	if payload.Language != "" {
		novel.Language = payload.Language
	}
	novel.Ingested = true
	if err := r.catalog.UpdateNovel(ctx, novel); err != nil {
		return nil, false, services.Wrap(services.ErrStorage, "import", "update novel", novel.Slug, err)
	}
	return novel, false, nil
}
