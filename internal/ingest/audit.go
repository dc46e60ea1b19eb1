package ingest

import (
	"context"
	"log/slog"

	"quill/internal/blobstore"
	"quill/internal/catalog"
	"quill/internal/jobs"
	"quill/internal/logging"
)

// Finding reports a novel namespace missing one or both required artifacts.
type Finding struct {
	Slug            string `json:"slug"`
	MissingMetadata bool   `json:"missingMetadata"`
	MissingCover    bool   `json:"missingCover"`
}

// Auditor sweeps the object store verifying every ingested novel has both a
// metadata document and a cover image. It is read-only: findings are data,
// not failures.
type Auditor struct {
	blobs  blobstore.Store
	logger *slog.Logger
}

// NewAuditor builds an auditor over the blob store.
func NewAuditor(blobs blobstore.Store, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Auditor{blobs: blobs, logger: logging.NewComponentLogger(logger, "audit")}
}

// Audit enumerates every novel namespace and checks artifact existence.
// Only namespaces missing something appear in the result.
func (a *Auditor) Audit(ctx context.Context) ([]Finding, error) {
	slugs, err := a.blobs.ListNovelSlugs(ctx)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for _, slug := range slugs {
		hasMetadata, err := a.blobs.Exists(ctx, blobstore.MetadataKey(slug))
		if err != nil {
			return nil, err
		}
		hasCover, err := a.blobs.Exists(ctx, blobstore.CoverKey(slug))
		if err != nil {
			return nil, err
		}
		if hasMetadata && hasCover {
			continue
		}
		findings = append(findings, Finding{
			Slug:            slug,
			MissingMetadata: !hasMetadata,
			MissingCover:    !hasCover,
		})
	}

	a.logger.InfoContext(ctx, "completeness audit finished",
		logging.Int("novels", len(slugs)),
		logging.Int("findings", len(findings)))
	return findings, nil
}

// Repair submits a fresh ingestion job for every finding whose novel has a
// known source URL. Novels without one are skipped and reported back; they
// need manual attention.
func (a *Auditor) Repair(ctx context.Context, findings []Finding, cat *catalog.Store, queue *jobs.Store) (submitted []*jobs.Job, skipped []string, err error) {
	for _, finding := range findings {
		novel, err := cat.FindBySlug(ctx, finding.Slug)
		if err != nil {
			return submitted, skipped, err
		}
		if novel == nil || novel.SourceURL == "" {
			skipped = append(skipped, finding.Slug)
			continue
		}
		job, err := queue.Submit(ctx, novel.SourceURL)
		if err != nil {
			return submitted, skipped, err
		}
		a.logger.InfoContext(ctx, "repair job submitted",
			logging.String(logging.FieldNovelSlug, finding.Slug),
			logging.Int64(logging.FieldJobID, job.ID))
		submitted = append(submitted, job)
	}
	return submitted, skipped, nil
}
