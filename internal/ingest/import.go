package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/blobstore"
	"quill/internal/jobs"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/stage"
)

// ImportStage reconciles the fetched payload into the relational catalog.
// It runs only after every artifact was stored, so a chapter row never
// references an artifact that was not written.
type ImportStage struct {
	blobs      blobstore.Store
	reconciler *Reconciler
	cache      *runCache
	logger     *slog.Logger
}

func (i *ImportStage) Prepare(ctx context.Context, job *jobs.Job) error {
	if _, ok := i.cache.get(job.ID); !ok {
		return services.Wrap(services.ErrValidation, "import", "prepare",
			"no fetched payload for this job; submit a new job to retry", nil)
	}
	return nil
}

func (i *ImportStage) Execute(ctx context.Context, job *jobs.Job) error {
	run, ok := i.cache.get(job.ID)
	if !ok {
		return services.Wrap(services.ErrValidation, "import", "execute",
			"no fetched payload for this job; submit a new job to retry", nil)
	}

	job.SetProgress("import", "reconciling catalog")

	coverURL := ""
	if len(run.cover) > 0 {
		coverURL = i.blobs.PublicURL(blobstore.CoverKey(job.NovelSlug))
	}

	res, err := i.reconciler.Reconcile(ctx, job.SourceURL, run.payload, coverURL)
	if err != nil {
		return err
	}

	job.NovelID = res.NovelID
	job.NovelSlug = res.Slug
	job.ChaptersImported = res.ChaptersUpserted
	job.SetProgress("import", fmt.Sprintf("imported %d chapters (%d new)", res.ChaptersUpserted, res.ChaptersCreated))

	i.logger.InfoContext(ctx, "import complete",
		logging.String(logging.FieldNovelSlug, res.Slug),
		logging.Bool("novelCreated", run.created),
		logging.Int("chaptersImported", res.ChaptersUpserted))

	i.cache.drop(job.ID)
	return nil
}

func (i *ImportStage) HealthCheck(ctx context.Context) stage.Health {
	if i.reconciler == nil {
		return stage.Unhealthy("import", "no reconciler configured")
	}
	return stage.Healthy("import")
}
