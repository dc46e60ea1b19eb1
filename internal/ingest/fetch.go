package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"quill/internal/extractor"
	"quill/internal/jobs"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/stage"
)

// FetchStage pulls the novel payload and cover image from the source
// extractor. It performs no writes; a failure here leaves storage and the
// catalog untouched.
type FetchStage struct {
	extractor extractor.Extractor
	cache     *runCache
	logger    *slog.Logger
}

func (f *FetchStage) Prepare(ctx context.Context, job *jobs.Job) error {
	if strings.TrimSpace(job.SourceURL) == "" {
		return services.Wrap(services.ErrValidation, "fetch", "prepare", "job has no source URL", nil)
	}
	return nil
}

func (f *FetchStage) Execute(ctx context.Context, job *jobs.Job) error {
	job.SetProgress("fetch", "contacting source extractor")

	payload, err := f.extractor.Fetch(ctx, job.SourceURL)
	if err != nil {
		return err
	}

	result := &fetched{payload: payload}
	if strings.TrimSpace(payload.CoverURL) != "" {
		cover, contentType, err := f.extractor.FetchCover(ctx, payload.CoverURL)
		if err != nil {
			return err
		}
		result.cover = cover
		result.coverType = contentType
	}

	f.cache.put(job.ID, result)
	job.SetProgress("fetch", fmt.Sprintf("fetched %q with %d chapters", payload.Title, len(payload.Chapters)))
	f.logger.InfoContext(ctx, "source fetched",
		logging.String(logging.FieldSourceURL, job.SourceURL),
		logging.String("title", payload.Title),
		logging.Int("chapters", len(payload.Chapters)),
		logging.Bool("hasCover", len(result.cover) > 0))
	return nil
}

func (f *FetchStage) HealthCheck(ctx context.Context) stage.Health {
	if f.extractor == nil {
		return stage.Unhealthy("fetch", "no extractor configured")
	}
	return stage.Healthy("fetch")
}
