package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"quill/internal/blobstore"
	"quill/internal/jobs"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/stage"
)

// StoreStage pins the novel's catalog identity and writes the raw artifacts:
// metadata document, cover image, and per-chapter text. All keys derive from
// the pinned slug, so a re-run of the same source overwrites in place.
type StoreStage struct {
	blobs      blobstore.Store
	reconciler *Reconciler
	cache      *runCache
	logger     *slog.Logger
}

// storedMetadata is the metadata.json document shape. Deliberately free of
// timestamps so identical source content produces identical bytes.
type storedMetadata struct {
	Title     string              `json:"title"`
	Author    string              `json:"author,omitempty"`
	Synopsis  string              `json:"synopsis,omitempty"`
	Status    string              `json:"status,omitempty"`
	Language  string              `json:"language,omitempty"`
	SourceURL string              `json:"sourceUrl"`
	Chapters  []storedChapterMeta `json:"chapters"`
}

type storedChapterMeta struct {
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
}

func (s *StoreStage) Prepare(ctx context.Context, job *jobs.Job) error {
	if _, ok := s.cache.get(job.ID); !ok {
		return services.Wrap(services.ErrValidation, "store", "prepare",
			"no fetched payload for this job; submit a new job to retry", nil)
	}
	return nil
}

func (s *StoreStage) Execute(ctx context.Context, job *jobs.Job) error {
	run, ok := s.cache.get(job.ID)
	if !ok {
		return services.Wrap(services.ErrValidation, "store", "execute",
			"no fetched payload for this job; submit a new job to retry", nil)
	}
	payload := run.payload

	novel, created, err := s.reconciler.PinNovel(ctx, job.SourceURL, payload, "")
	if err != nil {
		return err
	}
	job.NovelID = novel.ID
	job.NovelSlug = novel.Slug
	run.created = created

	job.SetProgress("store", fmt.Sprintf("storing artifacts for %s", novel.Slug))

	doc := storedMetadata{
		Title:     payload.Title,
		Author:    payload.Author,
		Synopsis:  payload.Synopsis,
		Status:    payload.Status,
		Language:  payload.Language,
		SourceURL: job.SourceURL,
		Chapters:  make([]storedChapterMeta, 0, len(payload.Chapters)),
	}
	for _, ch := range payload.Chapters {
		doc.Chapters = append(doc.Chapters, storedChapterMeta{Number: ch.Number, Title: ch.Title})
	}
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrStorage, "store", "encode metadata", novel.Slug, err)
	}
	if err := s.blobs.Put(ctx, blobstore.MetadataKey(novel.Slug), encoded, "application/json"); err != nil {
		return err
	}

	if len(run.cover) > 0 {
		contentType := run.coverType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		if err := s.blobs.Put(ctx, blobstore.CoverKey(novel.Slug), run.cover, contentType); err != nil {
			return err
		}
	}

	for _, ch := range payload.Chapters {
		key := blobstore.ChapterKey(novel.Slug, ch.Number)
		if err := s.blobs.Put(ctx, key, []byte(ch.RawText), "text/plain; charset=utf-8"); err != nil {
			return err
		}
	}

	job.SetProgress("store", fmt.Sprintf("stored %d chapter artifacts", len(payload.Chapters)))
	s.logger.InfoContext(ctx, "artifacts stored",
		logging.String(logging.FieldNovelSlug, novel.Slug),
		logging.Int("chapters", len(payload.Chapters)),
		logging.Bool("coverStored", len(run.cover) > 0))
	return nil
}

func (s *StoreStage) HealthCheck(ctx context.Context) stage.Health {
	if s.blobs == nil {
		return stage.Unhealthy("store", "no blob store configured")
	}
	return stage.Healthy("store")
}
