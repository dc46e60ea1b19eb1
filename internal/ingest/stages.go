package ingest

import (
	"log/slog"

	"quill/internal/blobstore"
	"quill/internal/catalog"
	"quill/internal/extractor"
	"quill/internal/jobs"
	"quill/internal/logging"
	"quill/internal/stage"
)

// Stages holds one handler per processing status, in execution order.
type Stages struct {
	Fetch  stage.Handler
	Store  stage.Handler
	Import stage.Handler
}

// NewStages wires the three ingestion stages over shared collaborators. The
// stages hand the extraction payload to each other through an in-memory
// cache keyed by job ID.
func NewStages(ext extractor.Extractor, blobs blobstore.Store, cat *catalog.Store, logger *slog.Logger) Stages {
	if logger == nil {
		logger = logging.NewNop()
	}
	cache := newRunCache()
	reconciler := NewReconciler(cat, logger)
	return Stages{
		Fetch: &FetchStage{
			extractor: ext,
			cache:     cache,
			logger:    logging.NewComponentLogger(logger, "fetch"),
		},
		Store: &StoreStage{
			blobs:      blobs,
			reconciler: reconciler,
			cache:      cache,
			logger:     logging.NewComponentLogger(logger, "store"),
		},
		Import: &ImportStage{
			blobs:      blobs,
			reconciler: reconciler,
			cache:      cache,
			logger:     logging.NewComponentLogger(logger, "import"),
		},
	}
}

// ForStatus returns the handler responsible for the given processing status.
func (s Stages) ForStatus(status jobs.Status) (stage.Handler, bool) {
	switch status {
	case jobs.StatusFetching:
		return s.Fetch, true
	case jobs.StatusStoring:
		return s.Store, true
	case jobs.StatusImporting:
		return s.Import, true
	default:
		return nil, false
	}
}
