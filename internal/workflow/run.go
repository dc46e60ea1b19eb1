package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quill/internal/jobs"
	"quill/internal/logging"
	"quill/internal/services"
)

// stageOrder maps each processing status to its successor.
var stageOrder = map[jobs.Status]jobs.Status{
	jobs.StatusFetching:  jobs.StatusStoring,
	jobs.StatusStoring:   jobs.StatusImporting,
	jobs.StatusImporting: jobs.StatusCompleted,
}

func (m *Manager) runWorker(ctx context.Context, id int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.NextPending(ctx)
		if err != nil {
			m.setLastError(err)
			logger.Error("failed to fetch next pending job",
				logging.Error(err),
				logging.String(logging.FieldEventType, "job_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check job database access"))
			m.waitOrShutdown(ctx, time.Duration(m.cfg.Workflow.ErrorRetryInterval)*time.Second)
			continue
		}
		if job == nil {
			m.waitOrShutdown(ctx, m.pollInterval)
			continue
		}

		// Another worker may grab the same pending row; the claim is the
		// arbiter. Losing the race is routine, not an error.
		claimed, err := m.store.Claim(ctx, job.ID)
		if err != nil {
			m.setLastError(err)
			logger.Error("failed to claim job", logging.Int64(logging.FieldJobID, job.ID), logging.Error(err))
			m.waitOrShutdown(ctx, time.Duration(m.cfg.Workflow.ErrorRetryInterval)*time.Second)
			continue
		}
		if !claimed {
			continue
		}
		job.Status = jobs.StatusFetching

		if err := m.runJob(ctx, logger, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

// runJob advances one claimed job through every remaining stage. The status
// transition is persisted before the stage executes, so a crash leaves the
// job observable at its last-entered stage rather than stuck pending.
func (m *Manager) runJob(ctx context.Context, logger *slog.Logger, job *jobs.Job) error {
	jobCtx := services.WithJobID(ctx, job.ID)
	jobCtx = services.WithRequestID(jobCtx, uuid.NewString())

	for {
		handler, ok := m.stages.ForStatus(job.Status)
		if !ok {
			err := errors.New("no stage handler for status " + string(job.Status))
			m.recordFailure(jobCtx, logger, job, err)
			return err
		}

		stageCtx := services.WithStage(jobCtx, string(job.Status))
		stageLogger := logging.WithContext(stageCtx, logger)
		stageLogger.Info("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.String(logging.FieldSourceURL, job.SourceURL))

		start := time.Now()
		if err := handler.Prepare(stageCtx, job); err != nil {
			m.recordFailure(stageCtx, stageLogger, job, err)
			return err
		}
		if err := handler.Execute(stageCtx, job); err != nil {
			m.recordFailure(stageCtx, stageLogger, job, err)
			return err
		}
		stageLogger.Info("stage finished",
			logging.String(logging.FieldEventType, "stage_finish"),
			logging.Duration("elapsed", time.Since(start)))

		next := stageOrder[job.Status]
		if err := m.store.Transition(stageCtx, job, next); err != nil {
			m.recordFailure(stageCtx, stageLogger, job, err)
			return err
		}
		if next == jobs.StatusCompleted {
			stageLogger.Info("job completed",
				logging.String(logging.FieldEventType, "job_completed"),
				logging.String(logging.FieldNovelSlug, job.NovelSlug),
				logging.Int("chaptersImported", job.ChaptersImported))
			return nil
		}
	}
}

// recordFailure marks the job failed and persists the error message. Stage
// errors never escape to the process; they live on the job row.
func (m *Manager) recordFailure(ctx context.Context, logger *slog.Logger, job *jobs.Job, cause error) {
	m.setLastError(cause)
	job.SetFailed(cause.Error())
	if err := m.store.Update(ctx, job); err != nil {
		logger.Error("failed to persist job failure",
			logging.Error(err),
			logging.Int64(logging.FieldJobID, job.ID))
		return
	}
	logger.Error("job failed",
		logging.String(logging.FieldEventType, "job_failed"),
		logging.String("kind", services.Kind(cause)),
		logging.Error(cause))
}

func (m *Manager) waitOrShutdown(ctx context.Context, wait time.Duration) {
	if wait <= 0 {
		wait = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
