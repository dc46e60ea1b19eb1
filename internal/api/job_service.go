package api

import (
	"context"
	"net/url"
	"strings"

	"quill/internal/jobs"
	"quill/internal/services"
)

// JobStore abstracts job persistence interactions needed by the service.
type JobStore interface {
	Submit(ctx context.Context, sourceURL string) (*jobs.Job, error)
	List(ctx context.Context, statuses ...jobs.Status) ([]*jobs.Job, error)
	Stats(ctx context.Context) (map[jobs.Status]int, error)
	GetByID(ctx context.Context, id int64) (*jobs.Job, error)
}

// JobService exposes job operations returning API DTOs. It is shared by the
// daemon's HTTP surface and the CLI.
type JobService struct {
	store JobStore
}

// NewJobService constructs a JobService around the provided store.
func NewJobService(store JobStore) *JobService {
	if store == nil {
		return nil
	}
	return &JobService{store: store}
}

// Submit validates the source reference and enqueues a new pending job.
// Submission is fire-and-forget: the returned job carries the identifier to
// poll for status.
func (s *JobService) Submit(ctx context.Context, sourceURL string) (Job, error) {
	if s == nil || s.store == nil {
		return Job{}, services.Wrap(services.ErrConfiguration, "api", "submit", "job service unavailable", nil)
	}
	trimmed := strings.TrimSpace(sourceURL)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Job{}, services.Wrap(services.ErrValidation, "api", "submit", "source must be an absolute URL", err)
	}
	job, err := s.store.Submit(ctx, trimmed)
	if err != nil {
		return Job{}, err
	}
	return FromJob(job), nil
}

// List returns jobs filtered by status.
func (s *JobService) List(ctx context.Context, statuses ...jobs.Status) ([]Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	list, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(list), nil
}

// Stats returns job counts keyed by status string.
func (s *JobService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeJobStats(stats), nil
}

// Describe fetches a single job, or nil when it does not exist.
func (s *JobService) Describe(ctx context.Context, id int64) (*Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetByID(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	dto := FromJob(job)
	return &dto, nil
}
