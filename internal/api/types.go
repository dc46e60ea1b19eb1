package api

import (
	"time"

	"quill/internal/jobs"
)

// Job describes an ingestion job in a transport-friendly format shared by the
// HTTP API and the CLI tables.
type Job struct {
	ID               int64  `json:"id"`
	SourceURL        string `json:"sourceUrl"`
	Status           string `json:"status"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
	NovelID          int64  `json:"novelId,omitempty"`
	NovelSlug        string `json:"novelSlug,omitempty"`
	ChaptersImported int    `json:"chaptersImported"`
	ProgressStage    string `json:"progressStage,omitempty"`
	ProgressMessage  string `json:"progressMessage,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus summarizes daemon runtime state for status queries.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	JobStats     map[string]int `json:"jobStats"`
	StageHealth  []StageHealth  `json:"stageHealth"`
	LastError    string         `json:"lastError,omitempty"`
	JobDBPath    string         `json:"jobDbPath,omitempty"`
	LockFilePath string         `json:"lockFilePath,omitempty"`
}

// AuditFinding is one incomplete novel namespace in the audit report.
type AuditFinding struct {
	Slug            string `json:"slug"`
	MissingMetadata bool   `json:"missingMetadata"`
	MissingCover    bool   `json:"missingCover"`
}

// FromJob converts a stored job into its API form.
func FromJob(job *jobs.Job) Job {
	if job == nil {
		return Job{}
	}
	return Job{
		ID:               job.ID,
		SourceURL:        job.SourceURL,
		Status:           string(job.Status),
		ErrorMessage:     job.ErrorMessage,
		NovelID:          job.NovelID,
		NovelSlug:        job.NovelSlug,
		ChaptersImported: job.ChaptersImported,
		ProgressStage:    job.ProgressStage,
		ProgressMessage:  job.ProgressMessage,
		CreatedAt:        formatTime(job.CreatedAt),
		UpdatedAt:        formatTime(job.UpdatedAt),
	}
}

// FromJobs converts a job slice, preserving order.
func FromJobs(list []*jobs.Job) []Job {
	out := make([]Job, 0, len(list))
	for _, job := range list {
		out = append(out, FromJob(job))
	}
	return out
}

// MergeJobStats flattens status counts into string keys with zero defaults
// for every known status.
func MergeJobStats(stats map[jobs.Status]int) map[string]int {
	merged := make(map[string]int, len(jobs.AllStatuses()))
	for _, status := range jobs.AllStatuses() {
		merged[string(status)] = stats[status]
	}
	return merged
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
