package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an ingestion job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFetching  Status = "fetching"
	StatusStoring   Status = "storing"
	StatusImporting Status = "importing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// DaemonStopReason is the error message set when in-flight jobs are failed
// because the daemon stopped mid-run. A fresh job is the retry vehicle.
const DaemonStopReason = "daemon stopped mid-run; submit a new job to retry"

var allStatuses = []Status{
	StatusPending,
	StatusFetching,
	StatusStoring,
	StatusImporting,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusFetching:  {},
	StatusStoring:   {},
	StatusImporting: {},
}

// statusRank orders statuses so transitions can be checked for monotonicity.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusFetching:  1,
	StatusStoring:   2,
	StatusImporting: 3,
	StatusCompleted: 4,
	StatusFailed:    4,
}

// Job represents one ingestion run persisted in SQLite.
type Job struct {
	ID               int64
	SourceURL        string
	Status           Status
	ErrorMessage     string
	NovelID          int64
	NovelSlug        string
	ChaptersImported int
	ProgressStage    string
	ProgressMessage  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	return IsProcessingStatus(j.Status)
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
}

// CanTransition reports whether moving from one status to another respects the
// monotonic state machine. Any non-terminal status may move to failed.
func CanTransition(from, to Status) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StatusFailed {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressStage = "failed"
	j.ProgressMessage = message
}

// SetProgress updates the progress fields together.
func (j *Job) SetProgress(stage, message string) {
	j.ProgressStage = stage
	j.ProgressMessage = message
}
