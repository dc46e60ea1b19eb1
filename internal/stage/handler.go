package stage

import (
	"context"

	"quill/internal/jobs"
)

// Handler describes the contract the workflow manager needs from each
// ingestion stage. Prepare runs before the stage's status transition is
// persisted; Execute performs the work and mutates the job in place.
type Handler interface {
	Prepare(context.Context, *jobs.Job) error
	Execute(context.Context, *jobs.Job) error
	HealthCheck(context.Context) Health
}
