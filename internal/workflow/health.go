package workflow

import (
	"context"

	"quill/internal/jobs"
	"quill/internal/stage"
)

// Health is a point-in-time snapshot of the workflow and its stages.
type Health struct {
	Running bool
	Stages  []stage.Health
	Queue   jobs.HealthSummary
}

// Ready reports whether every stage passed its health check.
func (h Health) Ready() bool {
	for _, s := range h.Stages {
		if !s.Ready {
			return false
		}
	}
	return true
}

// Health gathers stage health checks and queue counts.
func (m *Manager) Health(ctx context.Context) (Health, error) {
	summary, err := m.store.Health(ctx)
	if err != nil {
		return Health{}, err
	}
	return Health{
		Running: m.Running(),
		Stages: []stage.Health{
			m.stages.Fetch.HealthCheck(ctx),
			m.stages.Store.HealthCheck(ctx),
			m.stages.Import.HealthCheck(ctx),
		},
		Queue: summary,
	}, nil
}
