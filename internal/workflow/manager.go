package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"quill/internal/config"
	"quill/internal/ingest"
	"quill/internal/jobs"
	"quill/internal/logging"
)

// Manager drives ingestion jobs through their state machine using a small
// worker pool. Each job runs its stages strictly in order on one worker;
// jobs run concurrently with each other.
type Manager struct {
	cfg          *config.Config
	store        *jobs.Store
	stages       ingest.Stages
	logger       *slog.Logger
	pollInterval time.Duration
	workerCount  int

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager over the job store and stage set.
func NewManager(cfg *config.Config, store *jobs.Store, stages ingest.Stages, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	pollInterval := time.Duration(cfg.Workflow.JobPollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	workerCount := cfg.Workflow.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		stages:       stages,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: pollInterval,
		workerCount:  workerCount,
	}
}

// Start fails any jobs left mid-run by a previous process, then launches the
// worker pool. Returns immediately; workers run until Stop or ctx cancel.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}

	failed, err := m.store.FailStaleProcessing(ctx, jobs.DaemonStopReason)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if failed > 0 {
		m.logger.Warn("failed stale processing jobs from previous run",
			logging.Int64("count", failed),
			logging.String(logging.FieldErrorHint, "submit new jobs to retry"))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workerCount)
	m.mu.Unlock()

	for i := 0; i < m.workerCount; i++ {
		go m.runWorker(runCtx, i)
	}
	m.logger.Info("workflow started", logging.Int("workers", m.workerCount))
	return nil
}

// Stop terminates background processing and waits for in-flight jobs to
// reach a stopping point.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("workflow stopped")
}

// Running reports whether the worker pool is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent worker-level error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
