package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"quill/internal/blobstore"
	"quill/internal/catalog"
	"quill/internal/config"
	"quill/internal/ingest"
	"quill/internal/jobs"
	"quill/internal/logging"
	"quill/internal/workflow"
)

// Daemon owns the long-running pieces of the ingestion service: the workflow
// manager, the HTTP API, and the single-instance lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *jobs.Store
	catalog  *catalog.Store
	blobs    blobstore.Store
	workflow *workflow.Manager
	auditor  *ingest.Auditor
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Health       workflow.Health
	LastError    string
	JobDBPath    string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, cat *catalog.Store, blobs blobstore.Store, wf *workflow.Manager, auditor *ingest.Auditor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || cat == nil || blobs == nil || wf == nil {
		return nil, errors.New("daemon requires config, stores, blob store, and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if auditor == nil {
		auditor = ingest.NewAuditor(blobs, logger)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "quilld.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		catalog:  cat,
		blobs:    blobs,
		workflow: wf,
		auditor:  auditor,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	srv, err := newAPIServer(cfg, d, d.logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock, launches the workflow manager, and begins
// serving the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another quill daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.workflow.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		d.workflow.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("quill daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("quill daemon stopped")
}

// Close stops the daemon and releases held stores.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.store != nil {
		errs = append(errs, d.store.Close())
	}
	if d.catalog != nil {
		errs = append(errs, d.catalog.Close())
	}
	return errors.Join(errs...)
}

// Status summarizes the daemon's current state.
func (d *Daemon) Status(ctx context.Context) Status {
	st := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		JobDBPath:    filepath.Join(d.cfg.Paths.DataDir, "jobs.db"),
		LockFilePath: d.lockPath,
	}
	health, err := d.workflow.Health(ctx)
	if err != nil {
		st.LastError = err.Error()
		return st
	}
	st.Health = health
	if lastErr := d.workflow.LastError(); lastErr != nil {
		st.LastError = lastErr.Error()
	}
	return st
}

// APIAddr reports the bound API listener address, or "" before Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}
