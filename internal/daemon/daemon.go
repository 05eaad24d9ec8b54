package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"newsreel/internal/api"
	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/preflight"
	"newsreel/internal/queue"
	"newsreel/internal/staging"
	"newsreel/internal/workflow"
)

// Daemon coordinates the workflow manager and HTTP status API behind a
// flock-based single-instance lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	server   *api.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	QueueDBPath  string
	LockFilePath string
	APIAddr      string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "newsreeld.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		workflow: wf,
		server:   api.NewServer(cfg.Paths.APIBind, api.NewQueueService(store), wf.Status, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, recovers interrupted jobs, and launches the
// workflow manager and status API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another newsreel daemon instance is already running")
	}

	results := preflight.RunAll(ctx, d.cfg)
	for _, result := range results {
		if result.Passed {
			continue
		}
		if result.Optional {
			d.logger.Warn("preflight check degraded",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		_ = d.lock.Unlock()
		return fmt.Errorf("preflight check failed: %s: %s", result.Name, result.Detail)
	}

	reclaimed, err := d.store.ResetStuckProcessing(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("reset stuck processing: %w", err)
	}
	if reclaimed > 0 {
		d.logger.Info("rolled interrupted jobs back to stage start", logging.Int64("count", reclaimed))
	}
	d.cleanStaging(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.server.Start(); err != nil {
		cancel()
		d.workflow.Stop()
		_ = d.lock.Unlock()
		return fmt.Errorf("start status api: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("newsreel daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.server.Addr()),
	)
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("status api shutdown failed", logging.Error(err))
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("newsreel daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		Workflow:     d.workflow.Status(ctx),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		APIAddr:      d.server.Addr(),
	}
}

// cleanStaging removes stale and orphaned per-job staging directories left by
// previous runs. Failures only log; a dirty staging area never blocks startup.
func (d *Daemon) cleanStaging(ctx context.Context) {
	maxAge := time.Duration(d.cfg.Workflow.StaleStagingMaxHours) * time.Hour
	if maxAge > 0 {
		staging.CleanStale(ctx, d.cfg.Paths.StagingDir, maxAge, d.logger)
	}

	items, err := d.store.List(ctx)
	if err != nil {
		d.logger.Warn("could not list jobs for orphan cleanup", logging.Error(err))
		return
	}
	active := make(map[string]struct{}, len(items))
	for _, item := range items {
		if !item.Status.IsTerminal() {
			active[item.JobID] = struct{}{}
		}
	}
	staging.CleanOrphaned(ctx, d.cfg.Paths.StagingDir, active, d.logger)
}
