package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"eyra/internal/config"
	"eyra/internal/logging"
	"eyra/internal/logs"
	"eyra/internal/preflight"
	"eyra/internal/store"
	"eyra/internal/verify"
)

// Daemon coordinates the verification service and enforces single-instance
// execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	service *verify.Service

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	Checks       []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, svc *verify.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || svc == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, service, and logger")
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		service:  svc,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another eyra daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	for _, check := range preflight.RunAll(runCtx, d.cfg) {
		if check.Passed {
			continue
		}
		d.logger.Warn("preflight check failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
		)
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Service exposes the verification service for IPC handlers.
func (d *Daemon) Service() *verify.Service {
	return d.service
}

// APIAddr returns the bound API address, empty when the server is not running.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// LogTail reads recent daemon log lines for CLI display.
func (d *Daemon) LogTail(ctx context.Context, opts logs.TailOptions) (logs.TailResult, error) {
	return logs.Tail(ctx, d.cfg.LogFilePath(), opts)
}

// Status returns the current daemon status with fresh preflight results.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		Checks:       preflight.RunAll(ctx, d.cfg),
	}
}
