package reloader

import (
	"context"
	"time"

	"github.com/mitchellh/go-ps"

	"radiantwavetech.com/radiantwave-updater/internal/logger"
	"radiantwavetech.com/radiantwave-updater/internal/service/common"
)

// ProcessLister returns the running processes.
type ProcessLister func() ([]ps.Process, error)

// Reloader restarts a systemd unit through the service manager.
type Reloader struct {
	runner common.Runner
	// timeout bounds the restart command.
	timeout time.Duration
	// process is the executable expected after the restart; empty skips the check.
	process string
	// processes lists running processes; ps.Processes by default.
	processes ProcessLister
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithProcessCheck makes Restart look for name in the process table afterwards.
func WithProcessCheck(name string) Option {
	return func(r *Reloader) {
		r.process = name
	}
}

// WithProcessLister replaces the process table source.
func WithProcessLister(lister ProcessLister) Option {
	return func(r *Reloader) {
		if lister != nil {
			r.processes = lister
		}
	}
}

// New creates a Reloader.
func New(runner common.Runner, timeout time.Duration, opts ...Option) *Reloader {
	r := &Reloader{
		runner:    runner,
		timeout:   timeout,
		processes: ps.Processes,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Restart runs an elevated `systemctl restart unit`.
// A false result asks for manual intervention; callers treat it as a soft failure.
func (r *Reloader) Restart(ctx context.Context, unit string) bool {
	logger.InfoKV(ctx, "Restarting foreground application", "unit", unit)

	cmd := common.Command{
		Name:     "systemctl",
		Args:     []string{"restart", unit},
		Elevated: true,
		Timeout:  r.timeout,
	}

	result, err := r.runner.Run(ctx, cmd)
	if err != nil {
		common.LogFailure(ctx, "Service restart failed, a reboot may be required", cmd, result, err)
		return false
	}

	logger.SuccessKV(ctx, "Service restarted", "unit", unit)

	r.checkProcess(ctx)

	return true
}

// checkProcess only logs: the unit may still be starting its session.
func (r *Reloader) checkProcess(ctx context.Context) {
	if r.process == "" {
		return
	}

	processes, err := r.processes()
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	for _, process := range processes {
		if process.Executable() == r.process {
			logger.DebugKV(ctx, "Foreground application is running", "process", r.process, "pid", process.Pid())
			return
		}
	}

	logger.WarnKV(ctx, "Foreground application not running yet", "process", r.process)
}
